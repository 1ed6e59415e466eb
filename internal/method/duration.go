package method

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/elecmate/mmgen/internal/model"
)

var durationRegexp = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:-|to)?\s*(\d+(?:\.\d+)?)?\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes)\b`)

// ParseDuration returns the minutes a free text step duration stands for.
// Ranges ("30-45 minutes") use the upper bound. Returns false when the text
// can't be understood.
func ParseDuration(s string) (minutes int, ok bool) {
	m := durationRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	value := m[1]
	if m[2] != "" {
		value = m[2]
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	if strings.HasPrefix(strings.ToLower(m[3]), "h") {
		v *= 60
	}
	return int(math.Round(v)), true
}

// Metrics computes the quality metrics of a method.
func Metrics(data model.MethodData) model.QualityMetrics {
	m := model.QualityMetrics{StepCount: len(data.Steps)}
	for _, s := range data.Steps {
		m.SafetyItemCount += len(s.Safety)
		m.BSReferenceCount += len(s.BSReferences)
		m.InspectionCheckpointCount += len(s.InspectionCheckpoints)
		if mins, ok := ParseDuration(s.EstimatedDuration); ok {
			m.TotalEstimatedMinutes += mins
		}
	}
	return m
}
