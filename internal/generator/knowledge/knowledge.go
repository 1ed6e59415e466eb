// Package knowledge implements a deterministic method generator backed by a
// knowledge base of maintenance schedules.
package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/elecmate/mmgen/internal/generator"
	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/method"
	"github.com/elecmate/mmgen/internal/model"
)

// Age thresholds (in years) that add recommendations.
const (
	AgedInstallationYears      = 10
	EndOfLifeInstallationYears = 25
)

// GeneratorConfig is the configuration of the knowledge generator.
type GeneratorConfig struct {
	Schedules []model.MaintenanceSchedule
	Logger    log.Logger
}

func (c *GeneratorConfig) defaults() error {
	if len(c.Schedules) == 0 {
		return fmt.Errorf("at least one schedule is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "generator.knowledge"})

	return nil
}

// Generator generates methods from the knowledge base.
type Generator struct {
	schedules []model.MaintenanceSchedule
	fallback  model.MaintenanceSchedule
	logger    log.Logger
}

// NewGenerator returns a new knowledge generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// The fallback is the first schedule without keywords, or the first one.
	fallback := cfg.Schedules[0]
	for _, s := range cfg.Schedules {
		if len(s.EquipmentKeywords) == 0 {
			fallback = s
			break
		}
	}

	return &Generator{
		schedules: cfg.Schedules,
		fallback:  fallback,
		logger:    cfg.Logger,
	}, nil
}

var _ generator.Generator = &Generator{}

// Generate builds the method for the request.
func (g *Generator) Generate(ctx context.Context, req generator.Request, progress generator.ProgressFunc) (*model.MethodData, error) {
	if progress == nil {
		progress = generator.NoopProgress
	}

	if err := progress(ctx, 10, "Matching equipment against the knowledge base"); err != nil {
		return nil, err
	}
	schedule := g.match(req)
	g.logger.Debugf("Schedule %q selected for %q", schedule.ID, req.EquipmentDetails.EquipmentType)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := progress(ctx, 40, "Building procedure steps"); err != nil {
		return nil, err
	}
	steps := g.buildSteps(schedule, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := progress(ctx, 80, "Compiling recommendations"); err != nil {
		return nil, err
	}

	eq := req.EquipmentDetails
	return &model.MethodData{
		Title:                  fmt.Sprintf("%s - %s", schedule.Title, strings.TrimSpace(eq.EquipmentType)),
		Summary:                summary(schedule, req),
		Frequency:              schedule.Frequency,
		RequiredQualifications: append([]string(nil), schedule.RequiredQualifications...),
		Steps:                  steps,
		Recommendations:        recommendations(eq),
	}, nil
}

// match returns the schedule with the longest keyword found on the equipment type or the query.
func (g *Generator) match(req generator.Request) model.MaintenanceSchedule {
	text := strings.ToLower(req.EquipmentDetails.EquipmentType + " " + req.Query)

	best := g.fallback
	bestLen := 0
	for _, s := range g.schedules {
		for _, kw := range s.EquipmentKeywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || len(kw) <= bestLen {
				continue
			}
			if containsWord(text, kw) {
				best = s
				bestLen = len(kw)
			}
		}
	}

	return best
}

func containsWord(text, word string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

func (g *Generator) buildSteps(s model.MaintenanceSchedule, req generator.Request) []model.Step {
	steps := model.CloneSteps(s.ProcedureSteps)
	detailed := req.DetailLevel == model.DetailLevelDetailed

	for i := range steps {
		if !detailed {
			steps[i].InspectionCheckpoints = nil
			steps[i].BSReferences = nil
		}
	}

	if len(steps) > 0 && len(s.SafetyPrecautions) > 0 {
		steps[0].Safety = appendMissing(steps[0].Safety, s.SafetyPrecautions...)
	}

	if issue := strings.TrimSpace(req.EquipmentDetails.KnownIssues); issue != "" && len(steps) > 0 {
		i := inspectionStepIndex(steps)
		steps[i].Observations = append(steps[i].Observations, "Reported issue to investigate: "+issue)
	}

	if loc := strings.TrimSpace(req.EquipmentDetails.Location); loc != "" && len(steps) > 0 {
		steps[0].Content = strings.TrimSpace(steps[0].Content + " Confirm access arrangements for " + loc + ".")
	}

	return method.Renumber(steps)
}

func inspectionStepIndex(steps []model.Step) int {
	for i, s := range steps {
		if strings.Contains(strings.ToLower(s.Title), "inspect") {
			return i
		}
	}
	return 0
}

func appendMissing(dst []string, values ...string) []string {
	seen := map[string]bool{}
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			dst = append(dst, v)
			seen[v] = true
		}
	}
	return dst
}

func summary(s model.MaintenanceSchedule, req generator.Request) string {
	eq := req.EquipmentDetails

	var b strings.Builder
	fmt.Fprintf(&b, "%s of the %s at %s", maintenanceKind(s.MaintenanceType), strings.TrimSpace(eq.EquipmentType), strings.TrimSpace(eq.Location))
	if it := strings.TrimSpace(eq.InstallationType); it != "" {
		fmt.Fprintf(&b, " (%s installation)", strings.ToLower(it))
	}
	b.WriteString(".")
	if s.EstimatedDurationMinutes > 0 {
		fmt.Fprintf(&b, " Estimated on site time %d minutes.", s.EstimatedDurationMinutes)
	}
	if len(s.RegulationsCited) > 0 {
		fmt.Fprintf(&b, " Carried out in accordance with %s.", strings.Join(s.RegulationsCited, ", "))
	}
	if notes := strings.TrimSpace(eq.AdditionalNotes); notes != "" {
		fmt.Fprintf(&b, " Notes: %s", notes)
	}

	return b.String()
}

func maintenanceKind(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return "Maintenance"
	}
	return strings.ToUpper(t[:1]) + t[1:] + " maintenance"
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

func recommendations(eq model.EquipmentDetails) []string {
	recs := []string{"Record all test results on the schedule of test results and issue the certificate to the client."}

	if m := leadingNumber.FindStringSubmatch(eq.AgeYears); m != nil {
		age, _ := strconv.Atoi(m[1])
		switch {
		case age > EndOfLifeInstallationYears:
			recs = append(recs, fmt.Sprintf("Installation is %d years old: plan for replacement and carry out a full EICR.", age))
		case age > AgedInstallationYears:
			recs = append(recs, fmt.Sprintf("Installation is %d years old: consider increasing the inspection frequency.", age))
		}
	}

	if issue := strings.TrimSpace(eq.KnownIssues); issue != "" {
		recs = append(recs, "Investigate and rectify the reported issue: "+issue)
	}

	if strings.TrimSpace(eq.LastInspectionDate) == "" {
		recs = append(recs, "No previous inspection date recorded: establish a baseline inspection.")
	}

	return recs
}
