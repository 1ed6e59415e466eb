package model

// Step is one instruction unit of a maintenance method.
type Step struct {
	StepNumber            int      `json:"stepNumber" yaml:"stepNumber"`
	Title                 string   `json:"title" yaml:"title"`
	Content               string   `json:"content" yaml:"content"`
	EstimatedDuration     string   `json:"estimatedDuration" yaml:"estimatedDuration"`
	Safety                []string `json:"safety,omitempty" yaml:"safety,omitempty"`
	ToolsRequired         []string `json:"toolsRequired,omitempty" yaml:"toolsRequired,omitempty"`
	MaterialsNeeded       []string `json:"materialsNeeded,omitempty" yaml:"materialsNeeded,omitempty"`
	InspectionCheckpoints []string `json:"inspectionCheckpoints,omitempty" yaml:"inspectionCheckpoints,omitempty"`
	BSReferences          []string `json:"bsReferences,omitempty" yaml:"bsReferences,omitempty"`
	LinkedHazards         []string `json:"linkedHazards,omitempty" yaml:"linkedHazards,omitempty"`
	Qualifications        []string `json:"qualifications,omitempty" yaml:"qualifications,omitempty"`
	Observations          []string `json:"observations,omitempty" yaml:"observations,omitempty"`
	DefectCodes           []string `json:"defectCodes,omitempty" yaml:"defectCodes,omitempty"`
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	c := s
	c.Safety = cloneStrings(s.Safety)
	c.ToolsRequired = cloneStrings(s.ToolsRequired)
	c.MaterialsNeeded = cloneStrings(s.MaterialsNeeded)
	c.InspectionCheckpoints = cloneStrings(s.InspectionCheckpoints)
	c.BSReferences = cloneStrings(s.BSReferences)
	c.LinkedHazards = cloneStrings(s.LinkedHazards)
	c.Qualifications = cloneStrings(s.Qualifications)
	c.Observations = cloneStrings(s.Observations)
	c.DefectCodes = cloneStrings(s.DefectCodes)
	return c
}

// CloneSteps returns a deep copy of a step list.
func CloneSteps(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
