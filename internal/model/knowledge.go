package model

// MaintenanceSchedule is a knowledge base entry describing how a type of
// equipment is maintained.
type MaintenanceSchedule struct {
	ID                       string
	EquipmentKeywords        []string
	MaintenanceType          string
	Title                    string
	Frequency                string
	RegulationsCited         []string
	RequiredQualifications   []string
	SafetyPrecautions        []string
	EstimatedDurationMinutes int
	ProcedureSteps           []Step
}
