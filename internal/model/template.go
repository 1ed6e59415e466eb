package model

import "fmt"

// Template is a predefined job form for common equipment.
type Template struct {
	ID               string
	Name             string
	Description      string
	Query            string
	EquipmentType    string
	Location         string
	InstallationType string
	AgeYears         string
	KnownIssues      string
}

// Validate validates the template.
func (t Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if t.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if err := ValidateQuery(t.Query); err != nil {
		return fmt.Errorf("template %s: %w", t.ID, err)
	}
	if err := t.EquipmentDetails().Validate(); err != nil {
		return fmt.Errorf("template %s: %w", t.ID, err)
	}
	return nil
}

// EquipmentDetails returns the equipment details the template populates.
// Fields the template does not define are left empty.
func (t Template) EquipmentDetails() EquipmentDetails {
	return EquipmentDetails{
		EquipmentType:    t.EquipmentType,
		Location:         t.Location,
		InstallationType: t.InstallationType,
		AgeYears:         t.AgeYears,
		KnownIssues:      t.KnownIssues,
	}
}
