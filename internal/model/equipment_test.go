package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elecmate/mmgen/internal/model"
)

func TestValidateQuery(t *testing.T) {
	tests := map[string]struct {
		query  string
		expErr bool
	}{
		"A query of 50 characters should be valid.": {
			query: strings.Repeat("a", 50),
		},

		"A query of 49 characters should fail.": {
			query:  strings.Repeat("a", 49),
			expErr: true,
		},

		"Surrounding spaces should not count.": {
			query:  "   " + strings.Repeat("a", 49) + "   ",
			expErr: true,
		},

		"Multibyte characters should count as one.": {
			query: strings.Repeat("é", 50),
		},

		"Characters outside the BMP should count as one.": {
			query:  strings.Repeat("\U0001F50C", 25),
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := model.ValidateQuery(test.query)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEquipmentDetailsValidate(t *testing.T) {
	tests := map[string]struct {
		details model.EquipmentDetails
		expErr  bool
	}{
		"Type and location set should be valid.": {
			details: model.EquipmentDetails{EquipmentType: "Distribution board", Location: "Plant room"},
		},

		"Missing type should fail.": {
			details: model.EquipmentDetails{Location: "Plant room"},
			expErr:  true,
		},

		"Blank location should fail.": {
			details: model.EquipmentDetails{EquipmentType: "Distribution board", Location: "  "},
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.details.Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEquipmentDetailsHasRequired(t *testing.T) {
	tests := map[string]struct {
		details model.EquipmentDetails
		exp     bool
	}{
		"Type and location set should be filled in.": {
			details: model.EquipmentDetails{EquipmentType: "Distribution board", Location: "Plant room"},
			exp:     true,
		},

		"Empty type should not be filled in.": {
			details: model.EquipmentDetails{Location: "Plant room"},
		},

		"Empty location should not be filled in.": {
			details: model.EquipmentDetails{EquipmentType: "Distribution board"},
		},

		"Whitespace-only type should be filled in.": {
			details: model.EquipmentDetails{EquipmentType: " ", Location: "Plant room"},
			exp:     true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.details.HasRequired())
		})
	}
}
