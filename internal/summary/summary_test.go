package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planning-bee/internal/model"
)

func decode(t *testing.T, s string) *model.Intake {
	t.Helper()
	in, err := model.DecodeIntake([]byte(s))
	require.NoError(t, err)
	return in
}

func TestFinancialTotalsAndNet(t *testing.T) {
	in := decode(t, `{"willInstructions": {"financialInfo": {
		"assets": [
			{"id": "a1", "description": "House", "joint": "£250,000", "c1": "", "c2": null},
			{"id": "a2", "description": "Savings", "joint": 0, "c1": 10000.5, "c2": "n/a"}
		],
		"liabilities": [
			{"id": "l1", "description": "Mortgage", "joint": "100000", "c1": "0", "c2": "500"}
		]
	}}}`)

	f := Compute(in).Financial

	assert.Equal(t, Columns{Joint: 250000, Client1: 10000.5}, f.Assets)
	assert.Equal(t, Columns{Joint: 100000, Client2: 500}, f.Liabilities)
	assert.Equal(t, Columns{Joint: 150000, Client1: 10000.5, Client2: -500}, f.Net)
	assert.InDelta(t, 159500.5, f.NetEstate, 1e-9)
}

func TestGroupTotalsWarnWhenNot100(t *testing.T) {
	in := decode(t, `{
		"willInstructions": {"residue": {
			"percentageGroups": [{"id": "g1", "percentage": 60}, {"id": "g2", "percentage": "30"}],
			"useAlternateGroups": false,
			"alternateGroups": [{"id": "x", "percentage": 10}]
		}},
		"familyProtection": {"beneficiaryGroups": [{"id": "f1", "percentage": "100%"}]}
	}`)

	s := Compute(in)

	assert.Equal(t, 90.0, s.ResidueTotal)
	assert.Equal(t, 10.0, s.AlternateTotal)
	assert.Equal(t, 100.0, s.FamilyGroupTotal)
	require.Len(t, s.Warnings, 1)
	assert.Equal(t, model.LevelWarning, s.Warnings[0].Level)
	assert.Equal(t, "RESIDUE_TOTAL", s.Warnings[0].Code)
	assert.Equal(t, "Residue group percentages total 90%, not 100%", s.Warnings[0].Message)
}

func TestAlternateGroupsCheckedWhenUsed(t *testing.T) {
	in := decode(t, `{"willInstructions": {"residue": {
		"useAlternateGroups": true,
		"alternateGroups": [{"id": "x", "percentage": 33.5}]
	}}}`)

	w := TotalWarnings(in)

	require.Len(t, w, 1)
	assert.Equal(t, "ALTERNATE_TOTAL", w[0].Code)
	assert.Contains(t, w[0].Message, "33.50%")
}

func TestEmptyIntake(t *testing.T) {
	s := Compute(&model.Intake{})

	assert.Equal(t, Financial{}, s.Financial)
	assert.Empty(t, s.Warnings)
	assert.NotNil(t, s.Warnings)
	assert.Len(t, s.Products, len(Services))
	for _, p := range s.Products {
		assert.False(t, p.Taken, p.Key)
	}
}

func TestProductsDerivedFromServices(t *testing.T) {
	products := Products(model.ServicesRequired{
		Wills:   true,
		Probate: true,
		Other:   []model.OtherService{{ID: "o1", Description: "Deed of variation"}, {ID: "o2"}},
	})

	taken := map[string]bool{}
	for _, p := range products {
		taken[p.Key] = p.Taken
	}
	assert.Equal(t, map[string]bool{
		ServiceWills:                 true,
		ServiceLpaPropertyFinancial:  false,
		ServiceLpaHealthWelfare:      false,
		ServiceFamilyProtectionTrust: false,
		ServiceProbate:               true,
		"other:o1":                   true,
	}, taken)
}

func TestPaymentOutstanding(t *testing.T) {
	in := decode(t, `{"reviewSignData": {"payment": {"total": "1,200", "deposit": 200}}}`)
	assert.Equal(t, Payment{Total: 1200, Deposit: 200, Outstanding: 1000}, Compute(in).Payment)
}

func TestTimestampIDs(t *testing.T) {
	in := decode(t, `{
		"clientDetails": {"servicesRequired": {"other": [{"id": 1700000000009, "description": "Deed of variation"}]}},
		"willInstructions": {
			"children": [{"id": 1700000000001, "fullName": "Amy"}],
			"residue": {"percentageGroups": [{"id": 1700000000002, "percentage": 50,
				"beneficiaries": [{"id": 1700000000003, "fullName": "Amy"}]}]},
			"financialInfo": {"assets": [{"id": 1700000000004, "description": "House", "joint": 1000}]},
			"propertyTrusts": [{"id": 1700000000005, "tenancyYears": 5}],
			"bequests": [{"id": 1700000000006, "untilAge": 25}]
		}
	}`)

	s := Compute(in)

	assert.Equal(t, 1000.0, s.Financial.NetEstate)
	assert.Equal(t, "other:1700000000009", s.Products[len(s.Products)-1].Key)
	require.Len(t, s.Warnings, 1)
	assert.Equal(t, "RESIDUE_TOTAL", s.Warnings[0].Code)
}
