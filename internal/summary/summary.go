// Package summary derives the read-only figures shown at review time:
// financial totals, percentage group totals and the products taken.
package summary

import (
	"fmt"
	"math"

	"planning-bee/internal/model"
)

// Columns holds one figure per money column.
type Columns struct {
	Joint   float64 `json:"joint"`
	Client1 float64 `json:"client1"`
	Client2 float64 `json:"client2"`
}

func (c Columns) Total() float64 {
	return c.Joint + c.Client1 + c.Client2
}

func (c Columns) Sub(o Columns) Columns {
	return Columns{Joint: c.Joint - o.Joint, Client1: c.Client1 - o.Client1, Client2: c.Client2 - o.Client2}
}

// Sum adds every row per column. Non-numeric cells count as 0.
func Sum(rows []model.MoneyRow) Columns {
	var c Columns
	for _, r := range rows {
		c.Joint += r.Joint.Value()
		c.Client1 += r.C1.Value()
		c.Client2 += r.C2.Value()
	}
	return c
}

type Financial struct {
	Assets      Columns `json:"assets"`
	Liabilities Columns `json:"liabilities"`
	Net         Columns `json:"net"`
	NetEstate   float64 `json:"netEstate"`
}

func ComputeFinancial(fi model.FinancialInfo) Financial {
	f := Financial{Assets: Sum(fi.Assets), Liabilities: Sum(fi.Liabilities)}
	f.Net = f.Assets.Sub(f.Liabilities)
	f.NetEstate = f.Net.Total()
	return f
}

// GroupTotal is the running percentage total of groups. It is advisory and
// never constrained to 100.
func GroupTotal(groups []model.PercentageGroup) float64 {
	var total float64
	for _, g := range groups {
		total += g.Percentage.Value()
	}
	return total
}

type Product struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Taken bool   `json:"taken"`
}

// Products lists every product with whether the client takes it. The flags
// live only in clientDetails.servicesRequired.
func Products(s model.ServicesRequired) []Product {
	out := []Product{
		{Key: ServiceWills, Label: "Wills", Taken: s.Wills},
		{Key: ServiceLpaPropertyFinancial, Label: "LPA – Property & Financial Affairs", Taken: s.LpaPropertyFinancial},
		{Key: ServiceLpaHealthWelfare, Label: "LPA – Health & Welfare", Taken: s.LpaHealthWelfare},
		{Key: ServiceFamilyProtectionTrust, Label: "Family Protection Trust", Taken: s.FamilyProtectionTrust},
		{Key: ServiceProbate, Label: "Probate", Taken: s.Probate},
	}
	for _, o := range s.Other {
		if o.Description != "" {
			out = append(out, Product{Key: "other:" + string(o.ID), Label: o.Description, Taken: true})
		}
	}
	return out
}

const (
	ServiceWills                 = "wills"
	ServiceLpaPropertyFinancial  = "lpaPropertyFinancial"
	ServiceLpaHealthWelfare      = "lpaHealthWelfare"
	ServiceFamilyProtectionTrust = "familyProtectionTrust"
	ServiceProbate               = "probate"
)

var Services = []string{
	ServiceWills,
	ServiceLpaPropertyFinancial,
	ServiceLpaHealthWelfare,
	ServiceFamilyProtectionTrust,
	ServiceProbate,
}

type Summary struct {
	Financial        Financial       `json:"financial"`
	ResidueTotal     float64         `json:"residueTotal"`
	AlternateTotal   float64         `json:"alternateTotal"`
	FamilyGroupTotal float64         `json:"familyGroupTotal"`
	Products         []Product       `json:"products"`
	Payment          Payment         `json:"payment"`
	Warnings         []model.Message `json:"warnings"`
}

type Payment struct {
	Total       float64 `json:"total"`
	Deposit     float64 `json:"deposit"`
	Balance     float64 `json:"balance"`
	Outstanding float64 `json:"outstanding"`
}

func Compute(in *model.Intake) Summary {
	wi := in.WillInstructions
	pay := in.ReviewSignData.Payment
	s := Summary{
		Financial:        ComputeFinancial(wi.FinancialInfo),
		ResidueTotal:     GroupTotal(wi.Residue.PercentageGroups),
		AlternateTotal:   GroupTotal(wi.Residue.AlternateGroups),
		FamilyGroupTotal: GroupTotal(in.FamilyProtection.BeneficiaryGroups),
		Products:         Products(in.ClientDetails.ServicesRequired),
		Payment: Payment{
			Total:       pay.Total.Value(),
			Deposit:     pay.Deposit.Value(),
			Balance:     pay.Balance.Value(),
			Outstanding: pay.Total.Value() - pay.Deposit.Value(),
		},
		Warnings: TotalWarnings(in),
	}
	return s
}

// TotalWarnings reports percentage group lists whose total is not 100.
// Empty lists are not reported.
func TotalWarnings(in *model.Intake) []model.Message {
	var msgs []model.Message
	check := func(code, what string, groups []model.PercentageGroup) {
		if len(groups) == 0 {
			return
		}
		total := GroupTotal(groups)
		if math.Abs(total-100) > 1e-9 {
			msgs = append(msgs, model.Warning(code,
				fmt.Sprintf("%s percentages total %s%%, not 100%%", what, formatPercent(total))))
		}
	}
	wi := in.WillInstructions
	check("RESIDUE_TOTAL", "Residue group", wi.Residue.PercentageGroups)
	if wi.Residue.UseAlternateGroups {
		check("ALTERNATE_TOTAL", "Alternate residue group", wi.Residue.AlternateGroups)
	}
	check("FAMILY_GROUP_TOTAL", "Family protection beneficiary group", in.FamilyProtection.BeneficiaryGroups)
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs
}

func formatPercent(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
