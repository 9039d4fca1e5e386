// Package seed generates realistic demo session documents.
package seed

import (
	"fmt"
	"strings"

	"github.com/bxcodec/faker/v3"
	json "github.com/goccy/go-json"

	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
	"planning-bee/internal/store"
)

// Options shapes the generated household.
type Options struct {
	Children   int
	Couple     bool
	Executors  int
	Bequests   int
	WithAssets bool
}

func DefaultOptions() Options {
	return Options{Children: 2, Couple: true, Executors: 2, Bequests: 2, WithAssets: true}
}

// Intake builds a filled-in session document with fake people.
func Intake(opts Options) *model.Intake {
	surname := faker.LastName()
	in := &model.Intake{}

	cd := &in.ClientDetails
	cd.Client1 = person(faker.TitleMale(), surname)
	if opts.Couple {
		cd.Client2 = person(faker.TitleFemale(), surname)
		cd.Client2.Address, cd.Client2.Postcode = cd.Client1.Address, cd.Client1.Postcode
		cd.Client1.MaritalStatus, cd.Client2.MaritalStatus = "married", "married"
	}
	cd.ServicesRequired = model.ServicesRequired{Wills: true, LpaPropertyFinancial: true, LpaHealthWelfare: true}
	cd.CaseNotes = faker.Paragraph()

	wi := &in.WillInstructions
	for i := 0; i < opts.Children; i++ {
		wi.Children = append(wi.Children, model.Child{
			ID:                  newID(),
			FullName:            faker.FirstName() + " " + surname,
			Dob:                 faker.Date(),
			RelationshipClient1: pick(i, "Son", "Daughter"),
			RelationshipClient2: pick(i, "Son", "Daughter"),
		})
	}

	for i := 0; i < opts.Executors; i++ {
		wi.Executors.Client1 = append(wi.Executors.Client1, model.Executor{
			ID:           newID(),
			Title:        faker.TitleMale(),
			FullName:     faker.Name(),
			Relationship: "Friend",
			Address:      address(),
			Replacement:  i > 0,
		})
	}

	for i := 0; i < opts.Bequests; i++ {
		b := model.Bequest{
			ID:                      newID(),
			FromClient:              "client1",
			BeneficiaryTitle:        faker.TitleFemale(),
			BeneficiaryName:         faker.Name(),
			BeneficiaryRelationship: "Niece",
			BeneficiaryAddress:      address(),
			Outright:                true,
		}
		if i%2 == 0 {
			b.GiftType, b.Amount = model.GiftMoney, model.Amount(fmt.Sprint(amount(500, 5000)))
		} else {
			b.GiftType, b.Description = model.GiftSpecific, faker.Sentence()
		}
		wi.Bequests = append(wi.Bequests, b)
	}

	group := model.PercentageGroup{ID: newID(), Percentage: "100", Type: model.GroupIndividual}
	for _, c := range wi.Children {
		group.Beneficiaries = append(group.Beneficiaries, model.Beneficiary{
			ID:           newID(),
			FullName:     c.FullName,
			Relationship: c.RelationshipClient1,
		})
	}
	group.GiftOver.ToIssue = true
	wi.Residue = model.Residue{SpousalTransfer: "full", PercentageGroups: []model.PercentageGroup{group}}

	if opts.WithAssets {
		wi.FinancialInfo.Assets = []model.MoneyRow{
			{ID: newID(), Description: "Family home", Joint: money(150000, 600000)},
			{ID: newID(), Description: "Savings", C1: money(1000, 50000), C2: money(1000, 50000)},
			{ID: newID(), Description: "Pension", C1: money(10000, 200000)},
		}
		wi.FinancialInfo.Liabilities = []model.MoneyRow{
			{ID: newID(), Description: "Mortgage", Joint: money(20000, 150000)},
		}
	}
	wi.FuneralWishes.Client1 = model.FuneralWish{Preference: "cremation"}
	wi.AdditionalInstructions = faker.Paragraph()

	lpa := &in.LpaInstructions.Client1
	for _, e := range wi.Executors.Client1 {
		lpa.PropertyAttorneys = append(lpa.PropertyAttorneys, model.Attorney{
			ID:           newID(),
			Title:        e.Title,
			FullName:     e.FullName,
			Relationship: e.Relationship,
			Address:      e.Address,
		})
	}
	lpa.Preferences = faker.Sentence()

	in.ReviewSignData = model.ReviewSignData{
		ConsultationPoints: map[string]bool{"explainedFees": true, "explainedStorage": true},
		Payment: model.Payment{
			Total:   "750",
			Deposit: "250",
			Balance: "500",
			Method:  "card",
		},
		AdviserName: faker.Name(),
		SignedDate:  faker.Date(),
	}
	return in
}

// Sections splits in into the per-section form a store backend saves.
func Sections(in *model.Intake) (store.Sections, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out store.Sections
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func person(title, surname string) *model.Person {
	addr := faker.GetRealAddress()
	return &model.Person{
		Title:    title,
		FullName: faker.FirstName() + " " + surname,
		Dob:      faker.Date(),
		Phone:    "07700 900" + fmt.Sprintf("%03d", amount(0, 999)),
		Email:    strings.ToLower(faker.Email()),
		Address:  strings.Join([]string{addr.Address, addr.City}, "\n"),
		Postcode: "SW1A 1AA",
	}
}

func address() string {
	addr := faker.GetRealAddress()
	return addr.Address + ", " + addr.City
}

func newID() model.ID {
	return model.ID(listedit.NewID())
}

func pick(i int, a, b string) string {
	if i%2 == 0 {
		return a
	}
	return b
}

func amount(lo, hi int) int {
	n, err := faker.RandomInt(lo, hi, 1)
	if err != nil || len(n) == 0 {
		return lo
	}
	return n[0]
}

func money(lo, hi int) model.Amount {
	return model.Amount(fmt.Sprint(amount(lo, hi)))
}
