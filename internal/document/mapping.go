package document

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"planning-bee/internal/model"
	"planning-bee/internal/summary"
	"planning-bee/internal/validate"
)

const noneRecorded = "None recorded"

// Heights of embedded images by use.
const (
	idImageHeight        = 200
	signatureImageHeight = 60
)

type builder struct {
	els []Element
}

func (b *builder) add(el Element) { b.els = append(b.els, el) }

func (b *builder) section(title string, repeat bool) {
	b.add(Heading{Text: title, Level: 1, Repeat: repeat})
}

func (b *builder) sub(title string) {
	b.add(Heading{Text: title, Level: 2})
}

func (b *builder) line(label, value string) {
	b.add(TextLine{Label: label, Value: value})
}

func (b *builder) yesNo(label string, v bool) {
	b.add(YesNo{Label: label, Value: v})
}

func (b *builder) block(label, text string) {
	b.add(WrappedBlock{Label: label, Text: text})
}

// Elements maps a session document to the elements of the PDF, section by
// section in a fixed order.
func Elements(in *model.Intake) []Element {
	b := &builder{}
	mapClients(b, &in.ClientDetails)
	mapChildren(b, &in.WillInstructions)
	mapFinancial(b, &in.WillInstructions.FinancialInfo)
	mapFuneral(b, &in.WillInstructions.FuneralWishes)
	mapExecutors(b, &in.WillInstructions.Executors)
	mapBequests(b, in.WillInstructions.Bequests)
	mapPropertyTrusts(b, in.WillInstructions.PropertyTrusts)
	mapResidue(b, &in.WillInstructions.Residue)
	mapBusinessTrust(b, &in.WillInstructions.BusinessTrust)
	mapCapacity(b, &in.WillInstructions.TestamentaryCapacity)
	mapAdditional(b, in.WillInstructions.AdditionalInstructions)
	mapLpa(b, &in.LpaInstructions)
	mapFamilyProtection(b, &in.FamilyProtection)
	mapIDDocuments(b, &in.IDInformation)
	mapSignatures(b, in)
	return b.els
}

func mapClients(b *builder, cd *model.ClientDetails) {
	b.section("CLIENT INFORMATION", false)
	mapPerson(b, "CLIENT 1", cd.Client1)
	if cd.Client2 != nil && *cd.Client2 != (model.Person{}) {
		mapPerson(b, "CLIENT 2", cd.Client2)
	}

	b.yesNo("Others attending", cd.OthersAttending)
	for i, a := range cd.Attendees {
		b.line(fmt.Sprintf("Attendee %d", i+1), joinDash(a.Name, a.Relationship))
	}

	b.sub("SERVICES REQUIRED")
	for _, p := range summary.Products(cd.ServicesRequired) {
		if strings.HasPrefix(p.Key, "other:") {
			b.line("Other service", p.Label)
			continue
		}
		b.yesNo(p.Label, p.Taken)
	}
	b.yesNo("Previous will", cd.PreviousWill)
	if cd.CaseNotes != "" {
		b.block("Case notes", cd.CaseNotes)
	}
}

func mapPerson(b *builder, title string, p *model.Person) {
	b.sub(title)
	if p == nil {
		p = &model.Person{}
	}
	b.line("Title", p.Title)
	b.line("Full name", p.FullName)
	b.line("Date of birth", date(p.Dob))
	b.line("Marital status", option(p.MaritalStatus))
	b.line("Phone", p.Phone)
	b.line("Email", p.Email)
	b.block("Address", joinLines(p.Address, p.Postcode))
}

func mapChildren(b *builder, wi *model.WillInstructions) {
	b.section("CHILDREN", true)
	if len(wi.Children) == 0 {
		b.line("Children", noneRecorded)
	}
	byID := make(map[model.ID]model.Child, len(wi.Children))
	for i, c := range wi.Children {
		byID[c.ID] = c
		b.sub(fmt.Sprintf("CHILD %d", i+1))
		b.line("Full name", joinSpace(c.Title, c.FullName))
		b.line("Date of birth", date(c.Dob))
		b.line("Relationship to client 1", c.RelationshipClient1)
		b.line("Relationship to client 2", c.RelationshipClient2)
		if c.Address != "" {
			b.block("Address", c.Address)
		}
	}

	entries := disinherited(wi.DisinheritedChildren, byID)
	if len(entries) == 0 {
		return
	}
	b.sub("DISINHERITED PERSONS")
	for i, e := range entries {
		b.line(fmt.Sprintf("Person %d", i+1), e)
	}
}

// disinherited renders each disinherited person once. Entries that point
// at an existing child take missing details from that child, and several
// entries for the same child collapse into one. An existing-child entry
// without a childId refers to the child by its own id.
func disinherited(list []model.DisinheritedPerson, children map[model.ID]model.Child) []string {
	var out []string
	seen := map[model.ID]bool{}
	for _, d := range list {
		name, rel := d.Name, d.Relationship
		ref := d.ChildID
		if ref == "" && d.IsExistingChild {
			ref = d.ID
		}
		if c, ok := children[ref]; ok && ref != "" {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			if name == "" {
				name = c.FullName
			}
			if rel == "" {
				rel = firstNonEmpty(c.RelationshipClient1, c.RelationshipClient2)
			}
		} else if d.IsExistingChild {
			// the child was removed; nothing left to disinherit
			continue
		}
		if text := joinDash(name, rel); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func mapFinancial(b *builder, fi *model.FinancialInfo) {
	b.section("FINANCIAL INFORMATION", true)
	b.add(MoneyTable{Assets: fi.Assets, Liabilities: fi.Liabilities})
}

func mapFuneral(b *builder, fw *model.FuneralWishes) {
	b.section("FUNERAL WISHES", false)
	for i, w := range []model.FuneralWish{fw.Client1, fw.Client2} {
		if i == 1 && w == (model.FuneralWish{}) {
			continue
		}
		b.line(fmt.Sprintf("Client %d preference", i+1), option(w.Preference))
		if w.Notes != "" {
			b.block(fmt.Sprintf("Client %d notes", i+1), w.Notes)
		}
	}
}

func mapExecutors(b *builder, ex *model.Executors) {
	b.section("EXECUTORS", true)
	if len(ex.Client1) == 0 && len(ex.Client2) == 0 {
		b.line("Executors", noneRecorded)
		return
	}
	for ci, list := range [][]model.Executor{ex.Client1, ex.Client2} {
		for i, e := range list {
			b.sub(fmt.Sprintf("CLIENT %d EXECUTOR %d", ci+1, i+1))
			b.line("Full name", joinSpace(e.Title, e.FullName))
			b.line("Relationship", e.Relationship)
			if e.Address != "" {
				b.block("Address", e.Address)
			}
			b.yesNo("Professional executor", e.Professional)
			b.yesNo("Replacement executor", e.Replacement)
		}
	}
}

func mapBequests(b *builder, list []model.Bequest) {
	b.section("BEQUESTS", true)
	if len(list) == 0 {
		b.line("Bequests", noneRecorded)
		return
	}
	for i, g := range list {
		b.sub(fmt.Sprintf("BEQUEST %d", i+1))
		b.line("Gift type", option(g.GiftType))
		b.line("From", option(g.FromClient))
		b.line("Beneficiary", joinSpace(g.BeneficiaryTitle, g.BeneficiaryName))
		b.line("Relationship", g.BeneficiaryRelationship)
		if g.BeneficiaryAddress != "" {
			b.block("Beneficiary address", g.BeneficiaryAddress)
		}
		if g.GiftType == model.GiftMoney {
			b.line("Amount", money(g.Amount))
		} else {
			b.block("Description", g.Description)
		}
		b.yesNo("Outright", g.Outright)
		b.yesNo("In trust", g.InTrust)
		if g.UntilAge != "" {
			b.line("Until age", string(g.UntilAge))
		}
		if g.Conditions != "" {
			b.block("Conditions", g.Conditions)
		}
	}
}

func mapPropertyTrusts(b *builder, list []model.PropertyTrust) {
	b.section("PROPERTY TRUSTS", true)
	if len(list) == 0 {
		b.line("Property trusts", noneRecorded)
		return
	}
	for i, p := range list {
		b.sub(fmt.Sprintf("PROPERTY TRUST %d", i+1))
		b.line("Client", option(p.Client))
		b.line("Trust type", option(p.TrustType))
		b.line("Occupancy", option(p.Occupancy))
		if p.OccupantName != "" {
			b.line("Occupant", p.OccupantName)
		}
		b.line("Tenancy period", option(p.TenancyPeriod))
		if p.TenancyPeriod == "fixed_term" || p.TenancyYears != "" {
			b.line("Tenancy years", string(p.TenancyYears))
		}
		b.yesNo("Ends on remarriage", p.LifeTenantEnds.Remarriage)
		b.yesNo("Ends on cohabitation", p.LifeTenantEnds.Cohabitation)
		b.yesNo("Ends when the property is vacated", p.LifeTenantEnds.VacatesProperty)
		b.line("Downsizing", option(p.Downsizing))
		b.line("At the end of the trust period", option(p.TrustPeriodEnd))
	}
}

func mapResidue(b *builder, r *model.Residue) {
	b.section("RESIDUE", true)
	b.line("Spousal transfer", option(r.SpousalTransfer))
	mapGroups(b, "GROUP", r.PercentageGroups)
	if r.UseAlternateGroups {
		mapGroups(b, "ALTERNATE GROUP", r.AlternateGroups)
	}
}

func mapGroups(b *builder, title string, groups []model.PercentageGroup) {
	if len(groups) == 0 {
		b.line(strings.ToUpper(title[:1])+strings.ToLower(title[1:])+"s", noneRecorded)
		return
	}
	for i, g := range groups {
		b.sub(fmt.Sprintf("%s %d – %s", title, i+1, percent(g.Percentage.Value())))
		b.line("Type", option(g.Type))
		if len(g.Beneficiaries) == 0 {
			b.line("Beneficiaries", noneRecorded)
		}
		for j, p := range g.Beneficiaries {
			b.line(fmt.Sprintf("Beneficiary %d", j+1), joinDash(joinSpace(p.Title, p.FullName), p.Relationship))
		}
		b.yesNo("Gift over to issue", g.GiftOver.ToIssue)
		b.yesNo("Gift over to surviving beneficiaries", g.GiftOver.ToSurvivingBeneficiaries)
		b.yesNo("Gift over to alternate groups", g.GiftOver.ToAlternateGroups)
	}
	b.line("Total", percent(summary.GroupTotal(groups)))
}

func mapBusinessTrust(b *builder, bt *model.BusinessTrust) {
	b.section("BUSINESS PROPERTY TRUST", false)
	b.yesNo("Business assets", bt.HasBusinessAssets)
	if bt.Details != "" {
		b.block("Details", bt.Details)
	}
}

func mapCapacity(b *builder, tc *model.TestamentaryCapacity) {
	b.section("TESTAMENTARY CAPACITY", false)
	b.yesNo("Concerns about capacity", tc.Concerns)
	if tc.Notes != "" {
		b.block("Notes", tc.Notes)
	}
}

func mapAdditional(b *builder, text string) {
	b.section("ADDITIONAL INSTRUCTIONS", false)
	b.block("Instructions", text)
}

func mapLpa(b *builder, lpa *model.LpaInstructions) {
	b.section("LASTING POWERS OF ATTORNEY", true)
	for i, c := range []model.LpaClient{lpa.Client1, lpa.Client2} {
		if i == 1 && c.IsEmpty() {
			continue
		}
		b.sub(fmt.Sprintf("CLIENT %d", i+1))
		attorneys(b, "Property attorney", c.PropertyAttorneys)
		attorneys(b, "Property replacement", c.PropertyReplacements)
		b.line("Property decisions", option(c.PropertyDecisions))
		attorneys(b, "Health attorney", c.HealthAttorneys)
		attorneys(b, "Health replacement", c.HealthReplacements)
		b.line("Health decisions", option(c.HealthDecisions))
		b.yesNo("Attorneys may decide on life-sustaining treatment", c.LifeSustainingTreatment)
		b.line("Certificate provider", c.CertificateProvider)
		b.yesNo("Register now", c.RegisterNow)
		if c.Preferences != "" {
			b.block("Preferences", c.Preferences)
		}
		if c.Instructions != "" {
			b.block("Instructions", c.Instructions)
		}
	}
}

func attorneys(b *builder, label string, list []model.Attorney) {
	if len(list) == 0 {
		b.line(label+"s", noneRecorded)
		return
	}
	for i, a := range list {
		b.line(fmt.Sprintf("%s %d", label, i+1), joinDash(joinSpace(a.Title, a.FullName), a.Relationship, date(a.Dob)))
	}
}

func mapFamilyProtection(b *builder, fp *model.FamilyProtection) {
	b.section("FAMILY PROTECTION TRUST", true)
	b.yesNo("Client 1 is a settlor", fp.Settlors.Client1)
	b.yesNo("Client 2 is a settlor", fp.Settlors.Client2)
	for ci, list := range [][]model.Trustee{fp.Trustees.Client1, fp.Trustees.Client2} {
		for i, t := range list {
			b.line(fmt.Sprintf("Client %d trustee %d", ci+1, i+1), joinDash(joinSpace(t.Title, t.FullName), t.Relationship))
		}
	}

	b.sub("REASONS FOR THE TRUST")
	r := fp.TrustReasons
	b.yesNo("Care fees", r.CareFees)
	b.yesNo("Sideways disinheritance", r.SidewaysDisinheritance)
	b.yesNo("Divorce", r.Divorce)
	b.yesNo("Bankruptcy", r.Bankruptcy)
	b.yesNo("Inheritance tax", r.InheritanceTax)
	if r.OtherReason != "" {
		b.block("Other reason", r.OtherReason)
	}

	b.sub("BENEFICIARIES")
	mapGroups(b, "BENEFICIARY GROUP", fp.BeneficiaryGroups)
}

func mapIDDocuments(b *builder, id *model.IDInformation) {
	b.section("IDENTIFICATION DOCUMENTS", true)
	if len(id.Client1) == 0 && len(id.Client2) == 0 {
		b.line("Documents", noneRecorded)
		return
	}
	for ci, list := range [][]model.IDDocument{id.Client1, id.Client2} {
		for _, d := range list {
			src := d.Data
			if src == "" {
				src = d.URL
			}
			b.add(Image{
				Label:    fmt.Sprintf("Client %d – %s", ci+1, d.Name),
				Name:     d.Name,
				MimeType: d.MimeType,
				Source:   src,
				Height:   idImageHeight,
			})
		}
	}
}

func mapSignatures(b *builder, in *model.Intake) {
	rs := &in.ReviewSignData
	b.section("REVIEW AND SIGN", false)
	for _, p := range summary.Products(in.ClientDetails.ServicesRequired) {
		if p.Taken {
			b.line("Product taken", p.Label)
		}
	}
	b.line("Total fee", money(rs.Payment.Total))
	b.line("Deposit", money(rs.Payment.Deposit))
	b.line("Balance", money(rs.Payment.Balance))
	b.line("Payment method", option(rs.Payment.Method))
	for _, key := range slices.Sorted(maps.Keys(rs.ConsultationPoints)) {
		b.yesNo(validate.Label(key), rs.ConsultationPoints[key])
	}
	if rs.Notes != "" {
		b.block("Notes", rs.Notes)
	}
	if rs.Declarations != "" {
		b.block("Declarations", rs.Declarations)
	}
	b.line("Adviser", rs.AdviserName)
	b.line("Date", date(rs.SignedDate))

	b.section("SIGNATURES", false)
	sigs := []struct{ label, src string }{
		{"Client 1 signature", in.Signatures.Client1},
		{"Client 2 signature", in.Signatures.Client2},
		{"Adviser signature", in.Signatures.Adviser},
	}
	for _, s := range sigs {
		if s.src == "" {
			b.line(s.label, "")
			continue
		}
		b.add(Image{Label: s.label, Name: s.label, MimeType: "image/png", Source: s.src, Height: signatureImageHeight})
	}
}

func joinLines(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
