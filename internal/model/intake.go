package model

import json "github.com/goccy/go-json"

// Section names of the form-state document.
const (
	SectionClientDetails    = "clientDetails"
	SectionWillInstructions = "willInstructions"
	SectionFamilyProtection = "familyProtection"
	SectionLpaInstructions  = "lpaInstructions"
	SectionIDInformation    = "idInformation"
	SectionSignatures       = "signatures"
	SectionReviewSign       = "reviewSignData"
)

var Sections = []string{
	SectionClientDetails,
	SectionWillInstructions,
	SectionFamilyProtection,
	SectionLpaInstructions,
	SectionIDInformation,
	SectionSignatures,
	SectionReviewSign,
}

func IsSection(name string) bool {
	for _, s := range Sections {
		if s == name {
			return true
		}
	}
	return false
}

// Intake is the typed view of a whole session document.
type Intake struct {
	ClientDetails    ClientDetails    `json:"clientDetails"`
	WillInstructions WillInstructions `json:"willInstructions"`
	FamilyProtection FamilyProtection `json:"familyProtection"`
	LpaInstructions  LpaInstructions  `json:"lpaInstructions"`
	IDInformation    IDInformation    `json:"idInformation"`
	Signatures       Signatures       `json:"signatures"`
	ReviewSignData   ReviewSignData   `json:"reviewSignData"`
}

type Person struct {
	Title         string `json:"title"`
	FullName      string `json:"fullName"`
	Dob           string `json:"dob"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	MaritalStatus string `json:"maritalStatus"`
	Address       string `json:"address"`
	Postcode      string `json:"postcode"`
}

type ClientDetails struct {
	Client1          *Person          `json:"client1,omitempty"`
	Client2          *Person          `json:"client2,omitempty"`
	OthersAttending  bool             `json:"othersAttending"`
	Attendees        []Attendee       `json:"attendees"`
	ServicesRequired ServicesRequired `json:"servicesRequired"`
	CaseNotes        string           `json:"caseNotes"`
	PreviousWill     bool             `json:"previousWill"`
}

type Attendee struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

type ServicesRequired struct {
	Wills                 bool           `json:"wills"`
	LpaPropertyFinancial  bool           `json:"lpaPropertyFinancial"`
	LpaHealthWelfare      bool           `json:"lpaHealthWelfare"`
	FamilyProtectionTrust bool           `json:"familyProtectionTrust"`
	Probate               bool           `json:"probate"`
	Other                 []OtherService `json:"other"`
}

type OtherService struct {
	ID          ID     `json:"id"`
	Description string `json:"description"`
}

type WillInstructions struct {
	Children               []Child              `json:"children"`
	DisinheritedChildren   []DisinheritedPerson `json:"disinheritedChildren"`
	Bequests               []Bequest            `json:"bequests"`
	PropertyTrusts         []PropertyTrust      `json:"propertyTrusts"`
	Residue                Residue              `json:"residue"`
	FinancialInfo          FinancialInfo        `json:"financialInfo"`
	FuneralWishes          FuneralWishes        `json:"funeralWishes"`
	Executors              Executors            `json:"executors"`
	BusinessTrust          BusinessTrust        `json:"businessTrust"`
	TestamentaryCapacity   TestamentaryCapacity `json:"testamentaryCapacity"`
	AdditionalInstructions string               `json:"additionalInstructions"`
}

type Child struct {
	ID                  ID     `json:"id"`
	Title               string `json:"title"`
	FullName            string `json:"fullName"`
	Dob                 string `json:"dob"`
	RelationshipClient1 string `json:"relationshipClient1"`
	RelationshipClient2 string `json:"relationshipClient2"`
	Address             string `json:"address"`
}

type DisinheritedPerson struct {
	ID              ID     `json:"id"`
	ChildID         ID     `json:"childId"`
	Name            string `json:"name"`
	Relationship    string `json:"relationship"`
	IsExistingChild bool   `json:"isExistingChild"`
}

const (
	GiftMoney    = "Money"
	GiftSpecific = "Specific Gift"
)

type Bequest struct {
	ID                      ID     `json:"id"`
	GiftType                string `json:"giftType"`
	FromClient              string `json:"fromClient"`
	BeneficiaryTitle        string `json:"beneficiaryTitle"`
	BeneficiaryName         string `json:"beneficiaryName"`
	BeneficiaryRelationship string `json:"beneficiaryRelationship"`
	BeneficiaryAddress      string `json:"beneficiaryAddress"`
	Amount                  Amount `json:"amount"`
	Description             string `json:"description"`
	Outright                bool   `json:"outright"`
	InTrust                 bool   `json:"inTrust"`
	UntilAge                Text   `json:"untilAge"`
	Conditions              string `json:"conditions"`
}

type PropertyTrust struct {
	ID             ID             `json:"id"`
	Client         string         `json:"client"`
	TrustType      string         `json:"trustType"`
	Occupancy      string         `json:"occupancy"`
	OccupantName   string         `json:"occupantName"`
	TenancyPeriod  string         `json:"tenancyPeriod"`
	TenancyYears   Text           `json:"tenancyYears"`
	LifeTenantEnds LifeTenantEnds `json:"lifeTenantEnds"`
	Downsizing     string         `json:"downsizing"`
	TrustPeriodEnd string         `json:"trustPeriodEnd"`
}

type LifeTenantEnds struct {
	Remarriage      bool `json:"remarriage"`
	Cohabitation    bool `json:"cohabitation"`
	VacatesProperty bool `json:"vacatesProperty"`
}

type Residue struct {
	SpousalTransfer    string            `json:"spousalTransfer"`
	PercentageGroups   []PercentageGroup `json:"percentageGroups"`
	UseAlternateGroups bool              `json:"useAlternateGroups"`
	AlternateGroups    []PercentageGroup `json:"alternateGroups"`
}

const (
	GroupIndividual         = "individual"
	GroupDiscretionaryTrust = "discretionary_trust"
	GroupVPT                = "vpt"
)

type PercentageGroup struct {
	ID            ID            `json:"id"`
	Percentage    Amount        `json:"percentage"`
	Type          string        `json:"type"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	GiftOver      GiftOver      `json:"giftOver"`
}

type GiftOver struct {
	ToIssue                  bool `json:"toIssue"`
	ToSurvivingBeneficiaries bool `json:"toSurvivingBeneficiaries"`
	ToAlternateGroups        bool `json:"toAlternateGroups"`
}

type Beneficiary struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Address      string `json:"address"`
}

type FinancialInfo struct {
	Assets      []MoneyRow `json:"assets"`
	Liabilities []MoneyRow `json:"liabilities"`
}

type MoneyRow struct {
	ID          ID     `json:"id"`
	Description string `json:"description"`
	Joint       Amount `json:"joint"`
	C1          Amount `json:"c1"`
	C2          Amount `json:"c2"`
}

type FuneralWishes struct {
	Client1 FuneralWish `json:"client1"`
	Client2 FuneralWish `json:"client2"`
}

type FuneralWish struct {
	Preference string `json:"preference"`
	Notes      string `json:"notes"`
}

type Executors struct {
	Client1 []Executor `json:"client1"`
	Client2 []Executor `json:"client2"`
}

type Executor struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Address      string `json:"address"`
	Professional bool   `json:"professional"`
	Replacement  bool   `json:"replacement"`
}

type BusinessTrust struct {
	HasBusinessAssets bool   `json:"hasBusinessAssets"`
	Details           string `json:"details"`
}

type TestamentaryCapacity struct {
	Concerns bool   `json:"concerns"`
	Notes    string `json:"notes"`
}

type FamilyProtection struct {
	Trustees          Trustees          `json:"trustees"`
	Settlors          Settlors          `json:"settlors"`
	TrustReasons      TrustReasons      `json:"trustReasons"`
	BeneficiaryGroups []PercentageGroup `json:"beneficiaryGroups"`
}

type Trustees struct {
	Client1 []Trustee `json:"client1"`
	Client2 []Trustee `json:"client2"`
}

type Trustee struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Address      string `json:"address"`
}

type Settlors struct {
	Client1 bool `json:"client1"`
	Client2 bool `json:"client2"`
}

type TrustReasons struct {
	CareFees               bool   `json:"careFees"`
	SidewaysDisinheritance bool   `json:"sidewaysDisinheritance"`
	Divorce                bool   `json:"divorce"`
	Bankruptcy             bool   `json:"bankruptcy"`
	InheritanceTax         bool   `json:"inheritanceTax"`
	OtherReason            string `json:"otherReason"`
}

type LpaInstructions struct {
	Client1 LpaClient `json:"client1"`
	Client2 LpaClient `json:"client2"`
}

type LpaClient struct {
	PropertyAttorneys       []Attorney `json:"propertyAttorneys"`
	PropertyReplacements    []Attorney `json:"propertyReplacements"`
	HealthAttorneys         []Attorney `json:"healthAttorneys"`
	HealthReplacements      []Attorney `json:"healthReplacements"`
	Preferences             string     `json:"preferences"`
	Instructions            string     `json:"instructions"`
	PropertyDecisions       string     `json:"propertyDecisions"`
	HealthDecisions         string     `json:"healthDecisions"`
	LifeSustainingTreatment bool       `json:"lifeSustainingTreatment"`
	CertificateProvider     string     `json:"certificateProvider"`
	RegisterNow             bool       `json:"registerNow"`
}

// IsEmpty reports whether nothing has been captured for this client.
func (c LpaClient) IsEmpty() bool {
	return len(c.PropertyAttorneys) == 0 && len(c.PropertyReplacements) == 0 &&
		len(c.HealthAttorneys) == 0 && len(c.HealthReplacements) == 0 &&
		c.Preferences == "" && c.Instructions == "" &&
		c.PropertyDecisions == "" && c.HealthDecisions == "" &&
		!c.LifeSustainingTreatment && c.CertificateProvider == "" && !c.RegisterNow
}

type Attorney struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Dob          string `json:"dob"`
	Address      string `json:"address"`
}

type IDInformation struct {
	Client1 []IDDocument `json:"client1"`
	Client2 []IDDocument `json:"client2"`
}

type IDDocument struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data,omitempty"`
	URL      string `json:"url,omitempty"`
}

type Signatures struct {
	Client1 string `json:"client1"`
	Client2 string `json:"client2"`
	Adviser string `json:"adviser"`
}

type ReviewSignData struct {
	ConsultationPoints map[string]bool `json:"consultationPoints"`
	Payment            Payment         `json:"payment"`
	AdviserName        string          `json:"adviserName"`
	SignedDate         string          `json:"signedDate"`
	Notes              string          `json:"notes"`
	Declarations       string          `json:"declarations"`
}

type Payment struct {
	Total   Amount `json:"total"`
	Deposit Amount `json:"deposit"`
	Balance Amount `json:"balance"`
	Method  string `json:"method"`
}

// DecodeIntake decodes a whole session document.
func DecodeIntake(raw []byte) (*Intake, error) {
	var in Intake
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}
