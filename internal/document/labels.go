package document

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"planning-bee/internal/model"
)

var optionLabels = map[string]string{
	// property trust types
	"roo": "Right of Occupation (ROO)",
	"ppt": "Protective Property Trust (PPT)",
	// occupancy
	"spouse":   "Spouse / partner",
	"named":    "Named person",
	"children": "Children",
	// tenancy period
	"life":             "For life",
	"fixed_term":       "Fixed term",
	"until_remarriage": "Until remarriage",
	// downsizing
	"permitted":       "Permitted",
	"trustee_consent": "With trustee consent",
	"not_permitted":   "Not permitted",
	// trust period end
	"residue":             "Falls into residue",
	"named_beneficiaries": "Passes to named beneficiaries",
	// spousal transfer
	"all_to_spouse": "All to spouse",
	"partial":       "Partial",
	"none":          "None",
	// group types
	model.GroupIndividual:         "Individual",
	model.GroupDiscretionaryTrust: "Discretionary trust",
	model.GroupVPT:                "Vulnerable person trust",
	// LPA decisions
	"jointly":                "Jointly",
	"jointly_and_severally":  "Jointly and severally",
	"mixed":                  "Jointly for some decisions, severally for others",
	"client1":                "Client 1",
	"client2":                "Client 2",
	"both":                   "Both clients",
	"burial":                 "Burial",
	"cremation":              "Cremation",
	"no_preference":          "No preference",
	"bank_transfer":          "Bank transfer",
	"card":                   "Card",
	"cash":                   "Cash",
	"cheque":                 "Cheque",
	"finance":                "Finance",
	model.GiftMoney:          model.GiftMoney,
	model.GiftSpecific:       model.GiftSpecific,
	"discretionary":          "Discretionary",
	"professional_executors": "Professional executors",
}

// option renders a stored enumeration value for people. Unknown values are
// shown as stored.
func option(v string) string {
	if l, ok := optionLabels[v]; ok {
		return l
	}
	return v
}

// money formats an amount cell as pounds. Empty cells stay empty; cells
// that are not numbers show as £0.00.
func money(a model.Amount) string {
	if !a.IsSet() {
		return ""
	}
	return pounds(a.Value())
}

func pounds(v float64) string {
	if v < 0 {
		return "-£" + humanize.FormatFloat("#,###.##", -v)
	}
	return "£" + humanize.FormatFloat("#,###.##", v)
}

func percent(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "%"
}

// date shows an ISO date as DD/MM/YYYY and anything else unchanged.
func date(s string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// joinDash joins the non-empty parts with an en dash.
func joinDash(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " – ")
}

func joinSpace(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
