package validate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"planning-bee/internal/model"
)

// RuleSet maps field keys to rules. A key is a dotted path into a section
// document; "list[].field" applies the rule to field of every record in list.
type RuleSet map[string]Rule

// Check validates flat values keyed like the rule set. Keys without a rule
// are ignored.
func (rs RuleSet) Check(values map[string]string) map[string]string {
	errs := map[string]string{}
	for key, rule := range rs {
		if msg := Field(key, values[key], rule); msg != "" {
			errs[key] = msg
		}
	}
	return errs
}

// CheckDocument validates a decoded section document. List errors are
// keyed "list[<id>].field".
func (rs RuleSet) CheckDocument(doc map[string]any, optional ...string) map[string]string {
	errs := map[string]string{}
	for _, key := range rs.keys() {
		if skipOptional(doc, key, optional) {
			continue
		}
		rule := rs[key]
		if i := strings.Index(key, "[]."); i >= 0 {
			listPath, field := key[:i], key[i+3:]
			list, _ := lookup(doc, listPath).([]any)
			for _, item := range list {
				rec, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if msg := Field(field, stringValue(rec[field]), rule); msg != "" {
					errs[listPath+"["+stringValue(rec["id"])+"]."+field] = msg
				}
			}
			continue
		}
		if msg := Field(key, stringValue(lookup(doc, key)), rule); msg != "" {
			errs[key] = msg
		}
	}
	return errs
}

func (rs RuleSet) keys() []string {
	keys := make([]string, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// skipOptional reports whether key sits under an optional prefix whose
// subtree holds no values at all.
func skipOptional(doc map[string]any, key string, optional []string) bool {
	for _, prefix := range optional {
		if key == prefix || strings.HasPrefix(key, prefix+".") {
			return isBlank(lookup(doc, prefix))
		}
	}
	return false
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case map[string]any:
		for _, child := range t {
			if !isBlank(child) {
				return false
			}
		}
		return true
	case []any:
		return len(t) == 0
	}
	return false
}

func lookup(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

var (
	phonePattern    = regexp.MustCompile(`^[0-9+()\s-]{7,20}$`)
	postcodePattern = regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9][A-Z0-9]?\s*[0-9][A-Z]{2}$`)
)

// PastDate accepts YYYY-MM-DD dates that are not in the future.
func PastDate(value string) (bool, string) {
	t, ok := parseDate(strings.TrimSpace(value))
	if !ok {
		return false, "Please enter a date as YYYY-MM-DD"
	}
	if t.After(time.Now()) {
		return false, "Date cannot be in the future"
	}
	return true, ""
}

// parseDate parses "YYYY-MM-DD" without going through time.Parse layouts.
func parseDate(s string) (time.Time, bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	for i, c := range s {
		if i != 4 && i != 7 && (c < '0' || c > '9') {
			return time.Time{}, false
		}
	}
	y := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	m := time.Month(int(s[5]-'0')*10 + int(s[6]-'0'))
	d := int(s[8]-'0')*10 + int(s[9]-'0')
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func personRules(prefix string) RuleSet {
	return RuleSet{
		prefix + ".fullName": {Required: true, MaxLength: 100},
		prefix + ".dob":      {Custom: PastDate},
		prefix + ".email":    {Email: true},
		prefix + ".phone":    {Pattern: phonePattern, PatternMessage: "Please enter a valid phone number"},
		prefix + ".postcode": {Pattern: postcodePattern, PatternMessage: "Please enter a valid UK postcode"},
	}
}

func merge(sets ...RuleSet) RuleSet {
	out := RuleSet{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

func attorneyRules(client string) RuleSet {
	rs := RuleSet{}
	for _, list := range []string{"propertyAttorneys", "propertyReplacements", "healthAttorneys", "healthReplacements"} {
		rs[client+"."+list+"[].fullName"] = Rule{Required: true}
		rs[client+"."+list+"[].dob"] = Rule{Custom: PastDate}
	}
	return rs
}

type sectionRules struct {
	rules    RuleSet
	optional []string
}

var bySection = map[string]sectionRules{
	model.SectionClientDetails: {
		rules: merge(personRules("client1"), personRules("client2"), RuleSet{
			"attendees[].name":                     {Required: true},
			"servicesRequired.other[].description": {Required: true, MaxLength: 200},
			"caseNotes":                            {MaxLength: 5000},
		}),
		optional: []string{"client2"},
	},
	model.SectionWillInstructions: {
		rules: RuleSet{
			"children[].fullName":                   {Required: true},
			"children[].dob":                        {Custom: PastDate},
			"disinheritedChildren[].name":           {Required: true},
			"bequests[].giftType":                   {Required: true, Custom: oneOf(model.GiftMoney, model.GiftSpecific)},
			"bequests[].beneficiaryName":            {Required: true},
			"residue.percentageGroups[].type":       {Custom: oneOf(model.GroupIndividual, model.GroupDiscretionaryTrust, model.GroupVPT)},
			"residue.percentageGroups[].percentage": {Min: Float(0), Max: Float(100)},
			"executors.client1[].fullName":          {Required: true},
			"executors.client2[].fullName":          {Required: true},
		},
	},
	model.SectionFamilyProtection: {
		rules: RuleSet{
			"trustees.client1[].fullName":    {Required: true},
			"trustees.client2[].fullName":    {Required: true},
			"beneficiaryGroups[].percentage": {Min: Float(0), Max: Float(100)},
		},
	},
	model.SectionLpaInstructions: {
		rules:    merge(attorneyRules("client1"), attorneyRules("client2")),
		optional: []string{"client2"},
	},
	model.SectionReviewSign: {
		rules: RuleSet{
			"adviserName": {MaxLength: 100},
			"signedDate":  {Custom: PastDate},
		},
	},
}

func oneOf(allowed ...string) func(string) (bool, string) {
	return func(v string) (bool, string) {
		for _, a := range allowed {
			if v == a {
				return true, ""
			}
		}
		return false, "Please choose one of: " + strings.Join(allowed, ", ")
	}
}

// Section validates a decoded section document with the built-in rules
// for that section. Sections without rules never report errors.
func Section(name string, doc map[string]any) map[string]string {
	sr, ok := bySection[name]
	if !ok {
		return map[string]string{}
	}
	return sr.rules.CheckDocument(doc, sr.optional...)
}
