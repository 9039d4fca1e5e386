package listedit

import "strings"

// Person is a normalised copy of someone already in the application:
// a client, a child, an executor or a meeting attendee.
type Person struct {
	Title        string
	FullName     string
	Relationship string
	Dob          string
	Address      string
}

// Fields names the target record's keys for each Person value. Empty keys
// are not written.
type Fields struct {
	Title        string
	FullName     string
	Relationship string
	Dob          string
	Address      string
}

var (
	PersonFields = Fields{
		Title:        "title",
		FullName:     "fullName",
		Relationship: "relationship",
		Dob:          "dob",
		Address:      "address",
	}
	BequestFields = Fields{
		Title:        "beneficiaryTitle",
		FullName:     "beneficiaryName",
		Relationship: "beneficiaryRelationship",
		Address:      "beneficiaryAddress",
	}
	OccupantFields     = Fields{FullName: "occupantName"}
	DisinheritedFields = Fields{FullName: "name", Relationship: "relationship"}
)

// FieldsFor picks the key mapping for the list a person is copied into.
func FieldsFor(list string) Fields {
	switch list {
	case "bequests":
		return BequestFields
	case "propertyTrusts":
		return OccupantFields
	case "disinheritedChildren":
		return DisinheritedFields
	}
	return PersonFields
}

// CopyPerson writes the person's details into rec. The values are copied
// once; later edits to the source person do not reach rec. Blank source
// values do not overwrite what rec already holds.
func CopyPerson(rec map[string]any, p Person, f Fields) {
	set := func(key, value string) {
		if key == "" || strings.TrimSpace(value) == "" {
			return
		}
		rec[key] = value
	}
	set(f.Title, p.Title)
	set(f.FullName, p.FullName)
	set(f.Relationship, p.Relationship)
	set(f.Dob, p.Dob)
	set(f.Address, p.Address)
}
