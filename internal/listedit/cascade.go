package listedit

import "planning-bee/internal/model"

// cascades lists, per section and list path, the references to clean up
// when a record is removed.
var cascades = map[string]map[string][]Cascade{
	model.SectionWillInstructions: {
		"children": {
			{Path: MustParsePath("disinheritedChildren"), Field: "childId"},
			{Path: MustParsePath("disinheritedChildren"), Field: "id", If: unlinkedExistingChild},
		},
	},
}

// unlinkedExistingChild matches disinherited entries that name an existing
// child through their own id rather than a childId.
func unlinkedExistingChild(rec map[string]any) bool {
	existing, _ := rec["isExistingChild"].(bool)
	if !existing {
		return false
	}
	switch ref := rec["childId"].(type) {
	case nil:
		return true
	case string:
		return ref == ""
	}
	return false
}

// CascadesFor returns the cascades registered for removing from p in section.
func CascadesFor(section string, p Path) []Cascade {
	return cascades[section][p.String()]
}
