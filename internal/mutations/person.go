package mutations

import (
	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
)

const (
	SourceClient1  = "client1"
	SourceClient2  = "client2"
	SourceChild    = "child"
	SourceExecutor = "executor"
	SourceAttendee = "attendee"
)

type personRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type selectPersonProps struct {
	Section string    `json:"section"`
	List    string    `json:"list"`
	ID      string    `json:"id"`
	Source  personRef `json:"source"`
}

// SelectPersonHandler fills a list record from someone already in the
// application. Without an id a new record is added first. The details are
// copied once and do not follow later edits of the source.
type SelectPersonHandler struct{}

func (h *SelectPersonHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	var props selectPersonProps
	if msgs := decodeProps(mutation, &props); msgs != nil {
		return msgs
	}
	lp := listProps{Section: props.Section, List: props.List}
	doc, path, msgs := lp.target(state)
	if msgs != nil {
		return msgs
	}
	if props.ID != "" {
		if _, err := listedit.Find(doc, path, props.ID); err != nil {
			return listError(err)
		}
	}
	if _, ok := resolvePerson(state, props.Source); !ok {
		return critical("PERSON_NOT_FOUND", "No %s with id %q to copy from", props.Source.Kind, props.Source.ID)
	}
	return nil
}

func (h *SelectPersonHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	var props selectPersonProps
	decodeProps(mutation, &props)
	lp := listProps{Section: props.Section, List: props.List}
	doc, path, _ := lp.target(state)
	person, _ := resolvePerson(state, props.Source)

	id, created := props.ID, ""
	if id == "" {
		var err error
		if id, err = listedit.Add(doc, path, nil); err != nil {
			return "", listError(err)
		}
		created = id
	}
	rec, err := listedit.Find(doc, path, id)
	if err != nil {
		return "", listError(err)
	}
	listedit.CopyPerson(rec, person, listedit.FieldsFor(path.Last()))
	if path.Last() == "disinheritedChildren" && props.Source.Kind == SourceChild {
		rec["childId"] = props.Source.ID
		rec["isExistingChild"] = true
	}
	state.Touch(props.Section)
	return created, nil
}

// resolvePerson looks the source up in the working copy.
func resolvePerson(state *State, ref personRef) (listedit.Person, bool) {
	switch ref.Kind {
	case SourceClient1, SourceClient2:
		doc, err := state.Section(model.SectionClientDetails)
		if err != nil {
			return listedit.Person{}, false
		}
		rec, ok := doc[ref.Kind].(map[string]any)
		if !ok {
			return listedit.Person{}, false
		}
		p := personFrom(rec)
		return p, p.FullName != ""
	case SourceAttendee:
		rec, ok := findIn(state, model.SectionClientDetails, ref.ID, "attendees")
		if !ok {
			return listedit.Person{}, false
		}
		return listedit.Person{FullName: str(rec, "name"), Relationship: str(rec, "relationship")}, true
	case SourceChild:
		rec, ok := findIn(state, model.SectionWillInstructions, ref.ID, "children")
		if !ok {
			return listedit.Person{}, false
		}
		p := personFrom(rec)
		p.Relationship = str(rec, "relationshipClient1")
		if p.Relationship == "" {
			p.Relationship = str(rec, "relationshipClient2")
		}
		return p, true
	case SourceExecutor:
		rec, ok := findIn(state, model.SectionWillInstructions, ref.ID, "executors.client1", "executors.client2")
		if !ok {
			return listedit.Person{}, false
		}
		return personFrom(rec), true
	}
	return listedit.Person{}, false
}

func findIn(state *State, section, id string, lists ...string) (map[string]any, bool) {
	if id == "" {
		return nil, false
	}
	doc, err := state.Section(section)
	if err != nil {
		return nil, false
	}
	for _, l := range lists {
		if rec, err := listedit.Find(doc, listedit.MustParsePath(l), id); err == nil {
			return rec, true
		}
	}
	return nil, false
}

func personFrom(rec map[string]any) listedit.Person {
	return listedit.Person{
		Title:        str(rec, "title"),
		FullName:     str(rec, "fullName"),
		Relationship: str(rec, "relationship"),
		Dob:          str(rec, "dob"),
		Address:      str(rec, "address"),
	}
}

func str(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}
