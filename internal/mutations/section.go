package mutations

import (
	json "github.com/goccy/go-json"

	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
)

type sectionProps struct {
	Section string          `json:"section"`
	Path    string          `json:"path"`
	Value   json.RawMessage `json:"value"`
}

// PatchSectionHandler replaces a whole section, the way an editor saves its
// slice of the form.
type PatchSectionHandler struct{}

func (h *PatchSectionHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	var props sectionProps
	if msgs := decodeProps(mutation, &props); msgs != nil {
		return msgs
	}
	if msgs := checkSection(props.Section); msgs != nil {
		return msgs
	}
	if _, err := decodeObject(props.Value); err != nil {
		return critical("INVALID_VALUE", "Section %s: %v", props.Section, err)
	}
	return nil
}

func (h *PatchSectionHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	var props sectionProps
	decodeProps(mutation, &props)
	doc, _ := decodeObject(props.Value)
	state.Replace(props.Section, doc)
	return "", totalWarnings(state, props.Section)
}

// MergeSectionHandler sets some keys of a section, or of an object nested
// in it, keeping every other key.
type MergeSectionHandler struct{}

func (h *MergeSectionHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	var props sectionProps
	if msgs := decodeProps(mutation, &props); msgs != nil {
		return msgs
	}
	if msgs := checkSection(props.Section); msgs != nil {
		return msgs
	}
	if _, err := decodeObject(props.Value); err != nil {
		return critical("INVALID_VALUE", "Section %s: %v", props.Section, err)
	}
	if _, err := state.Section(props.Section); err != nil {
		return critical("INVALID_SECTION", "%v", err)
	}
	return nil
}

func (h *MergeSectionHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	var props sectionProps
	decodeProps(mutation, &props)
	value, _ := decodeObject(props.Value)
	doc, _ := state.Section(props.Section)
	if err := mergeAt(doc, props.Path, value); err != nil {
		return "", listError(err)
	}
	state.Touch(props.Section)
	return "", totalWarnings(state, props.Section)
}

// ResetSessionHandler empties every section.
type ResetSessionHandler struct{}

func (h *ResetSessionHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	return nil
}

func (h *ResetSessionHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	for _, name := range model.Sections {
		state.Replace(name, listedit.Doc{})
	}
	return "", nil
}
