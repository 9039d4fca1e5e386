package mutations

import (
	json "github.com/goccy/go-json"

	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
)

type listProps struct {
	Section string          `json:"section"`
	List    string          `json:"list"`
	ID      string          `json:"id"`
	Field   string          `json:"field"`
	Value   json.RawMessage `json:"value"`
}

// target resolves the section document and list path named by props.
func (p *listProps) target(state *State) (listedit.Doc, listedit.Path, []model.Message) {
	if msgs := checkSection(p.Section); msgs != nil {
		return nil, nil, msgs
	}
	path, err := listedit.ParsePath(p.List)
	if err != nil {
		return nil, nil, listError(err)
	}
	doc, err := state.Section(p.Section)
	if err != nil {
		return nil, nil, critical("INVALID_SECTION", "%v", err)
	}
	return doc, path, nil
}

// ListAddHandler appends a record with a fresh id. Value, when given, is an
// object of initial field values.
type ListAddHandler struct{}

func (h *ListAddHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	var props listProps
	if msgs := decodeProps(mutation, &props); msgs != nil {
		return msgs
	}
	if _, _, msgs := props.target(state); msgs != nil {
		return msgs
	}
	if len(props.Value) > 0 {
		if _, err := decodeObject(props.Value); err != nil {
			return critical("INVALID_VALUE", "Initial values: %v", err)
		}
	}
	return nil
}

func (h *ListAddHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	var props listProps
	decodeProps(mutation, &props)
	doc, path, _ := props.target(state)

	var defaults listedit.Doc
	if len(props.Value) > 0 {
		defaults, _ = decodeObject(props.Value)
	}
	id, err := listedit.Add(doc, path, defaults)
	if err != nil {
		return "", listError(err)
	}
	state.Touch(props.Section)
	return id, totalWarnings(state, props.Section)
}

// ListUpdateHandler replaces one field of one record.
type ListUpdateHandler struct{}

func (h *ListUpdateHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	var props listProps
	if msgs := decodeProps(mutation, &props); msgs != nil {
		return msgs
	}
	doc, path, msgs := props.target(state)
	if msgs != nil {
		return msgs
	}
	if props.Field == "" || props.Field == "id" {
		return critical("IMMUTABLE_FIELD", "Field %q cannot be updated", props.Field)
	}
	if _, err := decodeValue(props.Value); err != nil {
		return critical("INVALID_VALUE", "Value of %s: %v", props.Field, err)
	}
	if _, err := listedit.Find(doc, path, props.ID); err != nil {
		return listError(err)
	}
	return nil
}

func (h *ListUpdateHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	var props listProps
	decodeProps(mutation, &props)
	doc, path, _ := props.target(state)
	value, _ := decodeValue(props.Value)
	if err := listedit.Update(doc, path, props.ID, props.Field, value); err != nil {
		return "", listError(err)
	}
	state.Touch(props.Section)
	return "", totalWarnings(state, props.Section)
}

// ListRemoveHandler drops one record and whatever references it.
type ListRemoveHandler struct{}

func (h *ListRemoveHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	var props listProps
	if msgs := decodeProps(mutation, &props); msgs != nil {
		return msgs
	}
	doc, path, msgs := props.target(state)
	if msgs != nil {
		return msgs
	}
	if _, err := listedit.Find(doc, path, props.ID); err != nil {
		return listError(err)
	}
	return nil
}

func (h *ListRemoveHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	var props listProps
	decodeProps(mutation, &props)
	doc, path, _ := props.target(state)
	if err := listedit.Remove(doc, path, props.ID, listedit.CascadesFor(props.Section, path)...); err != nil {
		return "", listError(err)
	}
	state.Touch(props.Section)
	return "", totalWarnings(state, props.Section)
}
