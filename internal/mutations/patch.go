package mutations

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
	"planning-bee/internal/summary"
)

func critical(code, format string, args ...any) []model.Message {
	return []model.Message{model.Critical(code, fmt.Sprintf(format, args...))}
}

func decodeProps(mutation *model.Mutation, v any) []model.Message {
	props := bytes.TrimSpace(mutation.Properties)
	if len(props) == 0 {
		props = []byte("{}")
	}
	if err := json.Unmarshal(props, v); err != nil {
		return critical("INVALID_PROPERTIES", "Properties of %s are invalid: %v", mutation.MutationName, err)
	}
	return nil
}

// decodeValue parses a property value keeping numbers exact, so they are
// written back exactly as sent.
func decodeValue(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeObject(raw json.RawMessage) (listedit.Doc, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("value must be a JSON object")
	}
	return m, nil
}

func checkSection(name string) []model.Message {
	if !model.IsSection(name) {
		return critical("UNKNOWN_SECTION", "Unknown section: %q", name)
	}
	return nil
}

// listError turns a list-editing failure into a critical message.
func listError(err error) []model.Message {
	code := "LIST_EDIT_FAILED"
	switch {
	case errors.Is(err, listedit.ErrRecordNotFound):
		code = "RECORD_NOT_FOUND"
	case errors.Is(err, listedit.ErrNotAList):
		code = "NOT_A_LIST"
	case errors.Is(err, listedit.ErrBadPath):
		code = "INVALID_PATH"
	case errors.Is(err, listedit.ErrImmutableField):
		code = "IMMUTABLE_FIELD"
	}
	return []model.Message{model.Critical(code, err.Error())}
}

// mergeAt merges value's keys into the object at the dotted path,
// creating missing objects on the way. Keys not in value are kept.
func mergeAt(doc listedit.Doc, path string, value listedit.Doc) error {
	cur := doc
	if path != "" {
		for _, key := range strings.Split(path, ".") {
			if key == "" {
				return fmt.Errorf("%w: %q", listedit.ErrBadPath, path)
			}
			next, ok := cur[key]
			if !ok || next == nil {
				m := listedit.Doc{}
				cur[key] = m
				cur = m
				continue
			}
			m, ok := next.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s is not an object", listedit.ErrBadPath, key)
			}
			cur = m
		}
	}
	for k, v := range value {
		cur[k] = v
	}
	return nil
}

// totalWarnings reports percentage group totals other than 100 for the
// sections that carry percentage groups.
func totalWarnings(state *State, section string) []model.Message {
	var in model.Intake
	switch section {
	case model.SectionWillInstructions:
		if err := state.typed(section, &in.WillInstructions); err != nil {
			return nil
		}
	case model.SectionFamilyProtection:
		if err := state.typed(section, &in.FamilyProtection); err != nil {
			return nil
		}
	default:
		return nil
	}
	msgs := summary.TotalWarnings(&in)
	if len(msgs) == 0 {
		return nil
	}
	return msgs
}
