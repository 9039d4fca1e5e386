package mutations

import (
	"fmt"

	json "github.com/goccy/go-json"

	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
	"planning-bee/internal/store"
)

// State is the working copy a request mutates. Sections are decoded on
// first use; only touched sections are written back.
type State struct {
	raw     store.Sections
	docs    map[string]listedit.Doc
	touched map[string]bool
}

func NewState(snapshot store.Sections) *State {
	return &State{
		raw:     snapshot.Clone(),
		docs:    map[string]listedit.Doc{},
		touched: map[string]bool{},
	}
}

// Section returns the live working document of the named section.
func (s *State) Section(name string) (listedit.Doc, error) {
	if !model.IsSection(name) {
		return nil, fmt.Errorf("unknown section %q", name)
	}
	if doc, ok := s.docs[name]; ok {
		return doc, nil
	}
	raw, ok := s.raw[name]
	if !ok {
		raw = json.RawMessage("{}")
	}
	doc, err := listedit.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("section %s is not a JSON object: %w", name, err)
	}
	s.docs[name] = doc
	return doc, nil
}

// Replace swaps the named section for doc.
func (s *State) Replace(name string, doc listedit.Doc) {
	s.docs[name] = doc
	s.touched[name] = true
}

func (s *State) Touch(name string) {
	s.touched[name] = true
}

func (s *State) Touched() bool {
	return len(s.touched) > 0
}

// Changed encodes the touched sections.
func (s *State) Changed() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(s.touched))
	for name := range s.touched {
		b, err := listedit.Encode(s.docs[name])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		out[name] = b
	}
	return out, nil
}

// typed decodes a section into v through its current working document.
func (s *State) typed(name string, v any) error {
	doc, err := s.Section(name)
	if err != nil {
		return err
	}
	b, err := listedit.Encode(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
