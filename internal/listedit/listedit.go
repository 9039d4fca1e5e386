// Package listedit implements the add / update / remove-by-id operations
// every list in the intake document shares. Lists live inside a decoded
// section document and are addressed by a path such as "children" or
// "residue.percentageGroups[<groupId>].beneficiaries".
package listedit

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	ErrBadPath        = errors.New("invalid list path")
	ErrNotAList       = errors.New("path does not address a list")
	ErrRecordNotFound = errors.New("record not found")
	ErrImmutableField = errors.New("field cannot be changed")
)

// Doc is a decoded section document.
type Doc = map[string]any

type segment struct {
	key string
	id  string // set when the segment selects a record inside a list
}

type Path []segment

// ParsePath parses dotted keys where a key may select one record of a list
// by id: "a.b[id].c". The final segment must be a plain key naming the list.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadPath)
	}
	var p Path
	for _, part := range strings.Split(s, ".") {
		seg := segment{key: part}
		if i := strings.IndexByte(part, '['); i >= 0 {
			if !strings.HasSuffix(part, "]") || i == 0 || i == len(part)-2 {
				return nil, fmt.Errorf("%w: %q", ErrBadPath, s)
			}
			seg = segment{key: part[:i], id: part[i+1 : len(part)-1]}
		}
		if seg.key == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadPath, s)
		}
		p = append(p, seg)
	}
	if p[len(p)-1].id != "" {
		return nil, fmt.Errorf("%w: %q must end with a list name", ErrBadPath, s)
	}
	return p, nil
}

func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.key
		if seg.id != "" {
			parts[i] += "[" + seg.id + "]"
		}
	}
	return strings.Join(parts, ".")
}

// Last is the name of the addressed list.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].key
}

// Decode parses a section keeping numbers exact.
func Decode(raw []byte) (Doc, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc Doc
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Doc{}
	}
	return doc, nil
}

func Encode(doc Doc) (json.RawMessage, error) {
	return json.Marshal(doc)
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// IDOf renders a record id. Older records may carry numeric timestamp ids.
func IDOf(rec map[string]any) string {
	switch v := rec["id"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// parent walks to the map that owns the list named by the last segment.
// Missing intermediate objects are created when create is set.
func parent(doc Doc, p Path, create bool) (Doc, error) {
	cur := doc
	for _, seg := range p[:len(p)-1] {
		next, ok := cur[seg.key]
		if !ok || next == nil {
			if !create || seg.id != "" {
				return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, p)
			}
			m := Doc{}
			cur[seg.key] = m
			cur = m
			continue
		}
		if seg.id == "" {
			m, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not an object", ErrBadPath, seg.key)
			}
			cur = m
			continue
		}
		list, ok := next.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotAList, seg.key)
		}
		_, rec := find(list, seg.id)
		if rec == nil {
			return nil, fmt.Errorf("%w: %s[%s]", ErrRecordNotFound, seg.key, seg.id)
		}
		cur = rec
	}
	return cur, nil
}

func listAt(owner Doc, key string) ([]any, error) {
	v, ok := owner[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAList, key)
	}
	return list, nil
}

func find(list []any, id string) (int, map[string]any) {
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if ok && IDOf(rec) == id {
			return i, rec
		}
	}
	return -1, nil
}

// List returns the records at p; a missing list is empty.
func List(doc Doc, p Path) ([]map[string]any, error) {
	owner, err := parent(doc, p, false)
	if err != nil {
		return nil, err
	}
	list, err := listAt(owner, p.Last())
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Find returns the record with id at p.
func Find(doc Doc, p Path, id string) (map[string]any, error) {
	owner, err := parent(doc, p, false)
	if err != nil {
		return nil, err
	}
	list, err := listAt(owner, p.Last())
	if err != nil {
		return nil, err
	}
	_, rec := find(list, id)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s[%s]", ErrRecordNotFound, p, id)
	}
	return rec, nil
}

// Add appends a record built from defaults with a fresh id unique among its
// siblings and returns that id. Nothing is validated.
func Add(doc Doc, p Path, defaults map[string]any) (string, error) {
	owner, err := parent(doc, p, true)
	if err != nil {
		return "", err
	}
	list, err := listAt(owner, p.Last())
	if err != nil {
		return "", err
	}

	id := NewID()
	for {
		if _, rec := find(list, id); rec == nil {
			break
		}
		id = NewID()
	}

	rec := make(map[string]any, len(defaults)+1)
	for k, v := range defaults {
		rec[k] = v
	}
	rec["id"] = id
	owner[p.Last()] = append(list, rec)
	return id, nil
}

// Update replaces one field of the record with id. Other fields and other
// records are left alone.
func Update(doc Doc, p Path, id, field string, value any) error {
	if field == "" || field == "id" {
		return fmt.Errorf("%w: %q", ErrImmutableField, field)
	}
	rec, err := Find(doc, p, id)
	if err != nil {
		return err
	}
	rec[field] = value
	return nil
}

// Remove drops the record with id and applies cascades to lists that
// reference it.
func Remove(doc Doc, p Path, id string, cascades ...Cascade) error {
	owner, err := parent(doc, p, false)
	if err != nil {
		return err
	}
	list, err := listAt(owner, p.Last())
	if err != nil {
		return err
	}
	i, rec := find(list, id)
	if rec == nil {
		return fmt.Errorf("%w: %s[%s]", ErrRecordNotFound, p, id)
	}
	owner[p.Last()] = append(list[:i:i], list[i+1:]...)

	for _, c := range cascades {
		if err := c.apply(doc, id); err != nil {
			return err
		}
	}
	return nil
}

// Cascade removes records of another list in the same document whose Field
// holds the removed id. When If is set only records it accepts are removed.
type Cascade struct {
	Path  Path
	Field string
	If    func(rec map[string]any) bool
}

func (c Cascade) apply(doc Doc, removedID string) error {
	owner, err := parent(doc, c.Path, false)
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	list, err := listAt(owner, c.Path.Last())
	if err != nil || list == nil {
		return err
	}
	kept := make([]any, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(map[string]any); ok && refersTo(rec[c.Field], removedID) && (c.If == nil || c.If(rec)) {
			continue
		}
		kept = append(kept, item)
	}
	owner[c.Path.Last()] = kept
	return nil
}

func refersTo(v any, id string) bool {
	switch t := v.(type) {
	case string:
		return t == id
	case json.Number:
		return t.String() == id
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64) == id
	}
	return false
}
