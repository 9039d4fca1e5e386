// Package jsonpatch computes RFC 6902 patches between two decoded JSON
// documents.
package jsonpatch

import (
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Op is one RFC 6902 operation.
type Op map[string]any

var emptyPatch = json.RawMessage("[]")

// Diff computes the forward (a→b) and backward (b→a) patches in a single
// traversal. Both documents must be decoded the same way so that equal
// numbers compare equal. Path should be "" for the root document. Object
// keys are visited in sorted order so the output is stable.
func Diff(a, b any, path string) (fwd, bwd []Op) {
	if a == nil && b == nil {
		return nil, nil
	}
	if a == nil || b == nil {
		return []Op{replaceOp(path, b)}, []Op{replaceOp(path, a)}
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	if aIsMap || bIsMap || aIsArr || bIsArr || a != b {
		return []Op{replaceOp(path, b)}, []Op{replaceOp(path, a)}
	}
	return nil, nil
}

func diffObjects(a, b map[string]any, path string) (fwd, bwd []Op) {
	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			childPath := path + "/" + escapeKey(k)
			fwd = append(fwd, removeOp(childPath))
			bwd = append(bwd, addOp(childPath, a[k]))
		}
	}

	for _, k := range sortedKeys(b) {
		childPath := path + "/" + escapeKey(k)
		av, inA := a[k]
		if !inA {
			fwd = append(fwd, addOp(childPath, b[k]))
			bwd = append(bwd, removeOp(childPath))
			continue
		}
		subFwd, subBwd := Diff(av, b[k], childPath)
		fwd = append(fwd, subFwd...)
		bwd = append(bwd, subBwd...)
	}
	return fwd, bwd
}

func diffArrays(a, b []any, path string) (fwd, bwd []Op) {
	minLen := min(len(a), len(b))

	for i := 0; i < minLen; i++ {
		subFwd, subBwd := Diff(a[i], b[i], path+"/"+strconv.Itoa(i))
		fwd = append(fwd, subFwd...)
		bwd = append(bwd, subBwd...)
	}

	// a has extra elements: forward removes (descending), backward adds (ascending)
	for i := len(a) - 1; i >= minLen; i-- {
		fwd = append(fwd, removeOp(path+"/"+strconv.Itoa(i)))
	}
	for i := minLen; i < len(a); i++ {
		bwd = append(bwd, addOp(path+"/"+strconv.Itoa(i), a[i]))
	}

	// b has extra elements: forward adds (ascending), backward removes (descending)
	for i := minLen; i < len(b); i++ {
		fwd = append(fwd, addOp(path+"/"+strconv.Itoa(i), b[i]))
	}
	for i := len(b) - 1; i >= minLen; i-- {
		bwd = append(bwd, removeOp(path+"/"+strconv.Itoa(i)))
	}

	return fwd, bwd
}

// Marshal encodes ops, "[]" when there are none.
func Marshal(ops []Op) (json.RawMessage, error) {
	if len(ops) == 0 {
		return emptyPatch, nil
	}
	return json.Marshal(ops)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func replaceOp(path string, value any) Op {
	return Op{"op": "replace", "path": path, "value": value}
}

func addOp(path string, value any) Op {
	return Op{"op": "add", "path": path, "value": value}
}

func removeOp(path string) Op {
	return Op{"op": "remove", "path": path}
}

// escapeKey escapes a JSON Pointer token per RFC 6901.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
