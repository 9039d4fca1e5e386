package jsonpatch

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestDiffEqualDocuments(t *testing.T) {
	a := decode(t, `{"children": [{"id": "c1"}], "notes": "x"}`)
	fwd, bwd := Diff(a, decode(t, `{"notes": "x", "children": [{"id": "c1"}]}`), "")
	assert.Empty(t, fwd)
	assert.Empty(t, bwd)

	out, err := Marshal(fwd)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestDiffObjects(t *testing.T) {
	a := decode(t, `{"b": 1, "a": "x", "gone": true}`)
	b := decode(t, `{"b": 2, "a": "x", "new/key": null}`)

	fwd, bwd := Diff(a, b, "")

	out, err := Marshal(fwd)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"op": "remove", "path": "/gone"},
		{"op": "replace", "path": "/b", "value": 2},
		{"op": "add", "path": "/new~1key", "value": null}
	]`, string(out))

	out, err = Marshal(bwd)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"op": "add", "path": "/gone", "value": true},
		{"op": "replace", "path": "/b", "value": 1},
		{"op": "remove", "path": "/new~1key"}
	]`, string(out))
}

func TestDiffArrays(t *testing.T) {
	fwd, bwd := Diff(decode(t, `[1, 2, 3]`), decode(t, `[1]`), "/list")

	assert.Equal(t, []Op{
		{"op": "remove", "path": "/list/2"},
		{"op": "remove", "path": "/list/1"},
	}, fwd)
	assert.Equal(t, []Op{
		{"op": "add", "path": "/list/1", "value": float64(2)},
		{"op": "add", "path": "/list/2", "value": float64(3)},
	}, bwd)
}

func TestDiffTypeChangeReplaces(t *testing.T) {
	fwd, _ := Diff(decode(t, `{"a": {"x": 1}}`), decode(t, `{"a": [1]}`), "")
	require.Len(t, fwd, 1)
	assert.Equal(t, "replace", fwd[0]["op"])
	assert.Equal(t, "/a", fwd[0]["path"])
}
