package formstate

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planning-bee/internal/model"
	"planning-bee/internal/store"
)

type failingBackend struct {
	*store.Memory
	fail bool
}

func (f *failingBackend) Save(ctx context.Context, id string, s store.Sections) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Memory.Save(ctx, id, s)
}

func TestPatchThenGetRoundTrips(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, store.NewMemory(), "s1", nil)
	require.NoError(t, err)

	v := json.RawMessage(`{ "children": [ {"id": "c1", "fullName": "Jane Doe"} ],   "residue": {} }`)
	require.NoError(t, c.Patch(ctx, model.SectionWillInstructions, v))

	got, err := c.Get(model.SectionWillInstructions)
	require.NoError(t, err)
	assert.Equal(t, string(v), string(got))
}

func TestGetUnsetSectionIsEmptyObject(t *testing.T) {
	c, err := Open(context.Background(), store.NewMemory(), "s1", nil)
	require.NoError(t, err)

	got, err := c.Get(model.SectionSignatures)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c, _ := Open(ctx, store.NewMemory(), "s1", nil)
	require.NoError(t, c.Patch(ctx, model.SectionSignatures, json.RawMessage(`{"a":1}`)))

	got, _ := c.Get(model.SectionSignatures)
	got[5] = '2'
	again, _ := c.Get(model.SectionSignatures)
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestPatchRejectsUnknownSectionAndBadJSON(t *testing.T) {
	ctx := context.Background()
	c, _ := Open(ctx, store.NewMemory(), "s1", nil)

	err := c.Patch(ctx, "payments", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownSection)

	err = c.Patch(ctx, model.SectionClientDetails, json.RawMessage(`{"client1":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	err = c.Patch(ctx, model.SectionClientDetails, nil)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	for _, v := range []string{`[]`, `"x"`, `7`, `null`} {
		err = c.Patch(ctx, model.SectionClientDetails, json.RawMessage(v))
		assert.ErrorIs(t, err, ErrInvalidJSON, v)
	}
	got, err := c.Get(model.SectionClientDetails)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	_, err = c.Get("payments")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestLastWriteWins(t *testing.T) {
	ctx := context.Background()
	c, _ := Open(ctx, store.NewMemory(), "s1", nil)
	require.NoError(t, c.Patch(ctx, model.SectionReviewSign, json.RawMessage(`{"notes":"first"}`)))
	require.NoError(t, c.Patch(ctx, model.SectionReviewSign, json.RawMessage(`{"adviserName":"second"}`)))

	got, _ := c.Get(model.SectionReviewSign)
	assert.Equal(t, `{"adviserName":"second"}`, string(got))
}

func TestPatchIsMirroredToBackend(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	c, _ := Open(ctx, backend, "s1", nil)
	require.NoError(t, c.Patch(ctx, model.SectionClientDetails, json.RawMessage(`{"caseNotes":"x"}`)))

	reopened, err := Open(ctx, backend, "s1", nil)
	require.NoError(t, err)
	got, _ := reopened.Get(model.SectionClientDetails)
	assert.JSONEq(t, `{"caseNotes":"x"}`, string(got))
}

func TestFailedPersistRestoresPreviousValue(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{Memory: store.NewMemory()}
	c, _ := Open(ctx, backend, "s1", nil)
	require.NoError(t, c.Patch(ctx, model.SectionSignatures, json.RawMessage(`{"client1":"a"}`)))

	backend.fail = true
	err := c.Patch(ctx, model.SectionSignatures, json.RawMessage(`{"client1":"b"}`))
	require.Error(t, err)

	got, _ := c.Get(model.SectionSignatures)
	assert.Equal(t, `{"client1":"a"}`, string(got))
}

func TestSnapshotHasEverySection(t *testing.T) {
	ctx := context.Background()
	c, _ := Open(ctx, store.NewMemory(), "s1", nil)
	require.NoError(t, c.Patch(ctx, model.SectionSignatures, json.RawMessage(`{"client1":"a"}`)))

	snap := c.Snapshot()
	assert.Len(t, snap, len(model.Sections))
	assert.Equal(t, "{}", string(snap[model.SectionClientDetails]))

	// the snapshot is detached from later patches
	require.NoError(t, c.Patch(ctx, model.SectionSignatures, json.RawMessage(`{"client1":"b"}`)))
	assert.Equal(t, `{"client1":"a"}`, string(snap[model.SectionSignatures]))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	c, _ := Open(ctx, backend, "s1", nil)
	require.NoError(t, c.Patch(ctx, model.SectionSignatures, json.RawMessage(`{"client1":"a"}`)))

	require.NoError(t, c.Reset(ctx))
	got, _ := c.Get(model.SectionSignatures)
	assert.Equal(t, "{}", string(got))
	_, err := backend.Load(ctx, "s1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestManagerReusesContainers(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemory(), nil)

	a, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	b, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestManagerResetForgetsContainer(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	m := NewManager(backend, nil)

	a, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, a.Patch(ctx, model.SectionSignatures, json.RawMessage(`{"client1":"a"}`)))

	require.NoError(t, m.Reset(ctx, "s1"))
	assert.Empty(t, m.containers)
	_, err = backend.Load(ctx, "s1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	b, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	got, _ := b.Get(model.SectionSignatures)
	assert.Equal(t, "{}", string(got))

	assert.ErrorIs(t, m.Reset(ctx, ""), ErrInvalidSessionID)
}
