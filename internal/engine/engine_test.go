package engine

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"

	"planning-bee/internal/formstate"
	"planning-bee/internal/model"
	"planning-bee/internal/store"
)

func newSession(t *testing.T) (*formstate.Container, store.Backend) {
	t.Helper()
	backend := store.NewMemory()
	c, err := formstate.Open(context.Background(), backend, "s1", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return c, backend
}

func mut(id, name, props string) model.Mutation {
	return model.Mutation{MutationID: id, MutationName: name, Properties: json.RawMessage(props)}
}

func run(t *testing.T, c *formstate.Container, muts ...model.Mutation) *model.MutationResponse {
	t.Helper()
	resp, err := New(nil).Process(context.Background(), c, &model.MutationRequest{SessionID: c.ID(), Mutations: muts})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	return resp
}

func section(t *testing.T, c *formstate.Container, name string, v any) {
	t.Helper()
	raw, err := c.Get(name)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
}

func TestAddChildThenDisinheritAndRemove(t *testing.T) {
	c, _ := newSession(t)

	resp := run(t, c,
		mut("m1", "list_add", `{"section": "willInstructions", "list": "children",
			"value": {"fullName": "Amy Doe", "relationshipClient1": "Daughter", "dob": "2001-02-03"}}`),
	)
	if resp.Metadata.Outcome != model.OutcomeSuccess {
		t.Fatalf("expected SUCCESS, got %s: %+v", resp.Metadata.Outcome, resp.Result.Messages)
	}
	childID := resp.Result.Mutations[0].CreatedID
	if childID == "" {
		t.Fatal("expected created id for list_add")
	}

	resp = run(t, c,
		mut("m2", "select_person", `{"section": "willInstructions", "list": "disinheritedChildren",
			"source": {"kind": "child", "id": "`+childID+`"}}`),
	)
	if resp.Metadata.Outcome != model.OutcomeSuccess {
		t.Fatalf("expected SUCCESS, got %s: %+v", resp.Metadata.Outcome, resp.Result.Messages)
	}

	var wi model.WillInstructions
	section(t, c, model.SectionWillInstructions, &wi)
	if len(wi.DisinheritedChildren) != 1 {
		t.Fatalf("expected 1 disinherited child, got %d", len(wi.DisinheritedChildren))
	}
	d := wi.DisinheritedChildren[0]
	if string(d.ChildID) != childID || d.Name != "Amy Doe" || d.Relationship != "Daughter" || !d.IsExistingChild {
		t.Fatalf("unexpected disinherited entry: %+v", d)
	}

	resp = run(t, c, mut("m3", "list_remove", `{"section": "willInstructions", "list": "children", "id": "`+childID+`"}`))
	if resp.Metadata.Outcome != model.OutcomeSuccess {
		t.Fatalf("expected SUCCESS, got %s", resp.Metadata.Outcome)
	}

	wi = model.WillInstructions{}
	section(t, c, model.SectionWillInstructions, &wi)
	if len(wi.Children) != 0 || len(wi.DisinheritedChildren) != 0 {
		t.Fatalf("expected child and its disinherited entry removed, got %+v", wi)
	}
}

func TestUnknownMutation(t *testing.T) {
	c, _ := newSession(t)

	resp := run(t, c, mut("m1", "archive_session", `{}`))

	if resp.Metadata.Outcome != model.OutcomeFailure {
		t.Fatalf("expected FAILURE, got %s", resp.Metadata.Outcome)
	}
	if len(resp.Result.Messages) != 1 || resp.Result.Messages[0].Code != "UNKNOWN_MUTATION" {
		t.Fatalf("unexpected messages: %+v", resp.Result.Messages)
	}
	if string(resp.Result.Changes) != "[]" {
		t.Fatalf("expected no changes, got %s", resp.Result.Changes)
	}
}

func TestCriticalStopsAndStoresNothing(t *testing.T) {
	c, backend := newSession(t)

	resp := run(t, c,
		mut("m1", "merge_section", `{"section": "clientDetails", "path": "client1", "value": {"fullName": "Jane Doe"}}`),
		mut("m2", "list_update", `{"section": "willInstructions", "list": "children", "id": "missing", "field": "fullName", "value": "x"}`),
		mut("m3", "set_service", `{"service": "wills", "enabled": true}`),
	)

	if resp.Metadata.Outcome != model.OutcomeFailure {
		t.Fatalf("expected FAILURE, got %s", resp.Metadata.Outcome)
	}
	if len(resp.Result.Mutations) != 2 {
		t.Fatalf("expected processing to stop at the second mutation, got %d", len(resp.Result.Mutations))
	}
	if got := resp.Result.Messages[0].Code; got != "RECORD_NOT_FOUND" {
		t.Fatalf("expected RECORD_NOT_FOUND, got %s", got)
	}
	if _, err := backend.Load(context.Background(), "s1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
	raw, _ := c.Get(model.SectionClientDetails)
	if string(raw) != "{}" {
		t.Fatalf("expected clientDetails untouched, got %s", raw)
	}
}

func TestChangesAndRevert(t *testing.T) {
	c, _ := newSession(t)
	if err := c.Patch(context.Background(), model.SectionReviewSign, json.RawMessage(`{"adviserName":"Sam"}`)); err != nil {
		t.Fatal(err)
	}

	resp := run(t, c, mut("m1", "merge_section", `{"section": "reviewSignData", "value": {"adviserName": "Alex", "notes": "ok"}}`))

	var changes, revert []map[string]any
	if err := json.Unmarshal(resp.Result.Changes, &changes); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(resp.Result.Revert, &revert); err != nil {
		t.Fatal(err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 forward ops, got %s", resp.Result.Changes)
	}
	if changes[0]["path"] != "/reviewSignData/adviserName" || changes[0]["value"] != "Alex" {
		t.Fatalf("unexpected first op: %v", changes[0])
	}
	if changes[1]["op"] != "add" || changes[1]["path"] != "/reviewSignData/notes" {
		t.Fatalf("unexpected second op: %v", changes[1])
	}
	if len(revert) != 2 || revert[0]["value"] != "Sam" || revert[1]["op"] != "remove" {
		t.Fatalf("unexpected revert: %s", resp.Result.Revert)
	}
}

func TestResidueTotalWarningDoesNotBlock(t *testing.T) {
	c, _ := newSession(t)

	resp := run(t, c,
		mut("m1", "list_add", `{"section": "willInstructions", "list": "residue.percentageGroups", "value": {"percentage": 60, "type": "individual"}}`),
	)

	if resp.Metadata.Outcome != model.OutcomeSuccess {
		t.Fatalf("expected SUCCESS, got %s", resp.Metadata.Outcome)
	}
	if len(resp.Result.Messages) != 1 {
		t.Fatalf("expected 1 warning, got %+v", resp.Result.Messages)
	}
	m := resp.Result.Messages[0]
	if m.Level != model.LevelWarning || m.Code != "RESIDUE_TOTAL" {
		t.Fatalf("unexpected message: %+v", m)
	}
	if idx := resp.Result.Mutations[0].MessageIndexes; len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("unexpected message indexes: %v", idx)
	}

	var wi model.WillInstructions
	section(t, c, model.SectionWillInstructions, &wi)
	if len(wi.Residue.PercentageGroups) != 1 || wi.Residue.PercentageGroups[0].Percentage.Value() != 60 {
		t.Fatalf("group not stored: %+v", wi.Residue)
	}
}

func TestSetServiceAndReset(t *testing.T) {
	c, backend := newSession(t)

	resp := run(t, c,
		mut("m1", "set_service", `{"service": "lpaHealthWelfare", "enabled": true}`),
		mut("m2", "set_service", `{"service": "wills", "enabled": false}`),
	)
	if resp.Metadata.Outcome != model.OutcomeSuccess {
		t.Fatalf("expected SUCCESS, got %s", resp.Metadata.Outcome)
	}

	var cd model.ClientDetails
	section(t, c, model.SectionClientDetails, &cd)
	if !cd.ServicesRequired.LpaHealthWelfare || cd.ServicesRequired.Wills {
		t.Fatalf("unexpected services: %+v", cd.ServicesRequired)
	}

	resp = run(t, c, mut("m3", "set_service", `{"service": "telepathy", "enabled": true}`))
	if resp.Metadata.Outcome != model.OutcomeFailure || resp.Result.Messages[0].Code != "UNKNOWN_SERVICE" {
		t.Fatalf("expected UNKNOWN_SERVICE failure, got %+v", resp.Result.Messages)
	}

	run(t, c, mut("m4", "reset_session", ``))
	stored, err := backend.Load(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range model.Sections {
		if string(stored[name]) != "{}" {
			t.Fatalf("expected %s emptied, got %s", name, stored[name])
		}
	}
}

func TestPatchSectionRejectsNonObject(t *testing.T) {
	c, _ := newSession(t)

	resp := run(t, c, mut("m1", "patch_section", `{"section": "signatures", "value": [1, 2]}`))

	if resp.Metadata.Outcome != model.OutcomeFailure || resp.Result.Messages[0].Code != "INVALID_VALUE" {
		t.Fatalf("expected INVALID_VALUE failure, got %+v", resp.Result.Messages)
	}
}

type failingSession struct {
	*formstate.Container
}

func (f failingSession) PatchMany(context.Context, map[string]json.RawMessage) error {
	return errors.New("disk full")
}

func TestPersistFailureIsReturned(t *testing.T) {
	c, _ := newSession(t)

	_, err := New(nil).Process(context.Background(), failingSession{c}, &model.MutationRequest{
		Mutations: []model.Mutation{mut("m1", "set_service", `{"service": "probate", "enabled": true}`)},
	})

	if err == nil {
		t.Fatal("expected persistence error")
	}
}

func TestEmptyRequest(t *testing.T) {
	c, _ := newSession(t)

	resp := run(t, c)

	if resp.Metadata.Outcome != model.OutcomeSuccess || resp.Metadata.SessionID != "s1" || resp.Metadata.RequestID == "" {
		t.Fatalf("unexpected metadata: %+v", resp.Metadata)
	}
	if len(resp.Result.Messages) != 0 || len(resp.Result.Mutations) != 0 {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
}
