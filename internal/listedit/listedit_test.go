package listedit

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planning-bee/internal/model"
)

func mustDecode(t *testing.T, s string) Doc {
	t.Helper()
	doc, err := Decode([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("residue.percentageGroups[g1].beneficiaries")
	require.NoError(t, err)
	assert.Equal(t, "beneficiaries", p.Last())
	assert.Equal(t, "residue.percentageGroups[g1].beneficiaries", p.String())

	for _, bad := range []string{"", "  ", "children[c1]", "a..b", "[x].b", "a[].b", "a[x.b"} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrBadPath, bad)
	}
}

func TestAddAppendsWithUniqueID(t *testing.T) {
	doc := mustDecode(t, `{"children": [{"id": "c1", "fullName": "Amy"}]}`)
	p := MustParsePath("children")

	id, err := Add(doc, p, map[string]any{"fullName": ""})
	require.NoError(t, err)

	list, err := List(doc, p)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.NotEqual(t, "c1", id)
	assert.Equal(t, id, IDOf(list[1]))
	assert.Equal(t, "", list[1]["fullName"])
}

func TestAddCreatesMissingParents(t *testing.T) {
	doc := Doc{}
	id, err := Add(doc, MustParsePath("executors.client1"), nil)
	require.NoError(t, err)

	rec, err := Find(doc, MustParsePath("executors.client1"), id)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": id}, rec)
}

func TestUpdateChangesOneField(t *testing.T) {
	raw := `{"children": [
		{"id": "c1", "fullName": "Amy", "dob": "2001-02-03"},
		{"id": "c2", "fullName": "Ben", "dob": "2004-05-06"}
	], "additionalInstructions": "none"}`
	doc := mustDecode(t, raw)
	before := mustDecode(t, raw)

	require.NoError(t, Update(doc, MustParsePath("children"), "c2", "fullName", "Benjamin"))

	want := before
	want["children"].([]any)[1].(map[string]any)["fullName"] = "Benjamin"
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("unexpected document (-want +got):\n%s", diff)
	}
}

func TestUpdateRejectsIDAndUnknownRecord(t *testing.T) {
	doc := mustDecode(t, `{"children": [{"id": "c1"}]}`)
	p := MustParsePath("children")

	assert.ErrorIs(t, Update(doc, p, "c1", "id", "x"), ErrImmutableField)
	assert.ErrorIs(t, Update(doc, p, "c1", "", "x"), ErrImmutableField)
	assert.ErrorIs(t, Update(doc, p, "nope", "fullName", "x"), ErrRecordNotFound)
}

func TestRemove(t *testing.T) {
	doc := mustDecode(t, `{"bequests": [{"id": "b1"}, {"id": "b2"}, {"id": "b3"}]}`)
	p := MustParsePath("bequests")

	require.NoError(t, Remove(doc, p, "b2"))

	list, err := List(doc, p)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, rec := range list {
		ids = append(ids, IDOf(rec))
	}
	assert.Equal(t, []string{"b1", "b3"}, ids)

	assert.ErrorIs(t, Remove(doc, p, "b2"), ErrRecordNotFound)
}

func TestRemoveDoesNotAliasOriginalList(t *testing.T) {
	doc := mustDecode(t, `{"bequests": [{"id": "b1"}, {"id": "b2"}]}`)
	original := doc["bequests"].([]any)

	require.NoError(t, Remove(doc, MustParsePath("bequests"), "b1"))

	assert.Equal(t, "b1", IDOf(original[0].(map[string]any)))
}

func TestNestedBeneficiaries(t *testing.T) {
	doc := mustDecode(t, `{"residue": {"percentageGroups": [
		{"id": "g1", "beneficiaries": [{"id": "p1", "fullName": "Amy"}]},
		{"id": "g2", "beneficiaries": [{"id": "p1", "fullName": "Zed"}]}
	]}}`)
	p := MustParsePath("residue.percentageGroups[g1].beneficiaries")

	id, err := Add(doc, p, map[string]any{"fullName": "Ben"})
	require.NoError(t, err)
	require.NoError(t, Update(doc, p, "p1", "fullName", "Amelia"))

	g1, err := List(doc, p)
	require.NoError(t, err)
	require.Len(t, g1, 2)
	assert.Equal(t, "Amelia", g1[0]["fullName"])
	assert.Equal(t, id, IDOf(g1[1]))

	g2, err := List(doc, MustParsePath("residue.percentageGroups[g2].beneficiaries"))
	require.NoError(t, err)
	require.Len(t, g2, 1)
	assert.Equal(t, "Zed", g2[0]["fullName"])

	_, err = Add(doc, MustParsePath("residue.percentageGroups[g9].beneficiaries"), nil)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestNumericIDs(t *testing.T) {
	doc := mustDecode(t, `{"children": [{"id": 1700000000001, "fullName": "Amy"}]}`)
	rec, err := Find(doc, MustParsePath("children"), "1700000000001")
	require.NoError(t, err)
	assert.Equal(t, "Amy", rec["fullName"])

	out, err := Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"children": [{"id": 1700000000001, "fullName": "Amy"}]}`, string(out))
}

func TestRemoveChildCascadesToDisinherited(t *testing.T) {
	doc := mustDecode(t, `{
		"children": [{"id": "c1", "fullName": "Amy"}, {"id": "c2", "fullName": "Ben"}],
		"disinheritedChildren": [
			{"id": "d1", "childId": "c1", "name": "Amy", "isExistingChild": true},
			{"id": "d2", "childId": "", "name": "Jane Doe", "relationship": "daughter"}
		]
	}`)
	p := MustParsePath("children")

	require.NoError(t, Remove(doc, p, "c1", CascadesFor(model.SectionWillInstructions, p)...))

	dis, err := List(doc, MustParsePath("disinheritedChildren"))
	require.NoError(t, err)
	require.Len(t, dis, 1)
	assert.Equal(t, "d2", IDOf(dis[0]))
}

func TestRemoveChildDropsEntriesKeyedByChildID(t *testing.T) {
	doc := mustDecode(t, `{
		"children": [{"id": "c1", "fullName": "Jane Doe"}, {"id": 1700000000002, "fullName": "Ben"}],
		"disinheritedChildren": [
			{"id": "c1", "isExistingChild": true},
			{"id": 1700000000002, "isExistingChild": true},
			{"id": "c1", "name": "Jane Doe", "relationship": "daughter"},
			{"id": "c1", "childId": "c9", "isExistingChild": true}
		]
	}`)
	p := MustParsePath("children")

	require.NoError(t, Remove(doc, p, "c1", CascadesFor(model.SectionWillInstructions, p)...))
	dis, err := List(doc, MustParsePath("disinheritedChildren"))
	require.NoError(t, err)
	require.Len(t, dis, 3)
	assert.Equal(t, "1700000000002", IDOf(dis[0]))
	assert.Equal(t, "Jane Doe", dis[1]["name"])
	assert.Equal(t, "c9", dis[2]["childId"])

	require.NoError(t, Remove(doc, p, "1700000000002", CascadesFor(model.SectionWillInstructions, p)...))
	dis, err = List(doc, MustParsePath("disinheritedChildren"))
	require.NoError(t, err)
	assert.Len(t, dis, 2)
}

func TestCascadeWithoutTargetList(t *testing.T) {
	doc := mustDecode(t, `{"children": [{"id": "c1"}]}`)
	p := MustParsePath("children")
	require.NoError(t, Remove(doc, p, "c1", CascadesFor(model.SectionWillInstructions, p)...))
	assert.Empty(t, CascadesFor(model.SectionClientDetails, p))
}

func TestCopyPersonIsOneShot(t *testing.T) {
	src := Person{Title: "Mrs", FullName: "Jane Doe", Relationship: "Wife", Address: "1 High St"}
	doc := mustDecode(t, `{"bequests": []}`)
	p := MustParsePath("bequests")

	id, err := Add(doc, p, map[string]any{"giftType": model.GiftMoney})
	require.NoError(t, err)
	rec, err := Find(doc, p, id)
	require.NoError(t, err)

	CopyPerson(rec, src, FieldsFor("bequests"))
	src.FullName = "Jane Smith"

	assert.Equal(t, "Jane Doe", rec["beneficiaryName"])
	assert.Equal(t, "Mrs", rec["beneficiaryTitle"])
	assert.Equal(t, "Wife", rec["beneficiaryRelationship"])
	assert.Equal(t, "1 High St", rec["beneficiaryAddress"])
	assert.NotContains(t, rec, "fullName")
}

func TestCopyPersonKeepsExistingOnBlank(t *testing.T) {
	rec := map[string]any{"fullName": "Typed by hand", "dob": "1980-01-01"}
	CopyPerson(rec, Person{FullName: " ", Title: "Mr"}, PersonFields)

	assert.Equal(t, map[string]any{"fullName": "Typed by hand", "dob": "1980-01-01", "title": "Mr"}, rec)
}

func TestFieldsFor(t *testing.T) {
	assert.Equal(t, OccupantFields, FieldsFor("propertyTrusts"))
	assert.Equal(t, DisinheritedFields, FieldsFor("disinheritedChildren"))
	assert.Equal(t, PersonFields, FieldsFor("executors.client1"))
}

func TestEncodeRoundTripKeepsUntouchedRecords(t *testing.T) {
	raw := `{"children":[{"id":"c1","fullName":"Amy"},{"id":"c2","fullName":"Ben"}]}`
	doc := mustDecode(t, raw)
	require.NoError(t, Update(doc, MustParsePath("children"), "c2", "fullName", "Bob"))

	out, err := Encode(doc)
	require.NoError(t, err)

	var got struct {
		Children []json.RawMessage `json:"children"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.JSONEq(t, `{"id":"c1","fullName":"Amy"}`, string(got.Children[0]))
}
