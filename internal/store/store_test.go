package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

func TestActionStatusValues(t *testing.T) {
	for _, s := range []ActionStatus{ActionPending, ActionApproved, ActionRejected} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ActionStatus("maybe").Valid())
	assert.False(t, ActionStatus("").Valid())
}

func TestActionValidate(t *testing.T) {
	err := (&Action{FromID: "a", ToID: "b", Status: "done"}).Validate()
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Error(t, (&Action{ToID: "b", Status: ActionPending}).Validate())
	assert.NoError(t, (&Action{FromID: "a", ToID: "b", Status: ActionApproved}).Validate())
}

func TestDefaultAction(t *testing.T) {
	a := DefaultAction("amara", "marcus")
	assert.Equal(t, ActionPending, a.Status)
	assert.Equal(t, "", a.Notes)
	assert.Nil(t, a.UpdatedAt)
	assert.Equal(t, "amara::marcus", a.Key())
}

func TestDefaultActionJSON(t *testing.T) {
	data, err := json.Marshal(DefaultAction("amara", "marcus"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"from_id":"amara","to_id":"marcus","status":"pending","notes":"","updated_at":""}`, string(data))
}

func TestActionJSONRoundTripsSavedFields(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	saved := Action{ID: uuid.New(), FromID: "a", ToID: "b", Status: ActionApproved, Notes: "n", UpdatedAt: &at}

	data, err := json.Marshal(saved)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"updated_at":"2026-03-01T09:00:00Z"`)

	var back Action
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, saved.ID, back.ID)
	require.NotNil(t, back.UpdatedAt)
	assert.True(t, at.Equal(*back.UpdatedAt))

	var empty Action
	require.NoError(t, json.Unmarshal([]byte(`{"from_id":"a","to_id":"b","status":"pending","notes":"","updated_at":""}`), &empty))
	assert.Nil(t, empty.UpdatedAt)
	assert.Equal(t, uuid.Nil, empty.ID)
}

func TestMemoryStoreUpsertAction(t *testing.T) {
	s := NewMemoryStore()
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	a := &Action{FromID: "amara", ToID: "marcus", Status: ActionApproved, Notes: "book breakfast"}
	require.NoError(t, s.UpsertAction(ctx, a))
	assert.NotEqual(t, uuid.Nil, a.ID)
	require.NotNil(t, a.UpdatedAt)
	assert.Equal(t, fixed, *a.UpdatedAt)
	firstID := a.ID

	b := &Action{FromID: "amara", ToID: "marcus", Status: ActionRejected}
	require.NoError(t, s.UpsertAction(ctx, b))
	assert.Equal(t, firstID, b.ID, "same pair keeps its id")

	require.NoError(t, s.UpsertAction(ctx, &Action{FromID: "klaus", ToID: "nadia", Status: ActionPending}))
	require.ErrorIs(t, s.UpsertAction(ctx, &Action{FromID: "x", ToID: "y", Status: "later"}), ErrInvalidStatus)

	actions, err := s.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "amara", actions[0].FromID)
	assert.Equal(t, ActionRejected, actions[0].Status)
	assert.Equal(t, "", actions[0].Notes)
	assert.Equal(t, "klaus", actions[1].FromID)

	idx := ActionIndex(actions)
	assert.Equal(t, ActionRejected, idx["amara::marcus"].Status)
	_, ok := idx["marcus::amara"]
	assert.False(t, ok, "actions are directed")
}

func TestMemoryStoreProfiles(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := s.SaveProfiles(ctx, []profile.Profile{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SaveProfiles(ctx, []profile.Profile{{ID: "b", Name: "B2"}, {ID: "c", Name: "C"}}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	got, _ = s.ListProfiles(ctx)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	assert.Equal(t, "B2", got[1].Name)

	n, err = s.SaveProfiles(ctx, []profile.Profile{{ID: "z", Name: "Z"}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.SaveProfiles(ctx, []profile.Profile{{ID: "q"}}, false)
	assert.ErrorIs(t, err, profile.ErrMissingName)
	got, _ = s.ListProfiles(ctx)
	assert.Equal(t, []string{"z"}, ids(got), "failed save leaves state alone")

	require.NoError(t, s.ResetProfiles(ctx))
	got, _ = s.ListProfiles(ctx)
	assert.Empty(t, got)
}

func TestMergeProfiles(t *testing.T) {
	existing := []profile.Profile{{ID: "a", Name: "A"}}
	merged := mergeProfiles(existing, []profile.Profile{{ID: "a", Name: "A2"}, {ID: "b", Name: "B"}, {ID: "b", Name: "B2"}})
	assert.Equal(t, []string{"a", "b"}, ids(merged))
	assert.Equal(t, "A2", merged[0].Name)
	assert.Equal(t, "B2", merged[1].Name)
	assert.Equal(t, "A", existing[0].Name, "input slice is not modified")
}

func ids(ps []profile.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
