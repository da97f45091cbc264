package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

type ActionStatus string

const (
	ActionPending  ActionStatus = "pending"
	ActionApproved ActionStatus = "approved"
	ActionRejected ActionStatus = "rejected"
)

// ErrInvalidStatus is returned when an action carries an unknown status.
var ErrInvalidStatus = errors.New("invalid action status")

// Valid reports whether s is a known status.
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionPending, ActionApproved, ActionRejected:
		return true
	}
	return false
}

// Action is an organizer's decision on a directed intro.
type Action struct {
	ID        uuid.UUID    `json:"id"`
	FromID    string       `json:"from_id"`
	ToID      string       `json:"to_id"`
	Status    ActionStatus `json:"status"`
	Notes     string       `json:"notes"`
	UpdatedAt *time.Time   `json:"updated_at"`
}

type actionJSON struct {
	ID        *uuid.UUID   `json:"id,omitempty"`
	FromID    string       `json:"from_id"`
	ToID      string       `json:"to_id"`
	Status    ActionStatus `json:"status"`
	Notes     string       `json:"notes"`
	UpdatedAt string       `json:"updated_at"`
}

// MarshalJSON omits the id of an unsaved action and renders a missing
// updated_at as "".
func (a Action) MarshalJSON() ([]byte, error) {
	out := actionJSON{FromID: a.FromID, ToID: a.ToID, Status: a.Status, Notes: a.Notes}
	if a.ID != uuid.Nil {
		id := a.ID
		out.ID = &id
	}
	if a.UpdatedAt != nil {
		out.UpdatedAt = a.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var in actionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Action{FromID: in.FromID, ToID: in.ToID, Status: in.Status, Notes: in.Notes}
	if in.ID != nil {
		a.ID = *in.ID
	}
	if in.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, in.UpdatedAt)
		if err != nil {
			return fmt.Errorf("updated_at: %w", err)
		}
		a.UpdatedAt = &t
	}
	return nil
}

// Key identifies the intro an action refers to.
func (a Action) Key() string { return ActionKey(a.FromID, a.ToID) }

// ActionKey joins a directed pair into the lookup key used for actions.
func ActionKey(fromID, toID string) string {
	return fromID + "::" + toID
}

// DefaultAction is the placeholder shown for an intro nobody has acted on.
func DefaultAction(fromID, toID string) Action {
	return Action{FromID: fromID, ToID: toID, Status: ActionPending}
}

// Validate checks the fields an upsert needs.
func (a Action) Validate() error {
	if a.FromID == "" || a.ToID == "" {
		return errors.New("from_id and to_id are required")
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, a.Status)
	}
	return nil
}

// ActionIndex maps ActionKey to action.
func ActionIndex(actions []Action) map[string]Action {
	idx := make(map[string]Action, len(actions))
	for _, a := range actions {
		idx[a.Key()] = a
	}
	return idx
}

// Store persists organizer actions and runtime profiles. An empty profile
// list means the seed profiles are in effect.
type Store interface {
	// UpsertAction validates a, then inserts or replaces the action for its
	// pair. ID and UpdatedAt are set on a.
	UpsertAction(ctx context.Context, a *Action) error
	ListActions(ctx context.Context) ([]Action, error)

	ListProfiles(ctx context.Context) ([]profile.Profile, error)
	// SaveProfiles replaces all runtime profiles when overwrite is set and
	// merges by id otherwise. It returns the number stored afterwards.
	SaveProfiles(ctx context.Context, profiles []profile.Profile, overwrite bool) (int, error)
	ResetProfiles(ctx context.Context) error

	Close() error
}

// mergeProfiles replaces existing entries by id in place and appends new ones.
func mergeProfiles(existing, incoming []profile.Profile) []profile.Profile {
	out := make([]profile.Profile, len(existing), len(existing)+len(incoming))
	copy(out, existing)
	pos := make(map[string]int, len(out))
	for i, p := range out {
		pos[p.ID] = i
	}
	for _, p := range incoming {
		if i, ok := pos[p.ID]; ok {
			out[i] = p
			continue
		}
		pos[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}
