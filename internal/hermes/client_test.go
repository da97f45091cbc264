package hermes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingClient struct {
	subjects []string
	err      error
}

func (r *recordingClient) Publish(_ context.Context, subject string, _ any) error {
	r.subjects = append(r.subjects, subject)
	return r.err
}

func (r *recordingClient) Subscribe(string, Handler) error { return nil }
func (r *recordingClient) Close()                          {}

func TestEmit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	assert.NotPanics(t, func() { Emit(ctx, nil, logger, SubjectProfilesReset, ProfilesResetEvent{}) })

	rc := &recordingClient{}
	Emit(ctx, rc, logger, SubjectProfilesReset, ProfilesResetEvent{SeedProfiles: 5})
	assert.Equal(t, []string{SubjectProfilesReset}, rc.subjects)

	failing := &recordingClient{err: errors.New("no responders")}
	assert.NotPanics(t, func() { Emit(ctx, failing, logger, SubjectDashboardComputed, DashboardComputedEvent{}) })
	assert.Len(t, failing.subjects, 1)
}
