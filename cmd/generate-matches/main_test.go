package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilesJSON = `[
  {"id": "amara", "name": "Amara Okafor", "title": "Investment Director", "organization": "Gulf Sovereign Fund",
   "mandate": "Deploy capital into tokenized real-world assets and custody infrastructure",
   "focus": ["tokenization", "custody"], "looking_for": ["Series B custody platforms", "co-invest partners"]},
  {"id": "marcus", "name": "Marcus Chen", "title": "CEO", "organization": "VaultBridge",
   "product": "Institutional custody platform for tokenized assets",
   "thesis": "Raised Series A, live with two banks",
   "looking_for": ["strategic investors", "regulatory sandbox access"]},
  {"id": "klaus", "name": "Klaus Weber", "title": "Head of Digital Assets", "organization": "Deutsche Bundesbank",
   "mandate": "Supervise wholesale settlement experiments",
   "focus": ["CBDC", "supervision"], "looking_for": ["industry pilot partners"]}
]`

func TestRun(t *testing.T) {
	for _, k := range []string{"MATCHMAKER_RATIONALE_ENABLED", "MATCHMAKER_PORT", "MATCHMAKER_METRICS_PORT"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "profiles.json")
	out := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(in, []byte(profilesJSON), 0o600))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(context.Background(), in, out, 2, "", logger))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var result struct {
		Matches       map[string][]map[string]any `json:"matches"`
		TopIntroPairs []map[string]any            `json:"top_intro_pairs"`
		NonObvious    []map[string]any            `json:"top_non_obvious_pairs"`
	}
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Len(t, result.Matches, 3)
	for id, rows := range result.Matches {
		assert.Len(t, rows, 2, id)
		assert.EqualValues(t, 1, rows[0]["priority_rank"])
	}
	require.Len(t, result.TopIntroPairs, 2)
	assert.Equal(t, "amara", result.TopIntroPairs[0]["from_id"])
	assert.Equal(t, "marcus", result.TopIntroPairs[0]["to_id"])
	for _, p := range result.NonObvious {
		assert.Contains(t, p, "novelty_score")
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := run(context.Background(), filepath.Join(dir, "missing.json"), filepath.Join(dir, "out.json"), 10, "", logger)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id": "x"}]`), 0o600))
	err = run(context.Background(), bad, filepath.Join(dir, "out.json"), 10, "", logger)
	assert.Error(t, err)
}
