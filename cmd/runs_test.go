package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/store"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 10, 1, 10, 30, 0, 0, time.UTC)
	runs := []store.RunSummary{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Kind:      model.RunKindProfile,
			Entries:   16,
			TopScore:  35.0658,
			CreatedAt: now,
		},
		{
			ID:        "short",
			Kind:      model.RunKindRaw,
			CreatedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "TOP_SCORE")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "profile")
	assert.Contains(t, output, "35.07")
	assert.Contains(t, output, "2026-10-01 10:30")
	assert.Contains(t, output, "short")
	assert.Contains(t, output, "2026-10-01 09:30")
}

func TestFormatRun(t *testing.T) {
	str := 2.52
	p := model.DefaultProfile()
	run := &model.Run{
		ID:      "run-1",
		Kind:    model.RunKindProfile,
		Profile: &p,
		Entries: []model.RunEntry{
			{OpportunityID: "es_848_penn", City: "El Segundo", Score: 35.0658, StrScore: &str, Drivers: []string{"a", "b"}},
			{OpportunityID: "hw_1", City: "Hawthorne", Score: 20},
		},
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	formatRun(&buf, run)

	output := buf.String()
	assert.Contains(t, output, "Run run-1 (profile) created 2026-10-01 12:00")
	assert.Contains(t, output, "credit=B")
	assert.Contains(t, output, "[SmallMF]")
	assert.Contains(t, output, "35.07")
	assert.Contains(t, output, "2.52")
	assert.Contains(t, output, "a; b")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "abc", truncateID("abc"))
}
