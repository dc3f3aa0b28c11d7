package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/store"
)

func TestRunScore_Table(t *testing.T) {
	useTestConfig(t)

	var buf bytes.Buffer
	require.NoError(t, runScore(context.Background(), &buf, scoreOptions{
		outputOptions: outputOptions{Format: "table"},
		City:          "el segundo",
		MinScore:      7,
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "es_848_penn")
	assert.Contains(t, lines[1], "7.12")
}

func TestRunScore_Verbose(t *testing.T) {
	useTestConfig(t)

	var buf bytes.Buffer
	require.NoError(t, runScore(context.Background(), &buf, scoreOptions{
		outputOptions: outputOptions{Format: "table"},
		City:          "El Segundo",
		MinScore:      7,
		Verbose:       true,
	}))

	out := buf.String()
	assert.Contains(t, out, "WEIGHTED")
	assert.Contains(t, out, "es_848_penn")
}

func TestRunScore_Save(t *testing.T) {
	useTestConfig(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, runScore(ctx, &buf, scoreOptions{
		outputOptions: outputOptions{Format: "csv"},
		Save:          true,
	}))

	st, err := initStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(ctx, store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunKindRaw, runs[0].Kind)
	assert.Equal(t, 16, runs[0].Entries)

	run, err := st.GetRun(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "es_848_penn", run.Entries[0].OpportunityID)
	assert.InDelta(t, 7.1232, run.Entries[0].Score, 1e-9)
}

func TestRunScore_BadFormat(t *testing.T) {
	useTestConfig(t)
	err := runScore(context.Background(), &bytes.Buffer{}, scoreOptions{outputOptions: outputOptions{Format: "pdf"}})
	assert.Error(t, err)
}

func TestRunSTR(t *testing.T) {
	useTestConfig(t)

	var buf bytes.Buffer
	require.NoError(t, runSTR(context.Background(), &buf, strOptions{
		outputOptions: outputOptions{Format: "table"},
		City:          "El Segundo",
	}))
	assert.Contains(t, buf.String(), "es_848_penn")
	assert.Contains(t, buf.String(), "hostile")
	assert.NotContains(t, buf.String(), "Hawthorne")
}
