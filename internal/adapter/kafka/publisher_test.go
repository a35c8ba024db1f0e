package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vientodata/enviro-etl-service/internal/ingest"
)

func TestDisabledPublisher_IsNoOp(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPublisher(false, nil, "", logger)

	err := p.PublishSummary(context.Background(), ingest.Summary{Domain: "weather"})
	assert.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestSummarySerialization(t *testing.T) {
	summary := ingest.Summary{
		RunID:      uuid.New(),
		Domain:     "marine",
		StartedAt:  time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC),
		Duration:   4.2,
		Attempted:  3,
		Succeeded:  2,
		Failed:     1,
		PointsRows: 480,
		DailyRows:  14,
		Errors:     []string{"santander: fetch marine: connection refused"},
	}

	payload, err := json.Marshal(summary)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, summary.RunID.String(), decoded["run_id"])
	assert.Equal(t, "marine", decoded["domain"])
	assert.EqualValues(t, 3, decoded["attempted"])
	assert.EqualValues(t, 480, decoded["points_rows"])
	assert.Contains(t, decoded, "errors")

	t.Run("empty errors omitted", func(t *testing.T) {
		summary.Errors = nil
		payload, err := json.Marshal(summary)
		require.NoError(t, err)
		assert.NotContains(t, string(payload), "errors")
	})
}
