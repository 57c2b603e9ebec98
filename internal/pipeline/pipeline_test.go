package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotationlab/backend/internal/marketdata"
	"github.com/rotationlab/backend/internal/preset"
	"github.com/rotationlab/backend/internal/report"
	"github.com/rotationlab/backend/internal/signals"
	"github.com/rotationlab/backend/internal/universe"
	"github.com/rotationlab/backend/pkg/logger"
)

// 2026-08-28 is a Friday.
var testAsOf = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func testPipeline(t *testing.T, source marketdata.Source) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	return New(Options{
		Preset:   preset.Classic(),
		Universe: universe.Default(),
		Source:   source,
		Store:    signals.NewStore(filepath.Join(dir, "ledger.json")),
		Writer:   report.NewWriter(filepath.Join(dir, "out"), logger.NewNop()),
		Logger:   logger.NewNop(),
		Lookback: 160,
	}), dir
}

func TestRunEndToEnd(t *testing.T) {
	p, dir := testPipeline(t, marketdata.NewSyntheticSource(42, testAsOf))

	rep, err := p.Run(context.Background(), testAsOf, false)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-28", rep.Metadata.Date)
	assert.Equal(t, 11, rep.Metadata.TotalSectors)
	assert.Len(t, rep.Nodes, 11)
	assert.Equal(t, "classic", rep.Metadata.PresetID)
	assert.Len(t, rep.Metadata.PresetHash, 12)
	assert.NotEmpty(t, rep.Metadata.Narrative)
	assert.NotZero(t, rep.Metadata.GeneratedAt)
	assert.NotEmpty(t, rep.Regime.Regime)

	for _, n := range rep.Nodes {
		assert.NotEmpty(t, n.Phase, "sector %s classified", n.ID)
		assert.GreaterOrEqual(t, n.PhaseStrength, 0.0)
		assert.LessOrEqual(t, n.PhaseStrength, 100.0)
	}

	out := filepath.Join(dir, "out")
	for _, name := range []string{"latest.json", "data.js", "signals_history.json"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, "artifact %s written", name)
	}
	_, err = os.Stat(filepath.Join(out, "sectors", "XLK.json"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "ledger.json"))
	assert.NoError(t, err, "ledger persisted")
}

func TestRunRepeatedIsStable(t *testing.T) {
	p, _ := testPipeline(t, marketdata.NewSyntheticSource(42, testAsOf))

	first, err := p.Run(context.Background(), testAsOf, true)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), testAsOf, false)
	require.NoError(t, err)

	assert.Equal(t, first.Metadata.Date, second.Metadata.Date)
	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Rotations, second.Rotations)
	assert.Equal(t, len(first.SignalsHistory), len(second.SignalsHistory))
}

// benchlessSource drops the benchmark from whatever the inner source fetched.
type benchlessSource struct {
	inner marketdata.Source
}

func (s benchlessSource) Fetch(ctx context.Context, symbols []string, lookbackDays int) (*marketdata.Frame, error) {
	frame, err := s.inner.Fetch(ctx, symbols, lookbackDays)
	if err != nil {
		return nil, err
	}
	delete(frame.Series, "SPY")
	return frame, nil
}

func TestRunBenchmarkMissing(t *testing.T) {
	p, _ := testPipeline(t, benchlessSource{marketdata.NewSyntheticSource(42, testAsOf)})

	_, err := p.Run(context.Background(), testAsOf, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBenchmarkMissing))
}

func TestRunTruncatesPartialDays(t *testing.T) {
	// The feed carries bars through Friday the 28th; running as of Wednesday
	// the 26th must ignore the two newer sessions.
	p, _ := testPipeline(t, marketdata.NewSyntheticSource(42, testAsOf))

	wed := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	rep, err := p.Run(context.Background(), wed, false)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-26", rep.Metadata.Date)
}

func TestTruncateAfter(t *testing.T) {
	bars := []marketdata.Bar{
		{Date: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), Close: 100},
		{Date: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), Close: 101},
		{Date: time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), Close: 102},
	}
	s, err := marketdata.NewPriceSeries("SPY", bars)
	require.NoError(t, err)

	same := truncateAfter(s, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 3, same.Len(), "nothing after asOf, series untouched")

	cut := truncateAfter(s, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	require.Equal(t, 1, cut.Len())
	assert.Equal(t, 100.0, cut.Closes()[0])

	empty := truncateAfter(s, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, empty.Len())
}
