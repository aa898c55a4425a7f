package stats

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/store"
)

type memBlobs struct {
	data    map[string][]byte
	failPut error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memBlobs) Put(_ context.Context, key string, value []byte) error {
	if m.failPut != nil {
		return m.failPut
	}
	m.data[key] = value
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAccuracy(t *testing.T) {
	ctx := context.Background()
	tr := LoadTracker(ctx, newMemBlobs(), quietLogger())

	_, ok := tr.Accuracy("個")
	assert.False(t, ok)

	require.NoError(t, tr.Record(ctx, "個", true))
	pct, ok := tr.Accuracy("個")
	require.True(t, ok)
	assert.Equal(t, 100, pct)

	require.NoError(t, tr.Record(ctx, "個", false))
	pct, _ = tr.Accuracy("個")
	assert.Equal(t, 50, pct)

	require.NoError(t, tr.Record(ctx, "個", true))
	pct, _ = tr.Accuracy("個")
	assert.Equal(t, 67, pct)
}

func TestTrackerPersistsEveryRecord(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	tr := LoadTracker(ctx, blobs, quietLogger())
	require.NoError(t, tr.Record(ctx, "本", false))
	require.NoError(t, tr.Record(ctx, "本", true))
	assert.JSONEq(t, `{"本":{"correct":1,"incorrect":1}}`, string(blobs.data[BlobKey]))

	reloaded := LoadTracker(ctx, blobs, quietLogger())
	assert.Equal(t, model.CounterStats{Correct: 1, Incorrect: 1}, reloaded.Get("本"))
}

func TestTrackerCorruptBlob(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	blobs.data[BlobKey] = []byte("[broken")
	tr := LoadTracker(ctx, blobs, quietLogger())
	assert.Empty(t, tr.All())

	blobs.data[BlobKey] = []byte(`{"個":{"correct":-1,"incorrect":2},"本":{"correct":3,"incorrect":0}}`)
	tr = LoadTracker(ctx, blobs, quietLogger())
	assert.Equal(t, []string{"本"}, tr.Keys())
}

func TestTrackerRecordKeepsCountOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	tr := LoadTracker(ctx, blobs, quietLogger())
	blobs.failPut = errors.New("read-only")
	require.Error(t, tr.Record(ctx, "個", true))
	assert.Equal(t, 1, tr.Get("個").Correct)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	tr := LoadTracker(ctx, newMemBlobs(), quietLogger())
	require.NoError(t, tr.Record(ctx, "個", true))
	require.NoError(t, tr.Record(ctx, "gone", false))

	require.NoError(t, tr.Reconcile(ctx, []string{"個", "本"}))
	assert.Equal(t, []string{"個", "本"}, tr.Keys())
	assert.Equal(t, 1, tr.Get("個").Correct)
	assert.Equal(t, model.CounterStats{}, tr.Get("本"))

	require.NoError(t, tr.Reset(ctx))
	assert.Equal(t, model.CounterStats{}, tr.Get("個"))
	assert.Len(t, tr.All(), 2)
}

func TestSelectWeakCounters(t *testing.T) {
	all := map[string]model.CounterStats{
		"個": {Correct: 9, Incorrect: 1},
		"本": {Correct: 1, Incorrect: 3},
		"枚": {Correct: 2, Incorrect: 2},
		"匹": {},
	}
	weak := SelectWeakCounters(all, 2)
	assert.Equal(t, map[string]struct{}{"本": {}, "枚": {}}, weak)

	assert.Len(t, SelectWeakCounters(all, 0), 3)
	assert.Empty(t, SelectWeakCounters(nil, 3))
}

func TestRenderCounterTable(t *testing.T) {
	rows := []CounterRow{
		{Counter: model.Counter{Key: "個", Category: "small"}, Stats: model.CounterStats{Correct: 3, Incorrect: 1}, Enabled: true},
		{Counter: model.Counter{Key: "本", Category: "long"}, Stats: model.CounterStats{}, Enabled: false},
		{Counter: model.Counter{Key: "枚", Category: "flat"}, Stats: model.CounterStats{Correct: 1, Incorrect: 1}, Enabled: true},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderCounterTable(&buf, rows, false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[2], "枚"), lines[2])
	assert.Contains(t, lines[2], "50%")
	assert.True(t, strings.HasPrefix(lines[3], "個"), lines[3])
	assert.Contains(t, lines[3], "75%")
	assert.True(t, strings.HasPrefix(lines[4], "本"), lines[4])
	assert.Contains(t, lines[4], "-")

	buf.Reset()
	require.NoError(t, RenderCounterTable(&buf, nil, false))
	assert.Equal(t, "No counters found.\n", buf.String())
}

func TestRenderChallengeSummary(t *testing.T) {
	end := time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local)
	records := []model.ChallengeRecord{
		{Score: 4, Rounds: 10, EndedAt: end},
		{Score: 10, Rounds: 10, EndedAt: end},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderChallengeSummary(&buf, records, 1))
	out := buf.String()
	assert.Contains(t, out, "Completed: 2")
	assert.Contains(t, out, "Last: 10/10 (2026-01-02 03:04)")
	assert.Contains(t, out, "Best: 10/10")
	assert.Contains(t, out, "Avg: 7.0")
	assert.Contains(t, out, "Trend: [=@]")

	buf.Reset()
	require.NoError(t, RenderChallengeSummary(&buf, nil, 3))
	assert.Equal(t, "No challenges completed yet.\n", buf.String())
}

func TestMovingAverageAndSparkline(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 5}, MovingAverage([]float64{2, 4, 6}, 2))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
	assert.Equal(t, " @", Sparkline([]float64{0, 10}, 0, 10))
	assert.Equal(t, "++", Sparkline([]float64{3, 3}, 5, 5))
	assert.Equal(t, "", Sparkline(nil, 0, 1))
}
