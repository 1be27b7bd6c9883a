package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/spatial-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRun() *model.Run {
	return &model.Run{
		Source:    "counties.shp",
		Attribute: "rate",
		Rule:      model.RuleSpec{Kind: model.RuleDistanceBand, MaxDist: 50},
		Alpha:     0.05,
		Result: &model.RunResult{
			Global: model.GlobalResult{
				I:           0.42,
				Expectation: -0.5,
				Variance:    0.01,
				ZScore:      9.2,
				PValue:      0.0001,
				N:           2,
				Islands:     1,
			},
			Units: []model.UnitResult{
				{
					Index:  0,
					UnitID: "001",
					Local:  model.LocalResult{Index: 0, Defined: true, I: 0.9, ZScore: 2.1, PValue: 0.03},
					Label:  model.LabelHotspot,
				},
				{
					Index:  1,
					UnitID: "002",
					Local:  model.LocalResult{Index: 1, Defined: true, I: -0.1, ZScore: -0.4, PValue: 0.7},
					Label:  model.LabelNotSignificant,
				},
				{
					Index:  2,
					UnitID: "003",
					Local:  model.LocalResult{Index: 2, Defined: false},
					Label:  model.LabelUndefined,
				},
			},
		},
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := sampleRun()
	require.NoError(t, s.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.Source, got.Source)
	assert.Equal(t, run.Attribute, got.Attribute)
	assert.Equal(t, run.Rule, got.Rule)
	assert.Equal(t, run.Alpha, got.Alpha)
	assert.Equal(t, run.Result.Global, got.Result.Global)
	require.Len(t, got.Result.Units, 3)

	assert.Equal(t, run.Result.Units[0].Local, got.Result.Units[0].Local)
	assert.Equal(t, model.LabelHotspot, got.Result.Units[0].Label)

	// The island round-trips as undefined, never as a zero statistic.
	island := got.Result.Units[2]
	assert.False(t, island.Local.Defined)
	assert.Zero(t, island.Local.I)
	assert.Equal(t, model.LabelUndefined, island.Label)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_SaveWithoutResult(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveRun(context.Background(), &model.Run{Attribute: "rate"})
	require.Error(t, err)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := sampleRun()
		require.NoError(t, s.SaveRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	for _, r := range runs {
		assert.NotEmpty(t, r.ID)
		// Listing returns run summaries without per-unit rows.
		assert.Empty(t, r.Result.Units)
		assert.Equal(t, 0.42, r.Result.Global.I)
	}

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
