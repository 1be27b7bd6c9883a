package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *model.Run) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	run := &model.Run{
		Source:    "tracts.shp",
		Attribute: "rate",
		Rule:      model.RuleSpec{Kind: model.RuleKNearest, K: 6},
		Alpha:     0.05,
		Result: &model.RunResult{
			Global: model.GlobalResult{I: 0.2, ZScore: 1.8, PValue: 0.07, N: 1},
			Units: []model.UnitResult{
				{
					Index:  0,
					UnitID: "t1",
					Local:  model.LocalResult{Index: 0, Defined: true, I: 0.3, PValue: 0.5},
					Label:  model.LabelNotSignificant,
				},
			},
		},
	}
	require.NoError(t, st.SaveRun(context.Background(), run))

	ts := httptest.NewServer(New(st).Router(nil))
	t.Cleanup(ts.Close)
	return ts, run
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServer_ListRuns(t *testing.T) {
	ts, run := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, run.ID, body.Runs[0].ID)
	assert.Equal(t, "rate", body.Runs[0].Attribute)
}

func TestServer_ListRunsBadLimit(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, limit := range []string{"abc", "0", "-5"} {
		resp, err := http.Get(ts.URL + "/api/runs?limit=" + limit)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
}

func TestServer_GetRun(t *testing.T) {
	ts, run := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/runs/" + run.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, run.ID, got.ID)
	require.NotNil(t, got.Result)
	require.Len(t, got.Result.Units, 1)
	assert.Equal(t, "t1", got.Result.Units[0].UnitID)
}

func TestServer_GetRunNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/runs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_EmptyCatalog(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	ts := httptest.NewServer(New(st).Router(nil))
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Runs)
	assert.Empty(t, body.Runs)
}
