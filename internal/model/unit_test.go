package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	return &Dataset{
		Source: "test.shp",
		Units: []SpatialUnit{
			{Index: 0, ID: "a", Attrs: map[string]float64{"pop": 100, "income": 52000}},
			{Index: 1, ID: "b", Attrs: map[string]float64{"pop": 250, "income": 48000}},
			{Index: 2, ID: "c", Attrs: map[string]float64{"pop": 75, "income": 61000}},
		},
	}
}

func TestDataset_Column(t *testing.T) {
	ds := testDataset()

	pop, err := ds.Column("pop")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 250, 75}, pop)

	_, err = ds.Column("density")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownAttribute))
}

func TestDataset_ColumnMissingOnOneUnit(t *testing.T) {
	ds := testDataset()
	delete(ds.Units[1].Attrs, "income")

	_, err := ds.Column("income")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownAttribute))
}

func TestDataset_AttributeNames(t *testing.T) {
	ds := testDataset()
	assert.Equal(t, []string{"income", "pop"}, ds.AttributeNames())

	empty := &Dataset{}
	assert.Nil(t, empty.AttributeNames())
}

func TestDataset_WithDerived(t *testing.T) {
	ds := testDataset()

	derived, err := ds.WithDerived("log_pop", []float64{4.6, 5.5, 4.3})
	require.NoError(t, err)

	assert.Equal(t, []string{"income", "log_pop", "pop"}, derived.AttributeNames())
	col, err := derived.Column("log_pop")
	require.NoError(t, err)
	assert.Equal(t, []float64{4.6, 5.5, 4.3}, col)

	// The receiver keeps its original attribute set.
	_, err = ds.Column("log_pop")
	assert.True(t, eris.Is(err, ErrUnknownAttribute))

	_, err = ds.WithDerived("bad", []float64{1})
	require.Error(t, err)
}
