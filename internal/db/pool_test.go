package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromSchema_EmptyRows(t *testing.T) {
	n, err := CopyFromSchema(context.TODO(), nil, "analysis", "unit_results", []string{"a"}, [][]any{})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFromSchema_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"analysis", "unit_results"}, []string{"run_id", "unit_index"}).WillReturnResult(3)

	rows := [][]any{{"r1", 0}, {"r1", 1}, {"r1", 2}}
	n, err := CopyFromSchema(context.Background(), mock, "analysis", "unit_results", []string{"run_id", "unit_index"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"analysis", "unit_results"}, []string{"run_id"}).WillReturnError(fmt.Errorf("permission denied"))

	rows := [][]any{{"r1"}}
	_, err = CopyFromSchema(context.Background(), mock, "analysis", "unit_results", []string{"run_id"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO analysis.unit_results")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_EmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	require.Error(t, err)
}
