// Package pgexport publishes run results to a PostGIS schema so mapping
// clients can join statistics onto geometries server-side.
package pgexport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/db"
	"github.com/sells-group/spatial-cli/internal/model"
)

// Publisher writes runs and unit results into a PostGIS schema.
type Publisher struct {
	pool   db.Pool
	schema string
}

// NewPublisher creates a Publisher targeting the given schema.
func NewPublisher(pool db.Pool, schema string) *Publisher {
	if schema == "" {
		schema = "analysis"
	}
	return &Publisher{pool: pool, schema: schema}
}

// Migrate creates the target schema and tables if they do not exist.
func (p *Publisher) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pgx.Identifier{p.schema}.Sanitize()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.runs (
			id         TEXT PRIMARY KEY,
			source     TEXT NOT NULL,
			attribute  TEXT NOT NULL,
			rule       JSONB NOT NULL,
			alpha      DOUBLE PRECISION NOT NULL,
			moran_i    DOUBLE PRECISION NOT NULL,
			z_score    DOUBLE PRECISION NOT NULL,
			p_value    DOUBLE PRECISION NOT NULL,
			n          INTEGER NOT NULL,
			islands    INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, pgx.Identifier{p.schema}.Sanitize()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.unit_results (
			run_id     TEXT NOT NULL,
			unit_index INTEGER NOT NULL,
			unit_id    TEXT NOT NULL,
			local_i    DOUBLE PRECISION,
			z_score    DOUBLE PRECISION,
			p_value    DOUBLE PRECISION,
			label      TEXT NOT NULL,
			geom       GEOMETRY(MULTIPOLYGON),
			PRIMARY KEY (run_id, unit_index)
		)`, pgx.Identifier{p.schema}.Sanitize()),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "pgexport: migrate")
		}
	}
	return nil
}

// Publish inserts one run and bulk-copies its unit rows. Unit geometries come
// from the dataset the run was computed over; undefined statistics publish as
// NULLs.
func (p *Publisher) Publish(ctx context.Context, run *model.Run, units []model.SpatialUnit) error {
	if run.Result == nil {
		return eris.New("pgexport: run has no result")
	}
	if len(units) != len(run.Result.Units) {
		return eris.Errorf("pgexport: %d units for %d result rows", len(units), len(run.Result.Units))
	}

	ruleJSON, err := json.Marshal(run.Rule)
	if err != nil {
		return eris.Wrap(err, "pgexport: marshal rule")
	}

	g := run.Result.Global
	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s.runs (id, source, attribute, rule, alpha, moran_i, z_score, p_value, n, islands, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, pgx.Identifier{p.schema}.Sanitize()),
		run.ID, run.Source, run.Attribute, ruleJSON, run.Alpha,
		g.I, g.ZScore, g.PValue, g.N, g.Islands, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "pgexport: insert run")
	}

	rows := make([][]any, 0, len(run.Result.Units))
	for i, u := range run.Result.Units {
		var localI, zScore, pValue any
		if u.Local.Defined {
			localI, zScore, pValue = u.Local.I, u.Local.ZScore, u.Local.PValue
		}
		var geomBytes any
		if units[i].Geometry != nil {
			data, encErr := ewkb.Marshal(units[i].Geometry, ewkb.NDR)
			if encErr != nil {
				return eris.Wrapf(encErr, "pgexport: encode unit %d geometry", i)
			}
			geomBytes = data
		}
		rows = append(rows, []any{run.ID, u.Index, u.UnitID, localI, zScore, pValue, string(u.Label), geomBytes})
	}

	n, err := db.CopyFromSchema(ctx, p.pool, p.schema, "unit_results",
		[]string{"run_id", "unit_index", "unit_id", "local_i", "z_score", "p_value", "label", "geom"}, rows)
	if err != nil {
		return err
	}

	zap.L().Info("pgexport: run published",
		zap.String("run_id", run.ID),
		zap.String("schema", p.schema),
		zap.Int64("unit_rows", n),
	)
	return nil
}
