package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/spatial-cli/internal/db"
	"github.com/sells-group/spatial-cli/internal/export"
	"github.com/sells-group/spatial-cli/internal/pgexport"
	"github.com/sells-group/spatial-cli/internal/store"
)

var exportFlags struct {
	data     datasetFlags
	xlsxOut  string
	geoOut   string
	postgres bool
}

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export a stored run",
	Long:  "Writes a stored run to XLSX, GeoJSON, or a PostGIS schema. GeoJSON and PostGIS need --input to reattach unit geometries, which the run store does not keep.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFlags.xlsxOut == "" && exportFlags.geoOut == "" && !exportFlags.postgres {
			return eris.New("export: nothing to do; pass --xlsx, --geojson, or --postgres")
		}

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if exportFlags.xlsxOut != "" {
			if err := export.WriteXLSX(exportFlags.xlsxOut, run); err != nil {
				return err
			}
		}

		if exportFlags.geoOut == "" && !exportFlags.postgres {
			return nil
		}

		// Geometry-bearing targets reload the source dataset.
		ds, err := loadDataset(exportFlags.data)
		if err != nil {
			return err
		}
		if ds.Len() != len(run.Result.Units) {
			return eris.Errorf("export: dataset has %d units but run has %d; wrong --input?", ds.Len(), len(run.Result.Units))
		}

		if exportFlags.geoOut != "" {
			if err := export.WriteGeoJSON(exportFlags.geoOut, run, ds.Units); err != nil {
				return err
			}
		}

		if exportFlags.postgres {
			if err := cfg.Validate("publish"); err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg.Postgres.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			pub := pgexport.NewPublisher(pool, cfg.Postgres.Schema)
			if err := pub.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := pub.Publish(cmd.Context(), run, ds.Units); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.data.input, "input", "i", "", "path to the polygon shapefile the run was computed from")
	exportCmd.Flags().StringVar(&exportFlags.data.idField, "id-field", "", "attribute column used as unit ID")
	exportCmd.Flags().StringVar(&exportFlags.xlsxOut, "xlsx", "", "write results to an XLSX workbook")
	exportCmd.Flags().StringVar(&exportFlags.geoOut, "geojson", "", "write results to a GeoJSON file")
	exportCmd.Flags().BoolVar(&exportFlags.postgres, "postgres", false, "publish results to the configured PostGIS schema")
	rootCmd.AddCommand(exportCmd)
}
