package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/spatial-cli/internal/export"
	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/pipeline"
	"github.com/sells-group/spatial-cli/internal/store"
)

var analyzeFlags struct {
	data    datasetFlags
	rule    ruleFlags
	attr    string
	alpha   float64
	logAttr bool
	xlsxOut string
	geoOut  string
	noStore bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one autocorrelation analysis and report the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(analyzeFlags.data)
		if err != nil {
			return err
		}

		attr, err := resolveAttribute(analyzeFlags.attr)
		if err != nil {
			return err
		}
		if analyzeFlags.logAttr {
			ds, attr, err = pipeline.DeriveLog(ds, attr)
			if err != nil {
				return err
			}
		}

		spec := pipeline.Spec{
			Attribute: attr,
			Rule:      resolveRule(analyzeFlags.rule),
			Alpha:     resolveAlpha(analyzeFlags.alpha),
		}

		result, err := pipeline.Run(ds, spec)
		if err != nil {
			return err
		}

		run := &model.Run{
			ID:        uuid.New().String(),
			Source:    ds.Source,
			Attribute: spec.Attribute,
			Rule:      spec.Rule,
			Alpha:     spec.Alpha,
			Result:    result,
			CreatedAt: time.Now().UTC(),
		}

		printRunSummary(cmd, run)

		if !analyzeFlags.noStore {
			st, err := store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := st.SaveRun(cmd.Context(), run); err != nil {
				return err
			}
		}

		if analyzeFlags.xlsxOut != "" {
			if err := export.WriteXLSX(analyzeFlags.xlsxOut, run); err != nil {
				return err
			}
		}
		if analyzeFlags.geoOut != "" {
			if err := export.WriteGeoJSON(analyzeFlags.geoOut, run, ds.Units); err != nil {
				return err
			}
		}

		return nil
	},
}

// printRunSummary writes the global result and label counts to the command's
// output stream.
func printRunSummary(cmd *cobra.Command, run *model.Run) {
	p := message.NewPrinter(language.English)
	g := run.Result.Global

	p.Fprintf(cmd.OutOrStdout(), "run %s\n", run.ID)
	p.Fprintf(cmd.OutOrStdout(), "attribute %s over %d units (%d islands)\n", run.Attribute, g.N+g.Islands, g.Islands)
	p.Fprintf(cmd.OutOrStdout(), "Moran's I %.6f (E %.6f, var %.6g)\n", g.I, g.Expectation, g.Variance)
	p.Fprintf(cmd.OutOrStdout(), "z %.4f  p %.6f\n", g.ZScore, g.PValue)

	counts := map[model.Label]int{}
	for _, u := range run.Result.Units {
		counts[u.Label]++
	}
	p.Fprintf(cmd.OutOrStdout(), "hotspots %d  coldspots %d  not significant %d  undefined %d\n",
		counts[model.LabelHotspot], counts[model.LabelColdspot],
		counts[model.LabelNotSignificant], counts[model.LabelUndefined])
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFlags.data.input, "input", "i", "", "path to the polygon shapefile")
	analyzeCmd.Flags().StringVar(&analyzeFlags.data.idField, "id-field", "", "attribute column used as unit ID")
	analyzeCmd.Flags().StringVar(&analyzeFlags.data.nameField, "name-field", "", "attribute column used as unit name")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.attr, "attribute", "a", "", "attribute to analyze")
	analyzeCmd.Flags().Float64Var(&analyzeFlags.alpha, "alpha", 0, "significance threshold for labeling")
	analyzeCmd.Flags().StringVar(&analyzeFlags.rule.kind, "rule", "", "neighbor rule: distance_band or k_nearest")
	analyzeCmd.Flags().IntVar(&analyzeFlags.rule.k, "k", 0, "neighbor count for k_nearest")
	analyzeCmd.Flags().Float64Var(&analyzeFlags.rule.minDist, "min-dist", 0, "minimum distance for distance_band")
	analyzeCmd.Flags().Float64Var(&analyzeFlags.rule.maxDist, "max-dist", 0, "maximum distance for distance_band")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.logAttr, "log-attr", false, "analyze the natural log of the attribute")
	analyzeCmd.Flags().StringVar(&analyzeFlags.xlsxOut, "xlsx", "", "write results to an XLSX workbook")
	analyzeCmd.Flags().StringVar(&analyzeFlags.geoOut, "geojson", "", "write results to a GeoJSON file")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.noStore, "no-store", false, "skip persisting the run")
	rootCmd.AddCommand(analyzeCmd)
}
