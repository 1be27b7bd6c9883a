package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/pipeline"
	"github.com/sells-group/spatial-cli/internal/store"
)

var sweepFlags struct {
	data       datasetFlags
	attrs      []string
	thresholds []float64
	kValues    []int
	alpha      float64
	save       bool
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare autocorrelation across neighbor specifications",
	Long:  "Runs the pipeline once per (attribute, rule) combination built from --thresholds and --k-values; a specification that fails is flagged and the sweep continues.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(sweepFlags.data)
		if err != nil {
			return err
		}

		attrs := sweepFlags.attrs
		if len(attrs) == 0 {
			attr, err := resolveAttribute("")
			if err != nil {
				return err
			}
			attrs = []string{attr}
		}

		alpha := resolveAlpha(sweepFlags.alpha)
		specs := buildSweepSpecs(attrs, sweepFlags.thresholds, sweepFlags.kValues, alpha)
		if len(specs) == 0 {
			return errNoSpecs
		}

		outcomes := pipeline.Sweep(ds, specs)
		printSweepTable(cmd, outcomes)

		if sweepFlags.save {
			st, err := store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			for _, o := range outcomes {
				if o.Failed() {
					continue
				}
				run := &model.Run{
					ID:        uuid.New().String(),
					Source:    ds.Source,
					Attribute: o.Spec.Attribute,
					Rule:      o.Spec.Rule,
					Alpha:     o.Spec.Alpha,
					Result:    o.Result,
					CreatedAt: time.Now().UTC(),
				}
				if err := st.SaveRun(cmd.Context(), run); err != nil {
					return err
				}
			}
		}

		return nil
	},
}

// buildSweepSpecs crosses the attribute list with one spec per threshold and
// one per k value.
func buildSweepSpecs(attrs []string, thresholds []float64, kValues []int, alpha float64) []pipeline.Spec {
	var specs []pipeline.Spec
	for _, attr := range attrs {
		for _, maxDist := range thresholds {
			specs = append(specs, pipeline.Spec{
				Attribute: attr,
				Rule:      model.RuleSpec{Kind: model.RuleDistanceBand, MaxDist: maxDist},
				Alpha:     alpha,
			})
		}
		for _, k := range kValues {
			specs = append(specs, pipeline.Spec{
				Attribute: attr,
				Rule:      model.RuleSpec{Kind: model.RuleKNearest, K: k},
				Alpha:     alpha,
			})
		}
	}
	return specs
}

// printSweepTable writes one line per specification.
func printSweepTable(cmd *cobra.Command, outcomes []pipeline.SweepOutcome) {
	p := message.NewPrinter(language.English)
	p.Fprintf(cmd.OutOrStdout(), "%-12s %-28s %10s %10s %10s  %s\n",
		"attribute", "rule", "moran_i", "z", "p", "status")
	for _, o := range outcomes {
		rule := describeRule(o.Spec.Rule)
		if o.Failed() {
			p.Fprintf(cmd.OutOrStdout(), "%-12s %-28s %10s %10s %10s  %s\n",
				o.Spec.Attribute, rule, "-", "-", "-", o.Reason())
			continue
		}
		g := o.Result.Global
		p.Fprintf(cmd.OutOrStdout(), "%-12s %-28s %10.6f %10.4f %10.6f  ok\n",
			o.Spec.Attribute, rule, g.I, g.ZScore, g.PValue)
	}
}

// describeRule renders a rule spec for the sweep table.
func describeRule(r model.RuleSpec) string {
	p := message.NewPrinter(language.English)
	if r.Kind == model.RuleKNearest {
		return p.Sprintf("k_nearest k=%d", r.K)
	}
	return p.Sprintf("distance_band [%g, %g]", r.MinDist, r.MaxDist)
}

func init() {
	sweepCmd.Flags().StringVarP(&sweepFlags.data.input, "input", "i", "", "path to the polygon shapefile")
	sweepCmd.Flags().StringVar(&sweepFlags.data.idField, "id-field", "", "attribute column used as unit ID")
	sweepCmd.Flags().StringSliceVarP(&sweepFlags.attrs, "attribute", "a", nil, "attributes to analyze (repeatable)")
	sweepCmd.Flags().Float64SliceVar(&sweepFlags.thresholds, "thresholds", nil, "distance-band maximum distances to compare")
	sweepCmd.Flags().IntSliceVar(&sweepFlags.kValues, "k-values", nil, "k-nearest neighbor counts to compare")
	sweepCmd.Flags().Float64Var(&sweepFlags.alpha, "alpha", 0, "significance threshold for labeling")
	sweepCmd.Flags().BoolVar(&sweepFlags.save, "save", false, "persist successful runs to the store")
	rootCmd.AddCommand(sweepCmd)
}
