package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/spatial-cli/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		runs, err := st.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "%-36s %-20s %-12s %-28s %10s %10s\n",
			"id", "created", "attribute", "rule", "moran_i", "p")
		for _, run := range runs {
			p.Fprintf(cmd.OutOrStdout(), "%-36s %-20s %-12s %-28s %10.6f %10.6f\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"),
				run.Attribute, describeRule(run.Rule),
				run.Result.Global.I, run.Result.Global.PValue)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored run with its full result table as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "maximum runs to list")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
