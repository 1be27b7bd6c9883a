package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/spatial-cli/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteExample("config.yaml"); err != nil {
			return err
		}
		cmd.Println("wrote config.yaml")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
