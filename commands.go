package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"iap-backoffice/models"
	"iap-backoffice/utils"
)

func init() {
	var tablesStage string
	var tablesCmd = &cobra.Command{
		Use:   "tables [name]",
		Short: "Print the status lookup tables as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{} = models.AllTables(tablesStage)
			if len(args) == 1 {
				table, ok := models.TableByName(args[0])
				if !ok {
					return fmt.Errorf("unknown table %q", args[0])
				}
				out = table
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	tablesCmd.Flags().StringVar(&tablesStage, "stage", os.Getenv("STAGE"), "Stage reported in the STAGE field")
	rootCmd.AddCommand(tablesCmd)

	var stageURLStage string
	var stageURLCmd = &cobra.Command{
		Use:   "stage-url <url>",
		Short: "Print url with the stage prefix applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stageURLStage == "" {
				return fmt.Errorf("--stage or STAGE is required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.StageURL(stageURLStage, args[0]))
			return nil
		},
	}
	stageURLCmd.Flags().StringVar(&stageURLStage, "stage", os.Getenv("STAGE"), "Deployment stage")
	rootCmd.AddCommand(stageURLCmd)
}
