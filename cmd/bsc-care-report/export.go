package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpapi "github.com/Mohanmohan007/BSC-CARE/internal/http"
	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <user_id>",
	Short: "Write the recording history to an .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := results.GetResults(cmd.Context(), service.GetResultsRequest{UserID: args[0]})
		if err != nil {
			return err
		}

		data, err := httpapi.GenerateRecordingsExport(resp.History)
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = fmt.Sprintf("bsc-care-%s.xlsx", args[0])
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d recordings to %s\n", len(resp.History), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default bsc-care-<user_id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
