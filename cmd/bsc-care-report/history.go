package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <user_id>",
	Short: "List recordings newest first with their status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := results.GetResults(cmd.Context(), service.GetResultsRequest{UserID: args[0]})
		if err != nil {
			return err
		}
		renderHistory(cmd.OutOrStdout(), resp.History, historyLimit)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum rows to print (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func renderHistory(w io.Writer, history []service.HistoryEntry, limit int) {
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(history) == 0 {
		fmt.Fprintf(w, "%s\n", gray("No recordings yet"))
		return
	}

	rows := history
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	fmt.Fprintf(w, "%-19s  %4s  %4s  %-16s  %8s  %s\n", "RECORDED", "HR", "RR", "TEMPERATURE", "SYMPTOMS", "STATUS")
	for _, e := range rows {
		temp := "-"
		if e.Survey != nil {
			temp = fmt.Sprintf("%s°%s", e.Survey.BodyTemperature.String(), e.Survey.TemperatureUnit())
		}
		fmt.Fprintf(w, "%-19s  %4d  %4d  %-16s  %8d  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.HeartRate,
			e.RespiratoryRate,
			temp,
			e.SymptomCount,
			statusPrinter(e.Status.Status)(e.Status.Status),
		)
	}
	if len(rows) < len(history) {
		fmt.Fprintf(w, "%s\n", gray(fmt.Sprintf("... %d older recordings", len(history)-len(rows))))
	}
}
