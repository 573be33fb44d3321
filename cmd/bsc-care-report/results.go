package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

var resultsCmd = &cobra.Command{
	Use:   "results <user_id>",
	Short: "Show the latest status, deltas, averages and distribution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := results.GetResults(cmd.Context(), service.GetResultsRequest{UserID: args[0]})
		if err != nil {
			return err
		}
		renderResults(cmd.OutOrStdout(), resp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

// statusPrinter colour for a status
func statusPrinter(s models.Status) func(a ...interface{}) string {
	switch s {
	case models.StatusGood:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	case models.StatusAttention:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	default:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	}
}

func renderResults(w io.Writer, resp *service.GetResultsResponse) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s\n\n", cyan(fmt.Sprintf("=== Results for %s ===", resp.UserID)))

	if resp.Latest == nil {
		fmt.Fprintf(w, "  %s\n", gray("No recordings yet"))
		return
	}

	status := statusPrinter(resp.Status.Status)
	fmt.Fprintf(w, "  Status:           %s (score %d)\n", status(resp.Status.Status), resp.Score)
	fmt.Fprintf(w, "  Recorded:         %s\n", resp.Latest.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Heart rate:       %d bpm  %s\n", resp.Latest.HeartRate, analytics.DeltaLabel(resp.HeartRateDelta))
	fmt.Fprintf(w, "  Respiratory rate: %d /min  %s\n", resp.Latest.RespiratoryRate, analytics.DeltaLabel(resp.RespiratoryRateDelta))
	if resp.Latest.Survey != nil && resp.Temperature != nil {
		fmt.Fprintf(w, "  Temperature:      %s°%s (%s)\n",
			resp.Latest.Survey.BodyTemperature.String(), resp.Latest.Survey.TemperatureUnit(), resp.Temperature.Label)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Averages over %d recordings: HR %.1f bpm, RR %.1f /min\n\n",
		resp.TotalRecordings, resp.AverageHeartRate, resp.AverageRespiratoryRate)

	fmt.Fprintf(w, "  %s\n", cyan("Distribution"))
	for _, b := range resp.Distribution {
		fmt.Fprintf(w, "    %-10s %3d  %3d%%\n", statusPrinter(b.Name)(b.Name), b.Value, b.Percentage)
	}

	fmt.Fprintf(w, "\n  %s\n", cyan("Heart rate histogram (recent)"))
	for _, bin := range resp.HeartRateHistogram {
		fmt.Fprintf(w, "    %-9s %3d\n", bin.Bucket, bin.Count)
	}
	fmt.Fprintln(w)
}
