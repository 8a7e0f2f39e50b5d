package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"finsight/internal/analytics"
	"finsight/internal/backend"
	"finsight/internal/log"
	"finsight/internal/narrative"
	"finsight/internal/services"
	"finsight/internal/sheets/memory"
)

// newLocalInsight builds an insight service over the snapshot file named by
// --file. Missing files surface as an empty snapshot, matching the memory
// backend.
func newLocalInsight() (*services.InsightService, error) {
	path := viper.GetString("file")
	if path == "" {
		return nil, fmt.Errorf("either --api or --file is required")
	}
	store := memory.NewFromFile(path)
	logger := log.New(log.Config{Level: log.ParseLevel("warn"), Component: log.ComponentApp})
	return services.NewInsightService(backend.Snapshotter(store), viper.GetInt("window"), logger), nil
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a free-form spending question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := args[0]

		if api := viper.GetString("api"); api != "" {
			text, err := apiAsk(api, question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		insight, err := newLocalInsight()
		if err != nil {
			return err
		}
		answer, err := insight.Ask(context.Background(), question)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer.Narrative)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the spending summary for one month",
	RunE: func(cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetInt("month")
		year, _ := cmd.Flags().GetInt("year")

		if api := viper.GetString("api"); api != "" {
			text, err := apiNarrative(api, "/api/summary", url.Values{
				"month": {strconv.Itoa(month)},
				"year":  {strconv.Itoa(year)},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		insight, err := newLocalInsight()
		if err != nil {
			return err
		}
		summary, err := insight.MonthSummary(context.Background(), month, year)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), narrative.FormatMonthSummary(summary))
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare spending between two months",
	RunE: func(cmd *cobra.Command, args []string) error {
		month1, _ := cmd.Flags().GetInt("month1")
		year1, _ := cmd.Flags().GetInt("year1")
		month2, _ := cmd.Flags().GetInt("month2")
		year2, _ := cmd.Flags().GetInt("year2")

		if api := viper.GetString("api"); api != "" {
			text, err := apiNarrative(api, "/api/compare", url.Values{
				"month1": {strconv.Itoa(month1)},
				"year1":  {strconv.Itoa(year1)},
				"month2": {strconv.Itoa(month2)},
				"year2":  {strconv.Itoa(year2)},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		insight, err := newLocalInsight()
		if err != nil {
			return err
		}
		comparison, err := insight.Compare(context.Background(), month1, year1, month2, year2)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), narrative.FormatComparison(comparison))
		return nil
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Print the rolling spending trend and forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		window := viper.GetInt("window")

		if api := viper.GetString("api"); api != "" {
			params := url.Values{}
			if window > 0 {
				params.Set("window", strconv.Itoa(window))
			}
			text, err := apiNarrative(api, "/api/trends", params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		insight, err := newLocalInsight()
		if err != nil {
			return err
		}
		if window < 1 {
			window = analytics.DefaultTrendWindow
		}
		report, err := insight.Trend(context.Background(), window)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), narrative.FormatTrend(report))
		return nil
	},
}

func init() {
	summaryCmd.Flags().Int("month", 0, "month 1-12")
	summaryCmd.Flags().Int("year", 0, "4-digit year")
	_ = summaryCmd.MarkFlagRequired("month")
	_ = summaryCmd.MarkFlagRequired("year")

	compareCmd.Flags().Int("month1", 0, "first month 1-12")
	compareCmd.Flags().Int("year1", 0, "first 4-digit year")
	compareCmd.Flags().Int("month2", 0, "second month 1-12")
	compareCmd.Flags().Int("year2", 0, "second 4-digit year")
	_ = compareCmd.MarkFlagRequired("month1")
	_ = compareCmd.MarkFlagRequired("year1")
	_ = compareCmd.MarkFlagRequired("month2")
	_ = compareCmd.MarkFlagRequired("year2")
}
