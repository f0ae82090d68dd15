package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gulf-property-analyzer/retrieval"
	"gulf-property-analyzer/utils"
)

var (
	queryCity      string
	queryMaxPrice  int64
	queryBudgetMin int64
	queryBudgetMax int64
	queryTopK      int
	queryFromStore bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search analyzed opportunities by keyword and filters",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := utils.NewLogger()

		ranked, _, err := loadOpportunities(ctx, cfg, queryFromStore, logger)
		if err != nil {
			return err
		}

		ix := retrieval.NewIndex(logger)
		ix.IngestOpportunities(ranked)

		var filters retrieval.Filters
		filters.City = queryCity
		if cmd.Flags().Changed("max-price") {
			filters.MaxPrice = &queryMaxPrice
		}
		if cmd.Flags().Changed("budget-min") || cmd.Flags().Changed("budget-max") {
			filters.BudgetRange = &retrieval.BudgetRange{Min: queryBudgetMin, Max: queryBudgetMax}
		}

		topK := queryTopK
		if topK <= 0 {
			topK = cfg.Retrieval.TopK
		}

		matches, err := ix.Query(strings.Join(args, " "), filters, topK)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintln(out, "No matching opportunities.")
			return nil
		}
		for i, m := range matches {
			fmt.Fprintf(out, "%d. [%s] relevance %d\n", i+1, m.ID, m.RelevanceScore)
			for _, line := range strings.Split(m.Content, "\n") {
				fmt.Fprintf(out, "   %s\n", line)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryCity, "city", "", "boost matches in this city")
	queryCmd.Flags().Int64Var(&queryMaxPrice, "max-price", 0, "exclude opportunities above this price")
	queryCmd.Flags().Int64Var(&queryBudgetMin, "budget-min", 0, "budget range lower bound")
	queryCmd.Flags().Int64Var(&queryBudgetMax, "budget-max", 0, "budget range upper bound")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryFromStore, "from-store", false, "read opportunities from the database instead of the results file")
	rootCmd.AddCommand(queryCmd)
}
