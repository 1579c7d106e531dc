package main

import (
	"fmt"

	"storefront-crm/internal/app"

	"github.com/spf13/cobra"
)

var backfillStore string

// backfillCmd groups data repair jobs
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Repair derived data",
}

var backfillCountersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Resync order and payment numbering counters",
	Long: `Raise each store's order and payment counters to at least the highest
number already issued. Without --store every live store is processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withServices(ctx, func(svc *app.Services) error {
			results, err := svc.Commerce.BackfillCounters(ctx, backfillStore)
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\torders=%d\tpayments=%d\n", r.StoreID, r.Orders, r.Payments)
			}
			return err
		})
	},
}

func init() {
	backfillCountersCmd.Flags().StringVar(&backfillStore, "store", "", "Only backfill this store")
	backfillCmd.AddCommand(backfillCountersCmd)
}
