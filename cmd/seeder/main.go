// Command seeder fills the marketplace database with a category tree, sample
// users and sample listings priced by the estimator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:          "seeder",
	Short:        "Seed the marketplace database with sample data",
	SilenceUsage: true,
}

func seedCommand(use, short string, steps ...step) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSteps(cmd, steps...)
		},
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview changes without writing to database")

	rootCmd.AddCommand(
		seedCommand("categories", "Seed the category tree", seedCategoriesStep),
		seedCommand("users", "Seed sample users", seedUsersStep),
		seedCommand("products", "Seed sample products (needs categories and users)", seedProductsStep),
		seedCommand("all", "Seed categories, users and products", seedCategoriesStep, seedUsersStep, seedProductsStep),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
