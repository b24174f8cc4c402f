package main

import (
	"fmt"

	"github.com/spf13/cobra"

	postgresRepo "Regatta/internal/db/postgres"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex-counts",
	Short: "Recompute denormalized vote, comment, member and post counters",
	Long: `Recomputes every denormalized counter from the underlying rows in one
transaction and reports how many rows were corrected.`,
	RunE: runReindexCounts,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindexCounts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := postgresRepo.ReindexCounts(cmd.Context(), db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "post vote counts corrected:        %d\n", report.PostVotes)
	fmt.Fprintf(out, "post comment counts corrected:     %d\n", report.PostComments)
	fmt.Fprintf(out, "community member counts corrected: %d\n", report.CommunityMembers)
	fmt.Fprintf(out, "community post counts corrected:   %d\n", report.CommunityPosts)
	return nil
}
