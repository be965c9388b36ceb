package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/issue-scout/internal/match"
)

var recommendCommand = &cobra.Command{
	Use:   "recommend <login>",
	Short: "Rank stored items against a consumer's profile",
	Long:  "Scores every active stored item against the consumer's persisted profile and prints the matches above the relevance floor, best first, with per-match reasons.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommendCmd,
}

var (
	recommendConfigPath string
	recommendLimit      int
)

func init() {
	recommendCommand.Flags().StringVar(&recommendConfigPath, "config", "", "Path to config.json file")
	recommendCommand.Flags().IntVar(&recommendLimit, "limit", 10, "Maximum number of recommendations to print")

	rootCmd.AddCommand(recommendCommand)
}

func runRecommendCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	login := args[0]

	cfg, err := loadConfig(recommendConfigPath)
	if err != nil {
		return err
	}

	_, st, _, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	profile, err := st.GetProfile(ctx, login)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("no profile for %s, run `issue_scout profile %s` first", login, login)
	}

	items, err := st.ListActiveItems(ctx)
	if err != nil {
		return err
	}

	results := match.Rank(profile, items, time.Now())
	if len(results) == 0 {
		fmt.Println("No matching items yet. Try again after the next aggregation cycle.")
		return nil
	}
	if recommendLimit > 0 && len(results) > recommendLimit {
		results = results[:recommendLimit]
	}

	for i, r := range results {
		fmt.Printf("#%d  [%.2f] %s: %s\n", i+1, r.Score, r.Item.Repository.FullName, r.Item.Title)
		fmt.Printf("     difficulty=%s effort=%dh skills=%s\n",
			r.Item.Difficulty, r.Item.EstimatedEffort, strings.Join(r.Item.RequiredSkills, ", "))
		for _, reason := range r.Reasons {
			fmt.Printf("     • %s\n", reason)
		}
	}
	return nil
}
