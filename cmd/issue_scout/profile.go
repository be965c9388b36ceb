package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/issue-scout/internal/profile"
	"github.com/jonathan/issue-scout/internal/types"
)

var profileCommand = &cobra.Command{
	Use:   "profile <login>",
	Short: "Extract and persist a consumer's skill profile",
	Long:  "Rebuilds the consumer's skill and technology-usage profile from their repositories and recent activity, then persists it. Manual skills can be added or removed with --add-skill/--remove-skill.",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileCmd,
}

var (
	profileConfigPath  string
	profileAddSkill    string
	profileAddTier     string
	profileRemoveSkill string
)

func init() {
	profileCommand.Flags().StringVar(&profileConfigPath, "config", "", "Path to config.json file")
	profileCommand.Flags().StringVar(&profileAddSkill, "add-skill", "", "Manually add a skill instead of syncing")
	profileCommand.Flags().StringVar(&profileAddTier, "tier", "intermediate", "Tier for --add-skill (novice|intermediate|advanced|expert)")
	profileCommand.Flags().StringVar(&profileRemoveSkill, "remove-skill", "", "Manually remove a skill instead of syncing")

	rootCmd.AddCommand(profileCommand)
}

func runProfileCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	login := args[0]

	cfg, err := loadConfig(profileConfigPath)
	if err != nil {
		return err
	}

	log, st, src, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	service := profile.NewService(src, st, log)

	var result *types.ConsumerProfile
	switch {
	case profileAddSkill != "":
		tier := types.SkillTier(profileAddTier)
		if tier.Rank() < 0 {
			return fmt.Errorf("unknown tier %q", profileAddTier)
		}
		result, err = service.AddManualSkill(ctx, login, profileAddSkill, tier)
	case profileRemoveSkill != "":
		result, err = service.RemoveManualSkill(ctx, login, profileRemoveSkill)
	default:
		result, err = service.Sync(ctx, login)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Profile for %s (%d skills):\n", result.Login, len(result.Skills))
	for _, s := range result.Skills {
		fmt.Printf("  %-20s %-12s confidence=%.2f (%s)\n", s.Name, s.Tier, s.Confidence, s.Origin)
	}
	if len(result.TechnologyUsage) > 0 {
		fmt.Println("Technology usage:")
		for _, u := range result.TechnologyUsage {
			fmt.Printf("  %-20s %5.1f%%\n", u.Name, u.Percentage)
		}
	}
	return nil
}
