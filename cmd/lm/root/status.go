package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create your profile and finish orientation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := svc.EnsureIdentity(ctx)
			if err != nil {
				return err
			}
			if err := svc.CompleteOrientation(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconSparkle+" Ready"), ui.Muted.Render("profile #"+shortID(id.ID)))
			fmt.Fprintf(cmd.OutOrStdout(), "Next: %s\n", ui.Key.Render(`lm habit add "Run"`))
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, consistency and collection counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := svc.GetStatusSnapshot(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			if snap.Identity == nil {
				fmt.Fprintln(out, ui.Muted.Render("No profile yet. Log an effort or run `lm init`."))
			} else {
				id := snap.Identity
				cur := engine.EffortRequiredForLevel(id.Level)
				fmt.Fprintln(out, ui.LabelValue("Level", id.Level))
				fmt.Fprintf(out, "%s %s\n",
					ui.LabelValue("Effort", fmt.Sprintf("%d (next level at %d)", id.TotalEffortUnits, snap.NextLevelAt)),
					ui.ProgressBar(id.TotalEffortUnits-cur, snap.NextLevelAt-cur, 20))
				if id.EquippedCardID != nil {
					fmt.Fprintln(out, ui.LabelValue("Card", shortID(*id.EquippedCardID)))
				}
			}
			fmt.Fprintln(out, ui.LabelValue("Consistency", fmt.Sprintf("%d/7 days → %s %s", snap.ConsistencyScore,
				ui.TierText(string(engine.TierFromConsistency(snap.ConsistencyScore))),
				ui.RarityText(string(engine.RarityFromConsistency(snap.ConsistencyScore))))))
			fmt.Fprintln(out, ui.LabelValue("Inactive", fmt.Sprintf("%d days", snap.InactivityDays)))
			fmt.Fprintln(out, ui.LabelValue("Mercy", mercyText(snap.Mercy)))
			fmt.Fprintln(out, "")

			c := snap.Counts
			fmt.Fprintln(out, ui.H2.Render("📊 Collection"))
			fmt.Fprintf(out, "- habits %d, efforts %d\n", c.Habits, c.Efforts)
			fmt.Fprintf(out, "- chests %d, rewards %d (%d locked)\n", c.Chests, c.Rewards, c.LockedRewards)
			fmt.Fprintf(out, "- items %d, cards %d\n", c.Items, c.Cards)
			fmt.Fprintf(out, "- arcs started %d, encounters %d, mercy used %d\n", c.Arcs, c.Encounters, c.MercyEvents)
			return nil
		},
	}
}

func newMercyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mercy",
		Short: "Check whether the comeback bonus is available",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.CanUseMercy(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.H2.Render(ui.IconHeart+" Mercy:"), mercyText(st))
			if st.Eligible {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Your next logged effort gets a rarity boost."))
			}
			return nil
		},
	}
}

func mercyText(st engine.MercyStatus) string {
	switch st.Reason {
	case engine.MercyEligible:
		return ui.Good.Render("ready")
	case engine.MercyCooldown:
		return ui.Warn.Render(fmt.Sprintf("cooldown, %d days left", st.CooldownDaysRemaining))
	case engine.MercyInsufficientEffort:
		return ui.Muted.Render(fmt.Sprintf("needs %d total effort", engine.MercyMinEffort))
	default:
		return ui.Muted.Render("not needed")
	}
}
