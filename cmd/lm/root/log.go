package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newLogCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "log <habit>",
		Short: "Log effort on a habit and open a chest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := resolveHabit(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.LogEffort(ctx, engine.LogEffortInput{HabitID: h.ID, Note: note})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconEffort+" Logged"), h.Name, ui.Muted.Render(fmt.Sprintf("(+%d effort)", res.EffortValue)))
			level := fmt.Sprintf("%d", res.LevelAfter)
			if res.LevelAfter > res.LevelBefore {
				level = fmt.Sprintf("%d → %d %s", res.LevelBefore, res.LevelAfter, ui.BadgeLevelUp)
			}
			fmt.Fprintln(out, ui.LabelValue("Level", level))
			fmt.Fprintln(out, ui.LabelValue("Consistency", fmt.Sprintf("%d/7 days", res.ConsistencyScore)))

			chest := fmt.Sprintf("%s %s %s", ui.TierText(string(res.ChestTier)), ui.RarityText(string(res.Rarity)), ui.Muted.Render("#"+shortID(res.ChestID)))
			if res.MercyUsed {
				chest += " " + ui.BadgeMercy
			}
			fmt.Fprintf(out, "%s %s\n", ui.H2.Render(ui.IconChest+" Chest:"), chest)
			for _, r := range res.Rewards {
				fmt.Fprintf(out, "  %s %s\n", ui.RewardIcon(r.Type, r.Locked), ui.Muted.Render(r.Type))
			}
			if res.MercyBypass {
				fmt.Fprintln(out, ui.Muted.Render("Welcome back: one reward opened without a fight."))
			}
			for _, u := range res.ArcUnlocks {
				fmt.Fprintf(out, "%s %s: %s\n", ui.Gold.Render(ui.IconScroll+" "+u.Title), ui.Muted.Render(fmt.Sprintf("milestone %d", u.Milestone)), u.Fragment)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note")
	return cmd
}
