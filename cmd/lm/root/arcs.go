package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newArcsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arcs",
		Short: "Show arc quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			arcs, err := svc.ListArcQuests(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Arc Quests"))
			for _, a := range arcs {
				state := ui.Muted.Render("open")
				switch {
				case a.Progress.Ignored:
					state = ui.Warn.Render("ignored")
				case a.Complete():
					state = ui.Gold.Render("complete")
				case a.Progress.Accepted:
					state = ui.Good.Render("accepted")
				}
				fmt.Fprintf(out, "%s %s %s\n", ui.H2.Render(a.Arc.Title), ui.Muted.Render(a.Arc.ID), state)
				next := "done"
				if a.NextMilestone > 0 {
					next = fmt.Sprintf("next at %d", a.NextMilestone)
				}
				fmt.Fprintf(out, "  %s %d %s\n", ui.ProgressBar(a.Progress.UnlockedCount, len(a.Arc.Milestones), 10), a.Progress.Progress, ui.Muted.Render(next))
				if a.Progress.HabitID != nil {
					fmt.Fprintf(out, "  %s\n", ui.Muted.Render("bound to #"+shortID(*a.Progress.HabitID)))
				}
				for _, f := range a.Fragments {
					fmt.Fprintf(out, "  %s %s\n", ui.Muted.Render("·"), f)
				}
			}
			return nil
		},
	}
	cmd.AddCommand(newArcAcceptCmd(), newArcIgnoreCmd(), newArcBindCmd())
	return cmd
}

func newArcAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <arc_id>",
		Short: "Accept an arc quest (resumes an ignored one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.AcceptArcQuest(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconScroll+" Accepted"), args[0])
			return nil
		},
	}
}

func newArcIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ignore <arc_id>",
		Short: "Ignore an arc quest (progress is kept but frozen)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.IgnoreArcQuest(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Ignored"), args[0])
			return nil
		},
	}
}

func newArcBindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bind <arc_id> <habit>",
		Short: "Advance an arc quest only from one habit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := resolveHabit(ctx, svc, args[1])
			if err != nil {
				return err
			}
			if err := svc.BindArcQuestToHabit(ctx, args[0], h.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n", ui.Good.Render("Bound"), args[0], h.Name)
			return nil
		},
	}
}
