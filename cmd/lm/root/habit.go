package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newHabitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits",
	}
	cmd.AddCommand(
		newHabitAddCmd(),
		newHabitListCmd(),
		newHabitStateCmd("pause", "Pause a habit (efforts can still be logged)", false),
		newHabitStateCmd("resume", "Resume a paused habit", true),
		newHabitDeleteCmd(),
	)
	return cmd
}

func newHabitAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := svc.CreateHabit(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := svc.ResolveEffort(ctx, h.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Added"), h.Name, ui.Muted.Render("#"+shortID(h.ID)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Effort", fmt.Sprintf("%d/10 (%s)", res.Effort, res.Source)))
			return nil
		},
	}
}

func newHabitListCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := engine.ParseHabitFilter(filter)
			if err != nil {
				return err
			}
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			habits, err := svc.ListHabits(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconHabit, "Habits"))
			if len(habits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
				return nil
			}
			for _, h := range habits {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s\n", ui.Muted.Render(shortID(h.ID)), h.Name, ui.HabitState(h.IsActive))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "Filter (all|active|paused)")
	return cmd
}

func newHabitStateCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <habit>",
		Short: short,
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
			if active {
				h, err = svc.ResumeHabit(ctx, h.ID)
			} else {
				h, err = svc.PauseHabit(ctx, h.ID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h.Name, ui.HabitState(h.IsActive))
			return nil
		},
	}
}

func newHabitDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <habit>",
		Short: "Delete a habit and its effort history",
		Long: `Delete a habit.

This will:
- Remove the habit and every effort logged against it
- Release any arc quest bound to it

Chests and rewards already earned are kept.`,
		Args: cobra.ExactArgs(1),
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
			if err := svc.DeleteHabit(ctx, h.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted"), h.Name)
			return nil
		},
	}
}
