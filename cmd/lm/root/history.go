package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent efforts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			efforts, err := svc.ListRecentEfforts(ctx, limit)
			if err != nil {
				return err
			}
			habits, err := svc.ListHabits(ctx, engine.HabitFilterAll)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(habits))
			for _, h := range habits {
				names[h.ID] = h.Name
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconEffort, "Recent Efforts"))
			if len(efforts) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
				return nil
			}
			for _, e := range efforts {
				line := fmt.Sprintf("- %s %s +%d", ui.Muted.Render(e.Timestamp.In(loc).Format("2006-01-02 15:04")), names[e.HabitID], e.EffortValue)
				if e.Note != nil {
					line += " " + ui.Muted.Render(*e.Note)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum efforts to show (0 for all)")
	return cmd
}
