package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/backup"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON backup (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := backup.Export(ctx, svc.Store(), backup.Info{
				DeviceID:   cfg.DeviceID,
				AppVersion: cfg.AppVersion,
				Now:        time.Now(),
			})
			if err != nil {
				return err
			}
			raw, err := backup.Marshal(p)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			}
			if err := os.WriteFile(args[0], raw, 0o600); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconBox+" Exported"), args[0],
				ui.Muted.Render(fmt.Sprintf("(%d habits, %d efforts, %d chests)", len(p.Habits), len(p.EffortLogs), len(p.Chests))))
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var allowEmpty bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all local data with a JSON backup",
		Long: `Replace all local data with a JSON backup.

The import is rejected without touching local data when the file is an
encrypted envelope, is malformed, or contains no data (unless --allow-empty).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := backup.Import(ctx, svc.Store(), raw, backup.ImportOptions{AllowEmpty: allowEmpty})
			if err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("import rejected (%s): %s", res.Reason, res.Detail)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconDone+" Imported"), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Allow an empty backup to wipe local data")
	return cmd
}
