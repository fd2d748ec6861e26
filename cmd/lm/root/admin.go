package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "admin",
		Short:  "Support operations",
		Hidden: true,
	}
	cmd.AddCommand(newAdminGrantCmd())
	return cmd
}

// parseForcedReward reads type:ref_id[:rarity].
func parseForcedReward(raw string) (engine.ForcedReward, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return engine.ForcedReward{}, fmt.Errorf("reward %q: want type:ref_id[:rarity]", raw)
	}
	fr := engine.ForcedReward{
		Type:  strings.ToLower(strings.TrimSpace(parts[0])),
		RefID: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		r, err := catalog.ParseRarity(parts[2])
		if err != nil {
			return engine.ForcedReward{}, err
		}
		fr.Rarity = r
	}
	return fr, nil
}

func newAdminGrantCmd() *cobra.Command {
	var (
		rarity  string
		tier    string
		habit   string
		rewards []string
	)
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a chest with exact contents",
		Example: `  lm admin grant --rarity epic --tier runed \
    --reward item:item_chalk_stub --reward card:card_the_novice:rare`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := engine.ForcedChest{HabitName: habit}
			if rarity != "" {
				r, err := catalog.ParseRarity(rarity)
				if err != nil {
					return err
				}
				in.Rarity = r
			}
			if tier != "" {
				t, err := engine.ParseTier(tier)
				if err != nil {
					return err
				}
				in.Tier = t
			}
			for _, r := range rewards {
				fr, err := parseForcedReward(r)
				if err != nil {
					return err
				}
				in.Rewards = append(in.Rewards, fr)
			}

			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.GrantChest(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconChest+" Granted"), ui.Muted.Render("#"+shortID(res.ChestID)),
				ui.Muted.Render(fmt.Sprintf("(%d locked rewards)", len(res.Rewards))))
			return nil
		},
	}
	cmd.Flags().StringVar(&rarity, "rarity", "common", "Chest rarity")
	cmd.Flags().StringVar(&tier, "tier", "weathered", "Chest tier")
	cmd.Flags().StringVar(&habit, "habit", "", "Habit name recorded on the chest")
	cmd.Flags().StringArrayVar(&rewards, "reward", nil, "Reward as type:ref_id[:rarity] (repeatable)")
	return cmd
}
