package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/ui"
)

func newChestsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "chests",
		Short: "List earned chests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			chests, err := svc.ListChests(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconChest, "Chests"))
			if len(chests) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
				return nil
			}
			for _, c := range chests {
				from := ""
				if c.Meta != nil && c.Meta.HabitName != "" {
					from = ui.Muted.Render(" from " + c.Meta.HabitName)
				}
				fmt.Fprintf(out, "- %s %s %s %s%s\n",
					ui.Muted.Render(shortID(c.ID)),
					ui.TierText(c.Tier),
					ui.RarityText(c.Rarity),
					ui.Muted.Render(fmt.Sprintf("%d/%d unlocked", c.UnlockedRewardCount, len(c.Rewards))),
					from,
				)
				for _, r := range c.Rewards {
					name := r.Name
					if r.Locked {
						name = ui.Muted.Render("???")
					}
					fmt.Fprintf(out, "    %s %s %s\n", ui.RewardIcon(r.Type, r.Locked), name, ui.RarityText(r.Rarity))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum chests to show (0 for all)")
	return cmd
}

func newCombatCmd() *cobra.Command {
	var (
		outcome     string
		encounterID string
	)
	cmd := &cobra.Command{
		Use:   "combat <chest|latest>",
		Short: "Resolve a combat encounter over a chest",
		Long: `Resolve a combat encounter over a chest.

Winning unlocks 60% of the chest's locked rewards (at least one).
Losing changes nothing; you can always fight again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			chestID, err := resolveChestID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.ResolveCombatEncounter(ctx, engine.CombatInput{
				EncounterID: encounterID,
				ChestID:     chestID,
				Outcome:     outcome,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Outcome == engine.OutcomeLose {
				fmt.Fprintf(out, "%s %s\n", ui.Warn.Render(ui.IconSwords+" Defeated"), ui.Muted.Render("nothing lost, try again"))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", ui.Good.Render(ui.IconSwords+" Victory"), ui.Muted.Render(fmt.Sprintf("%d unlocked, %d still locked", res.Unlocked, res.Remaining)))
			chest, err := svc.GetChest(ctx, chestID)
			if err != nil {
				return err
			}
			unlocked := map[string]bool{}
			for _, id := range res.UnlockedRewardIDs {
				unlocked[id] = true
			}
			for _, r := range chest.Rewards {
				if unlocked[r.ID] {
					fmt.Fprintf(out, "  %s %s %s %s\n", ui.RewardIcon(r.Type, false), r.Name, ui.RarityText(r.Rarity), ui.Muted.Render(r.Effect))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outcome, "outcome", "o", engine.OutcomeWin, "Outcome (win|lose)")
	cmd.Flags().StringVar(&encounterID, "id", "", "Encounter id (generated when empty)")
	return cmd
}

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "List collected items and cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := svc.ListItems(ctx)
			if err != nil {
				return err
			}
			cards, err := svc.ListCards(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconItem, "Items"))
			for _, it := range items {
				fmt.Fprintf(out, "- %s %s %s\n", it.Name, ui.RarityText(it.Rarity), ui.Muted.Render(it.Effect))
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.Heading(ui.IconCard, "Cards"))
			for _, c := range cards {
				fmt.Fprintf(out, "- %s %s %s %s\n", ui.Muted.Render(shortID(c.ID)), c.Name, ui.RarityText(c.Rarity), ui.Muted.Render(c.Effect))
			}
			return nil
		},
	}
}

func newEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equip <card_id>",
		Short: "Equip an unlocked card (empty id unequips)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id := ""
			if len(args) == 1 {
				cards, err := svc.ListCards(ctx)
				if err != nil {
					return err
				}
				id = args[0]
				for _, c := range cards {
					if c.ID == args[0] || shortID(c.ID) == args[0] {
						id = c.ID
						break
					}
				}
			}
			if err := svc.EquipCard(ctx, id); err != nil {
				return err
			}
			if id == "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Card unequipped."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconCard+" Equipped"), shortID(id))
			return nil
		},
	}
}
