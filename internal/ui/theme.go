package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shared CLI + TUI styles.

const (
	IconHabit   = "🌱"
	IconEffort  = "💪"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconChest   = "🧰"
	IconLock    = "🔒"
	IconUnlock  = "🔓"
	IconCard    = "🃏"
	IconItem    = "🎒"
	IconSwords  = "⚔️"
	IconHeart   = "💖"
	IconScroll  = "📜"
	IconPause   = "⏸️"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconBox     = "📦"
)

var (
	cPrimary  = lipgloss.Color("63")  // blue
	cAccent   = lipgloss.Color("205") // magenta
	cGood     = lipgloss.Color("42")  // green
	cWarn     = lipgloss.Color("214") // orange
	cBad      = lipgloss.Color("196") // red
	cMuted    = lipgloss.Color("244") // gray
	cGold     = lipgloss.Color("220") // gold
	cUncommon = lipgloss.Color("35")
	cRare     = lipgloss.Color("33")
	cEpic     = lipgloss.Color("129")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
	BadgeMercy   = lipgloss.NewStyle().Bold(true).Foreground(cAccent).Render("MERCY")
)

var rarityStyles = map[string]lipgloss.Style{
	"common":   Muted,
	"uncommon": lipgloss.NewStyle().Bold(true).Foreground(cUncommon),
	"rare":     lipgloss.NewStyle().Bold(true).Foreground(cRare),
	"epic":     lipgloss.NewStyle().Bold(true).Foreground(cEpic),
	"relic":    Gold,
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// RarityText colors a rarity name. Unknown values render muted.
func RarityText(rarity string) string {
	r := strings.ToLower(strings.TrimSpace(rarity))
	if st, ok := rarityStyles[r]; ok {
		return st.Render(r)
	}
	return Muted.Render(rarity)
}

func TierText(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "ancient":
		return Gold.Render(tier)
	case "runed":
		return rarityStyles["epic"].Render(tier)
	case "engraved":
		return rarityStyles["rare"].Render(tier)
	case "sealed":
		return H2.Render(tier)
	default:
		return Muted.Render(tier)
	}
}

func HabitState(active bool) string {
	if active {
		return Good.Render("active")
	}
	return Warn.Render("paused")
}

func RewardIcon(rewardType string, locked bool) string {
	icon := IconItem
	if rewardType == "card" {
		icon = IconCard
	}
	if locked {
		return IconLock + icon
	}
	return IconUnlock + icon
}

// ProgressBar renders filled/total as a fixed-width bar.
func ProgressBar(filled, total, width int) string {
	if width <= 0 {
		width = 10
	}
	n := 0
	if total > 0 {
		n = filled * width / total
	}
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	return Good.Render(strings.Repeat("█", n)) + Muted.Render(strings.Repeat("░", width-n))
}
