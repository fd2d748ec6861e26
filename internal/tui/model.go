package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

const recentChests = 3

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	snap   engine.StatusSnapshot
	habits []storage.Habit
	chests []engine.ChestView
	arcs   []engine.ArcQuestView

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	snap   engine.StatusSnapshot
	habits []storage.Habit
	chests []engine.ChestView
	arcs   []engine.ArcQuestView
	err    error
}

type loggedMsg struct {
	name string
	res  engine.LogEffortResult
	err  error
}

type toggledMsg struct {
	habit storage.Habit
	err   error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.svc.GetStatusSnapshot(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		habits, err := m.svc.ListHabits(m.ctx, engine.HabitFilterAll)
		if err != nil {
			return loadedMsg{err: err}
		}
		chests, err := m.svc.ListChests(m.ctx, recentChests)
		if err != nil {
			return loadedMsg{err: err}
		}
		arcs, err := m.svc.ListArcQuests(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{snap: snap, habits: habits, chests: chests, arcs: arcs}
	}
}

func (m boardModel) logCmd(h storage.Habit) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.LogEffort(m.ctx, engine.LogEffortInput{HabitID: h.ID})
		return loggedMsg{name: h.Name, res: res, err: err}
	}
}

func (m boardModel) toggleCmd(h storage.Habit) tea.Cmd {
	return func() tea.Msg {
		var (
			out storage.Habit
			err error
		)
		if h.IsActive {
			out, err = m.svc.PauseHabit(m.ctx, h.ID)
		} else {
			out, err = m.svc.ResumeHabit(m.ctx, h.ID)
		}
		return toggledMsg{habit: out, err: err}
	}
}

func (m boardModel) selectedHabit() (storage.Habit, bool) {
	if m.selected < 0 || m.selected >= len(m.habits) {
		return storage.Habit{}, false
	}
	return m.habits[m.selected], true
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.snap = msg.snap
		m.habits = msg.habits
		m.chests = msg.chests
		m.arcs = msg.arcs
		if m.selected >= len(m.habits) {
			m.selected = len(m.habits) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case loggedMsg:
		if msg.err != nil {
			m.lastLog = "Log failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = describeLog(msg.name, msg.res)
		return m, m.loadCmd()
	case toggledMsg:
		if msg.err != nil {
			m.lastLog = "Update failed: " + msg.err.Error()
			return m, nil
		}
		state := "resumed"
		if !msg.habit.IsActive {
			state = "paused"
		}
		m.lastLog = fmt.Sprintf("%s %s.", msg.habit.Name, state)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.habits)-1 {
				m.selected++
			}
			return m, nil
		case "l", " ", "enter":
			h, ok := m.selectedHabit()
			if !ok {
				m.lastLog = "Add a habit first: lm habit add <name>"
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Logging %s…", h.Name)
			return m, m.logCmd(h)
		case "p":
			h, ok := m.selectedHabit()
			if !ok {
				return m, nil
			}
			return m, m.toggleCmd(h)
		}
	}
	return m, nil
}

func describeLog(name string, res engine.LogEffortResult) string {
	parts := []string{fmt.Sprintf("%s +%d effort, %s %s chest (%d rewards)", name, res.EffortValue, res.ChestTier, res.Rarity, len(res.Rewards))}
	if res.LevelAfter > res.LevelBefore {
		parts = append(parts, fmt.Sprintf("level %d → %d", res.LevelBefore, res.LevelAfter))
	}
	if res.MercyUsed {
		parts = append(parts, "mercy")
	}
	for _, u := range res.ArcUnlocks {
		parts = append(parts, "unlocked: "+u.Title)
	}
	return strings.Join(parts, " | ")
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 28
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	id := m.snap.Identity
	if id == nil {
		if m.loading {
			return "LifeMaxxing | loading…"
		}
		return "LifeMaxxing | Level 1 | log an effort to begin"
	}
	cur := engine.EffortRequiredForLevel(id.Level)
	bar := progressBar(id.TotalEffortUnits-cur, m.snap.NextLevelAt-cur, 30)
	return fmt.Sprintf("LifeMaxxing | Level %d | Effort %d %s", id.Level, id.TotalEffortUnits, bar)
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Status"}
	lines = append(lines, fmt.Sprintf("- consistency %d/7", m.snap.ConsistencyScore))
	lines = append(lines, fmt.Sprintf("- inactive %dd", m.snap.InactivityDays))
	switch {
	case m.snap.Mercy.Eligible:
		lines = append(lines, "- mercy ready")
	case m.snap.Mercy.Reason == engine.MercyCooldown:
		lines = append(lines, fmt.Sprintf("- mercy in %dd", m.snap.Mercy.CooldownDaysRemaining))
	}
	lines = append(lines, fmt.Sprintf("- locked rewards %d", m.snap.Counts.LockedRewards))
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- l/space: log effort")
	lines = append(lines, "- p: pause/resume")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Habits")
	if len(m.habits) == 0 {
		out = append(out, "(none yet)")
	}
	for i, h := range m.habits {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		state := ""
		if !h.IsActive {
			state = " (paused)"
		}
		out = append(out, fmt.Sprintf("%s%s%s", cursor, h.Name, state))
	}

	out = append(out, "", "Recent Chests")
	if len(m.chests) == 0 {
		out = append(out, "(none)")
	}
	for _, c := range m.chests {
		out = append(out, fmt.Sprintf("- %s %s  %d/%d unlocked", c.Tier, c.Rarity, c.UnlockedRewardCount, len(c.Rewards)))
	}

	out = append(out, "", "Arc Quests")
	for _, a := range m.arcs {
		total := len(a.Arc.Milestones)
		bar := progressBar(a.Progress.UnlockedCount, total, 10)
		flag := ""
		switch {
		case a.Progress.Ignored:
			flag = " (ignored)"
		case a.Complete():
			flag = " (complete)"
		case a.NextMilestone > 0:
			flag = fmt.Sprintf(" next at %d", a.NextMilestone)
		}
		out = append(out, fmt.Sprintf("- %s %s %d%s", a.Arc.Title, bar, a.Progress.Progress, flag))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
