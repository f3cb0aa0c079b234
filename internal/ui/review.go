package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wardenlabs/warden/internal/approvals"
)

// reviewModel is the Bubble Tea model for the approval review screen:
// a checkbox list over scanned approvals with the trust score on top.
type reviewModel struct {
	items     []approvals.Item
	score     int
	checked   map[string]bool
	cursor    int
	confirmed bool
	quitting  bool
}

func newReviewModel(items []approvals.Item, score int) reviewModel {
	checked := make(map[string]bool, len(items))
	// High-risk approvals start checked; revoking them is the point.
	for _, it := range items {
		if it.Risk == approvals.RiskHigh {
			checked[it.ID] = true
		}
	}
	return reviewModel{items: items, score: score, checked: checked}
}

func (m reviewModel) Init() tea.Cmd { return nil }

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ", "x":
			if len(m.items) > 0 {
				id := m.items[m.cursor].ID
				m.checked[id] = !m.checked[id]
			}
		case "a":
			for _, it := range m.items {
				m.checked[it.ID] = true
			}
		case "n":
			m.checked = make(map[string]bool, len(m.items))
		case "enter":
			if len(m.selectedIDs()) > 0 {
				m.confirmed = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// selectedIDs returns checked ids in scan order.
func (m reviewModel) selectedIDs() []string {
	var ids []string
	for _, it := range m.items {
		if m.checked[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (m reviewModel) View() string {
	if m.quitting || m.confirmed {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  Outstanding approvals") + "\n")
	sb.WriteString("  " + ScoreBar(m.score) + "\n\n")

	for i, it := range m.items {
		box := "[ ]"
		if m.checked[it.ID] {
			box = StyleSuccess.Render("[✓]")
		}
		cursor := "  "
		if i == m.cursor {
			cursor = StyleChain.Render("▸ ")
		}

		line := fmt.Sprintf("%s%s %s %s %s → %s %s",
			cursor, box,
			RiskBadge(it.Risk),
			StyleValue.Render(it.TokenSymbol),
			StyleMeta.Render(string(it.Kind)),
			StyleValue.Render(it.SpenderLabel),
			StyleMeta.Render(it.Amount),
		)
		sb.WriteString(line + "\n")
		sb.WriteString("       " + StyleMeta.Render("spender ") + Addr(TruncateAddr(it.SpenderAddr)) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d of %d selected", len(m.selectedIDs()), len(m.items))) + "\n")
	sb.WriteString(StyleMeta.Render("  [ space ] toggle   [ a ] all   [ n ] none   [ Enter ] revoke   [ q ] cancel") + "\n")
	return sb.String()
}

// ReviewApprovals runs the interactive review screen and returns the ids
// the user chose to revoke, in scan order. A cancelled screen returns
// (nil, nil).
func ReviewApprovals(items []approvals.Item, score int) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	p := tea.NewProgram(newReviewModel(items, score), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}

	fm := final.(reviewModel)
	if !fm.confirmed {
		return nil, nil
	}
	return fm.selectedIDs(), nil
}
