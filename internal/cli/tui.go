package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/landsight/parcelfit/pkg/placement"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlacementListModel - Interactive placement selection
// =============================================================================

// PlacementListModel is the bubbletea model for picking one placement
// out of a search result. Candidates are shown in score order with the
// recommended one marked.
type PlacementListModel struct {
	Candidates  []placement.Candidate
	Recommended *placement.Candidate
	Cursor      int
	Selected    *placement.Candidate
	Height      int
	Offset      int
}

// NewPlacementListModel creates a placement list over the candidates,
// best score first.
func NewPlacementListModel(cands []placement.Candidate, recommended *placement.Candidate) PlacementListModel {
	sorted := make([]placement.Candidate, len(cands))
	copy(sorted, cands)
	// Stable ordering: score descending, scan order breaking ties.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Score > sorted[j-1].Score; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return PlacementListModel{
		Candidates:  sorted,
		Recommended: recommended,
		Cursor:      0,
		Height:      15,
		Offset:      0,
	}
}

func (m PlacementListModel) Init() tea.Cmd {
	return nil
}

func (m PlacementListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Candidates)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			cand := m.Candidates[m.Cursor]
			m.Selected = &cand
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PlacementListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Placement"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Candidates) {
		end = len(m.Candidates)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cand := m.Candidates[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		mark := ""
		if m.isRecommended(cand) {
			mark = "★"
		}

		clearance := "—"
		if cand.Clearance >= 0 {
			clearance = formatFeet(cand.Clearance)
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("(%.0f, %.0f)", cand.Position[0], cand.Position[1]),
			fmt.Sprintf("%.2f", cand.Score),
			clearance,
			mark,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Position", "Score", "Clearance", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx >= len(m.Candidates) {
				return lipgloss.NewStyle()
			}
			if actualIdx == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Candidates))))

	return b.String()
}

// isRecommended reports whether cand is the search's own recommendation.
func (m PlacementListModel) isRecommended(cand placement.Candidate) bool {
	return m.Recommended != nil &&
		cand.Position == m.Recommended.Position &&
		cand.Score == m.Recommended.Score
}
