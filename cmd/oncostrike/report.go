package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"oncostrike/internal/intercept"
	"oncostrike/internal/safety"
)

var (
	reportTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	reportSection = lipgloss.NewStyle().Bold(true)
	reportGene    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	reportMuted   = lipgloss.NewStyle().Faint(true)
	reportWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	reportHeader  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	reportCell    = lipgloss.NewStyle().Padding(0, 1)
)

// renderReport renders the terminal summary of one interception result.
func renderReport(res *intercept.InterceptionResult) string {
	var sb strings.Builder

	sb.WriteString(reportTitle.Render(fmt.Sprintf("TARGET LOCK: %s", res.MissionObjective)))
	sb.WriteString("\n\n")

	vt := res.ValidatedTarget
	sb.WriteString(fmt.Sprintf("%s  rank score %.2f\n", reportGene.Render(vt.Gene), vt.RankScore))
	for _, line := range vt.Rationale {
		sb.WriteString(reportMuted.Render("  "+line) + "\n")
	}
	sb.WriteString("\n")

	if len(res.ConsideredTargets) > 0 {
		sb.WriteString(reportSection.Render("Also considered") + "\n")
		rows := make([][]string, 0, len(res.ConsideredTargets))
		for _, ct := range res.ConsideredTargets {
			rows = append(rows, []string{ct.Gene, fmt.Sprintf("%.2f", ct.RankScore), ct.Rationale})
		}
		sb.WriteString(renderTable([]string{"Gene", "Rank", "Rationale"}, rows))
		sb.WriteString("\n")
	}

	sb.WriteString(reportSection.Render(fmt.Sprintf("Candidates (%d)", len(res.Candidates))) + "\n")
	if len(res.Candidates) == 0 {
		sb.WriteString(reportMuted.Render("  none produced") + "\n")
	} else {
		rows := make([][]string, 0, len(res.Candidates))
		for i, c := range res.Candidates {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				c.Sequence,
				c.PAM,
				fmt.Sprintf("%.2f", c.GCContent),
				safetyCell(c.SafetyScore, c.SafetyStatus),
				fmt.Sprintf("%.2f (%s)", c.Efficacy, c.EfficacyMethod),
				fmt.Sprintf("%.3f", c.AssassinScore),
			})
		}
		sb.WriteString(renderTable([]string{"#", "Sequence", "PAM", "GC", "Safety", "Efficacy", "Assassin"}, rows))
	}
	sb.WriteString("\n")

	for _, w := range res.Provenance.Warnings {
		sb.WriteString(reportWarn.Render("! "+w) + "\n")
	}
	if len(res.Provenance.Warnings) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(reportMuted.Render(fmt.Sprintf("request %s  ruleset %s  %dms",
		res.RequestID, res.Provenance.RulesetVersion, res.Provenance.ElapsedMS)) + "\n")
	sb.WriteString(reportMuted.Render(res.RUONotice) + "\n")
	return sb.String()
}

func safetyCell(score float64, status string) string {
	if status == safety.StatusOK {
		return fmt.Sprintf("%.2f", score)
	}
	return fmt.Sprintf("%.2f (%s)", score, status)
}

// renderTable renders rows with columns sized to their widest cell.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(reportHeader.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w
	}
	sb.WriteString(reportMuted.Render(strings.Repeat("-", total)) + "\n")

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(reportCell.Width(widths[i]).Render(cell))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
