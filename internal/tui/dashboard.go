package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/status"
)

type dashState struct {
	metrics      api.DashboardMetrics
	clients      []api.ClientSummary
	verification []api.VerificationItem
	cursor       int
	expanded     bool
	loading      bool
}

func (a *App) handleDashboardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up":
		if a.dash.cursor > 0 {
			a.dash.cursor--
		}
	case "down":
		if a.dash.cursor < len(a.dash.clients)-1 {
			a.dash.cursor++
		}
	case "enter":
		a.dash.expanded = !a.dash.expanded
	case "R":
		a.dash.loading = true
		return a, a.refreshCmds()
	}
	return a, nil
}

// taskLight reduces a client's tasks to one traffic light.
func taskLight(tasks []api.Task) status.Light {
	in := make([]status.TaskInput, len(tasks))
	for i, t := range tasks {
		in[i] = status.TaskInput{Priority: t.Priority, Confidence: t.Confidence}
	}
	return status.TaskLight(in)
}

func (a *App) renderDashboard() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Kontali · Oversikt"))
	b.WriteString("\n\n")

	if a.dash.loading {
		b.WriteString(dimStyle.Render("Henter nøkkeltall..."))
		b.WriteString("\n")
	}

	m := a.dash.metrics
	b.WriteString(headerStyle.Render("Nøkkeltall"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Bilag i dag: %d   Denne uken: %d   Autobokført: %.0f%%\n",
		m.InvoicesToday, m.InvoicesWeek, m.AutoBookedRate))
	b.WriteString(fmt.Sprintf("  %s Til gjennomgang: %d   %s Umatchet bank: %d   EHF mottatt: %d\n",
		lightDot(status.CountLight(m.PendingReview)), m.PendingReview,
		lightDot(status.CountLight(m.UnmatchedBankTx)), m.UnmatchedBankTx,
		m.EHFReceived))
	b.WriteString(fmt.Sprintf("  AI-terskler: auto >= %.0f%%, gjennomgang >= %.0f%%\n",
		m.AIThresholdAuto, m.AIThresholdReview))

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Klienter"))
	b.WriteString("\n")
	if len(a.dash.clients) == 0 {
		b.WriteString(dimStyle.Render("  Ingen klienter.\n"))
	}
	for i, c := range a.dash.clients {
		prefix := "  "
		if i == a.dash.cursor {
			prefix = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s %-30s %s  %d oppgaver\n",
			prefix, lightDot(taskLight(c.Tasks)), c.Name, dimStyle.Render(c.OrgNumber), len(c.Tasks)))
		if a.dash.expanded && i == a.dash.cursor {
			for _, t := range c.Tasks {
				b.WriteString(fmt.Sprintf("      [%s/%s] %s %s\n",
					t.Category, t.Priority, breakdownBadge(t.Confidence), t.Summary))
			}
		}
	}

	if len(a.dash.verification) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Verifisering"))
		b.WriteString("\n")
		for _, v := range a.dash.verification {
			style := dimStyle
			switch v.Severity {
			case "high":
				style = redStyle
			case "medium":
				style = yellowStyle
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", style.Render("["+v.Kind+"]"), v.Message))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ velg  enter detaljer  R oppdater  g/r/b/o/k/p/s visninger  c chat  j klient  q avslutt"))
	return b.String()
}
