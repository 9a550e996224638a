package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/daterange"
	"github.com/kontali/konsole/internal/export"
)

type reportState struct {
	format       string
	kindCursor   int
	presetCursor int
}

var reportKinds = []struct {
	kind  string
	label string
}{
	{api.ReportResultat, "Resultatregnskap"},
	{api.ReportBalanse, "Balanse"},
	{api.ReportHovedbok, "Hovedbok"},
	{api.ReportMVA, "MVA-oppgave"},
	{api.ReportSaldobalanse, "Saldobalanse"},
}

func (a *App) handleReportsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := &a.reports
	presets := daterange.Presets()
	switch m.String() {
	case "up":
		if r.kindCursor > 0 {
			r.kindCursor--
		}
	case "down":
		if r.kindCursor < len(reportKinds)-1 {
			r.kindCursor++
		}
	case "left":
		if r.presetCursor > 0 {
			r.presetCursor--
		}
	case "right":
		if r.presetCursor < len(presets)-1 {
			r.presetCursor++
		}
	case "f":
		if r.format == api.FormatPDF {
			r.format = api.FormatExcel
		} else {
			r.format = api.FormatPDF
		}
	case "enter":
		kind := reportKinds[r.kindCursor].kind
		preset := presets[r.presetCursor]
		a.SetStatus("Eksporterer " + kind + "...")
		return a, a.downloadReportCmd(kind, r.format, preset)
	}
	return a, nil
}

func (a *App) downloadReportCmd(kind, format, preset string) tea.Cmd {
	client, dir := a.api, a.cfg.UI.DownloadDir
	return func() tea.Msg {
		rng, err := daterange.Quick(preset, time.Now())
		if err != nil {
			return errMsg{err}
		}
		body, err := client.DownloadReport(a.ctx, kind, format, rng.From, rng.To)
		if err != nil {
			return errMsg{err}
		}
		defer body.Close()
		path, err := export.SaveReport(dir, kind, format, rng.From, rng.To, body)
		if err != nil {
			return errMsg{err}
		}
		return reportSavedMsg(path)
	}
}

func (a *App) renderReports() string {
	r := a.reports
	var b strings.Builder
	b.WriteString(titleStyle.Render("Rapporter"))
	b.WriteString("\n\n")

	for i, k := range reportKinds {
		prefix := "  "
		if i == r.kindCursor {
			prefix = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", prefix, k.label))
	}

	b.WriteString("\nPeriode: ")
	for i, p := range daterange.Presets() {
		label := daterange.Label(p)
		if i == r.presetCursor {
			label = headerStyle.Render("[" + label + "]")
		} else {
			label = dimStyle.Render(label)
		}
		b.WriteString(label + "  ")
	}
	rng, err := daterange.Quick(daterange.Presets()[r.presetCursor], time.Now())
	if err == nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("(%s – %s)", rng.From, rng.To)))
	}

	b.WriteString(fmt.Sprintf("\nFormat: %s\n", headerStyle.Render(r.format)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ rapport  ←/→ periode  f format  enter eksporter"))
	return b.String()
}
