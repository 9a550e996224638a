package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/store"
)

type pickerState struct {
	input  textinput.Model
	recent []store.RecentClient
	cursor int
}

func (a *App) openPicker() {
	a.modal = modalPicker
	a.picker.input.SetValue("")
	a.picker.input.Focus()
	a.picker.cursor = 0
}

// pickerCandidates merges the dashboard client list with locally stored
// recents, recents first, de-duplicated by id.
func (a *App) pickerCandidates() []PickerItem {
	seen := map[string]bool{}
	var out []PickerItem
	for _, rc := range a.picker.recent {
		if seen[rc.ClientID] {
			continue
		}
		seen[rc.ClientID] = true
		out = append(out, PickerItem{ID: rc.ClientID, Label: rc.Name, Meta: "nylig"})
	}
	for _, c := range a.dash.clients {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, PickerItem{ID: c.ID, Label: c.Name, Meta: c.OrgNumber})
	}
	return out
}

func (a *App) handlePickerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	ranked := RankItems(a.pickerCandidates(), a.picker.input.Value())
	switch m.String() {
	case "esc":
		a.modal = modalNone
		a.picker.input.Blur()
		return a, nil
	case "up":
		if a.picker.cursor > 0 {
			a.picker.cursor--
		}
		return a, nil
	case "down":
		if a.picker.cursor < len(ranked)-1 {
			a.picker.cursor++
		}
		return a, nil
	case "enter":
		if a.picker.cursor >= len(ranked) {
			return a, nil
		}
		pick := ranked[a.picker.cursor]
		a.modal = modalNone
		a.picker.input.Blur()
		return a, a.switchClient(pick)
	}
	var cmd tea.Cmd
	a.picker.input, cmd = a.picker.input.Update(m)
	if a.picker.cursor >= len(RankItems(a.pickerCandidates(), a.picker.input.Value())) {
		a.picker.cursor = 0
	}
	return a, cmd
}

// switchClient installs a fresh client scoped to the pick and re-fetches
// the active view. In-flight commands keep the pointer they captured, so
// the old client is never written to.
func (a *App) switchClient(pick PickerItem) tea.Cmd {
	a.api = api.New(a.api.BaseURL(), pick.ID, a.api.UserID)
	a.SetStatus("Aktiv klient: " + pick.Label)
	touch := a.touchClientCmd(pick.ID, pick.Label)
	return tea.Batch(touch, a.refreshCmds())
}

func (a *App) touchClientCmd(clientID, name string) tea.Cmd {
	if a.repos.Clients == nil {
		return nil
	}
	return func() tea.Msg {
		if err := a.repos.Clients.Touch(a.ctx, clientID, name); err != nil {
			return errMsg{err}
		}
		rc, err := a.repos.Clients.Recent(a.ctx, 10)
		if err != nil {
			return errMsg{err}
		}
		return recentClientsMsg(rc)
	}
}

func (a *App) renderPickerModal() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Bytt klient"))
	b.WriteString("\n")
	b.WriteString(a.picker.input.View())
	b.WriteString("\n")
	ranked := RankItems(a.pickerCandidates(), a.picker.input.Value())
	if len(ranked) == 0 {
		b.WriteString(dimStyle.Render("Ingen treff.\n"))
	}
	for i, it := range ranked {
		prefix := "  "
		if i == a.picker.cursor {
			prefix = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-30s %s\n", prefix, truncate(it.Label, 30), dimStyle.Render(it.Meta)))
	}
	b.WriteString(dimStyle.Render("↑/↓ velg  enter bytt  esc lukk"))
	return modalStyle.Render(b.String())
}
