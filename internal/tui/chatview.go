package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/chat"
)

type chatState struct {
	input   textinput.Model
	spinner spinner.Model
	waiting bool
}

func (a *App) openChat() {
	a.modal = modalChat
	a.chatUI.input.SetValue("")
	a.chatUI.input.Focus()
}

func (a *App) handleChatKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		a.chatUI.input.Blur()
		return a, nil
	case "enter":
		text := strings.TrimSpace(a.chatUI.input.Value())
		if text == "" || a.chatUI.waiting {
			return a, nil
		}
		a.chatUI.input.SetValue("")
		a.chatUI.waiting = true
		history := a.chatSession.History()
		a.chatSession.AppendUser(text)
		return a, tea.Batch(a.sendChatCmd(text, history), a.chatUI.spinner.Tick)
	}
	var cmd tea.Cmd
	a.chatUI.input, cmd = a.chatUI.input.Update(m)
	return a, cmd
}

// sendChatCmd runs one exchange. The command only talks to the provider;
// the session log is written on the update loop, user turn before
// dispatch and assistant turn when the reply message lands. A failed
// reply leaves the question visible.
func (a *App) sendChatCmd(text string, history []api.ChatMessage) tea.Cmd {
	provider := a.chatProvider
	return func() tea.Msg {
		reply, err := provider.Reply(a.ctx, text, history)
		if err != nil {
			return chatFailedMsg{err}
		}
		return chatReplyMsg{Reply: reply}
	}
}

func (a *App) renderChatModal() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Kontali-assistent"))
	b.WriteString("\n")
	for _, m := range a.chatSession.Messages() {
		switch m.Role {
		case chat.RoleUser:
			b.WriteString(headerStyle.Render("Du: ") + m.Content + "\n")
		case chat.RoleAssistant:
			b.WriteString(greenStyle.Render("Assistent: ") + m.Content + "\n")
		default:
			b.WriteString(dimStyle.Render(m.Content) + "\n")
		}
	}
	if a.chatUI.waiting {
		b.WriteString(a.chatUI.spinner.View() + dimStyle.Render(" tenker...") + "\n")
	}
	b.WriteString(a.chatUI.input.View())
	b.WriteString("\n" + dimStyle.Render("enter send  esc lukk"))
	return modalStyle.Render(b.String())
}
