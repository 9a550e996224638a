package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/chat"
	"github.com/kontali/konsole/internal/config"
	"github.com/kontali/konsole/internal/secrets"
)

type settingsState struct {
	baseURL     string
	clientID    string
	userID      string
	provider    string
	apiKey      string
	model       string
	downloadDir string
	pollQueue   int
	pollDash    int
	pollBank    int

	cursor  int
	input   textinput.Model
	editing bool
	dirty   bool
}

var settingsFields = []string{
	"Backend-URL", "Klient-ID", "Bruker-ID",
	"Chat-leverandør", "OpenAI-nøkkel", "Modell", "Nedlastingsmappe",
	"Poll kø (s)", "Poll oversikt (s)", "Poll bank (s)",
}

func newSettingsState(cfg config.Config) settingsState {
	return settingsState{
		baseURL:     cfg.API.BaseURL,
		clientID:    cfg.API.ClientID,
		userID:      cfg.API.UserID,
		provider:    cfg.LLM.Provider,
		model:       cfg.LLM.Model,
		downloadDir: cfg.UI.DownloadDir,
		pollQueue:   cfg.Poll.QueueSeconds,
		pollDash:    cfg.Poll.DashboardSeconds,
		pollBank:    cfg.Poll.BankSeconds,
	}
}

func (s *settingsState) fieldValue(field int) string {
	switch field {
	case 0:
		return s.baseURL
	case 1:
		return s.clientID
	case 2:
		return s.userID
	case 3:
		return s.provider
	case 4:
		return s.apiKey
	case 5:
		return s.model
	case 6:
		return s.downloadDir
	case 7:
		return strconv.Itoa(s.pollQueue)
	case 8:
		return strconv.Itoa(s.pollDash)
	default:
		return strconv.Itoa(s.pollBank)
	}
}

func (s *settingsState) setField(field int, raw string) {
	switch field {
	case 0:
		s.baseURL = raw
	case 1:
		s.clientID = raw
	case 2:
		s.userID = raw
	case 3:
		s.provider = raw
	case 4:
		s.apiKey = raw
	case 5:
		s.model = raw
	case 6:
		s.downloadDir = raw
	case 7:
		s.pollQueue = parseSeconds(raw, s.pollQueue)
	case 8:
		s.pollDash = parseSeconds(raw, s.pollDash)
	default:
		s.pollBank = parseSeconds(raw, s.pollBank)
	}
	s.dirty = true
}

func parseSeconds(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.settings
	if s.editing {
		switch m.String() {
		case "esc":
			s.editing = false
			return a, nil
		case "enter":
			s.setField(s.cursor, strings.TrimSpace(s.input.Value()))
			s.editing = false
			return a, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(m)
		return a, cmd
	}

	switch m.String() {
	case "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down":
		if s.cursor < len(settingsFields)-1 {
			s.cursor++
		}
	case "enter":
		// the provider field toggles instead of free-text editing
		if s.cursor == 3 {
			if s.provider == "openai" {
				s.provider = "backend"
			} else {
				s.provider = "openai"
			}
			s.dirty = true
			return a, nil
		}
		s.input = textinput.New()
		s.input.SetValue(s.fieldValue(s.cursor))
		if s.cursor == 4 {
			s.input.EchoMode = textinput.EchoPassword
		}
		s.input.Focus()
		s.editing = true
		return a, textinput.Blink
	case "ctrl+s":
		return a, a.saveSettings()
	}
	return a, nil
}

// saveSettings applies the edited values: config file for everything
// except the API key, which goes to the secret store only.
func (a *App) saveSettings() tea.Cmd {
	s := &a.settings

	a.cfg.API.BaseURL = s.baseURL
	a.cfg.API.ClientID = s.clientID
	a.cfg.API.UserID = s.userID
	a.cfg.LLM.Provider = s.provider
	a.cfg.LLM.Model = s.model
	a.cfg.UI.DownloadDir = s.downloadDir
	a.cfg.Poll.QueueSeconds = s.pollQueue
	a.cfg.Poll.DashboardSeconds = s.pollDash
	a.cfg.Poll.BankSeconds = s.pollBank

	if s.baseURL != a.api.BaseURL() || s.clientID != a.api.ClientID || s.userID != a.api.UserID {
		a.api = api.New(s.baseURL, s.clientID, s.userID)
	}

	// Rebuild the live provider so the toggle takes effect immediately,
	// not on the next start.
	switch s.provider {
	case "openai":
		if p, ok := a.chatProvider.(*chat.OpenAIProvider); ok {
			if s.apiKey != "" {
				p.SetAPIKey(s.apiKey)
			}
		} else {
			a.chatProvider = chat.NewOpenAIProvider(s.apiKey, s.model)
		}
	default:
		a.chatProvider = &chat.BackendProvider{Client: a.api}
	}

	cfg, key := a.cfg, s.apiKey
	s.dirty = false
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			return errMsg{err}
		}
		if key != "" {
			if err := secrets.Store("openai", key); err != nil {
				return errMsg{err}
			}
		}
		return statusMsg("Innstillinger lagret")
	}
}

func (a *App) renderSettings() string {
	s := a.settings
	var b strings.Builder
	b.WriteString(titleStyle.Render("Innstillinger"))
	b.WriteString("\n\n")
	for i, label := range settingsFields {
		prefix := "  "
		if i == s.cursor {
			prefix = "> "
		}
		if s.editing && i == s.cursor {
			b.WriteString(fmt.Sprintf("%s%-18s %s\n", prefix, label, s.input.View()))
			continue
		}
		val := s.fieldValue(i)
		if i == 4 && val != "" {
			val = strings.Repeat("*", len(val))
		}
		b.WriteString(fmt.Sprintf("%s%-18s %s\n", prefix, label, val))
	}
	if s.dirty {
		b.WriteString("\n" + yellowStyle.Render("Ulagrede endringer"))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ velg  enter rediger/bytt  ctrl+s lagre"))
	return b.String()
}
