// Package tui is the terminal console: master lists, detail panels and
// mutation actions over the Kontali backend. Every view follows the same
// shape the product does everywhere: fetch on entry, render
// loading/error/empty/data, POST a mutation, re-fetch.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/brreg"
	"github.com/kontali/konsole/internal/chat"
	"github.com/kontali/konsole/internal/config"
	"github.com/kontali/konsole/internal/store"
)

type appState string

const (
	viewDashboard appState = "dashboard"
	viewReview    appState = "review"
	viewBank      appState = "bank"
	viewContacts  appState = "contacts"
	viewAccounts  appState = "accounts"
	viewReports   appState = "reports"
	viewSettings  appState = "settings"
)

type modalState string

const (
	modalNone        modalState = ""
	modalChat        modalState = "chat"
	modalPicker      modalState = "clientPicker"
	modalApprove     modalState = "approveNote"
	modalReject      modalState = "rejectReason"
	modalCorrect     modalState = "correctEntries"
	modalSuggestions modalState = "matchSuggestions"
	modalImport      modalState = "importFile"
	modalContactForm modalState = "contactForm"
	modalBulkImport  modalState = "bulkImport"
	modalAccountForm modalState = "accountForm"
)

// Repos groups the local preference store handles.
type Repos struct {
	Prefs   *store.PrefRepo
	Filters *store.FilterRepo
	Clients *store.ClientRepo
}

// App ties together the views.
type App struct {
	ctx   context.Context
	cfg   config.Config
	api   *api.Client
	brreg *brreg.Client
	repos Repos

	chatProvider chat.Provider
	chatSession  *chat.Session

	state   appState
	modal   modalState
	status  string
	isError bool
	pollSeq int

	dash     dashState
	review   reviewState
	bank     bankState
	contacts contactState
	accounts accountState
	reports  reportState
	chatUI   chatState
	picker   pickerState
	settings settingsState
}

// New builds the app. The context is used for every backend call.
func New(ctx context.Context, cfg config.Config, client *api.Client, reg *brreg.Client, provider chat.Provider, repos Repos) *App {
	a := &App{
		ctx:          ctx,
		cfg:          cfg,
		api:          client,
		brreg:        reg,
		repos:        repos,
		chatProvider: provider,
		chatSession:  chat.NewSession("Hei! Jeg er Kontali-assistenten. Spør meg om bilag, bank eller rapporter."),
		state:        viewDashboard,
	}

	a.chatUI.input = textinput.New()
	a.chatUI.input.Placeholder = "Skriv en melding..."
	a.chatUI.input.CharLimit = 500
	a.chatUI.spinner = spinner.New()
	a.chatUI.spinner.Spinner = spinner.Dot

	a.picker.input = textinput.New()
	a.picker.input.Placeholder = "Søk klient..."

	a.contacts.kind = api.ContactSuppliers
	a.contacts.selection = NewMultiSelect[string]()
	a.contacts.search = textinput.New()
	a.contacts.search.Placeholder = "Søk navn eller org.nr..."

	a.accounts.search = textinput.New()
	a.accounts.search.Placeholder = "Søk kontoplan..."

	a.bank.importInput = textinput.New()
	a.bank.importInput.Placeholder = "sti/til/kontoutskrift.csv"

	a.reports.format = api.FormatPDF

	a.settings = newSettingsState(cfg)

	return a
}

func (a *App) Init() tea.Cmd {
	a.dash.loading = true
	return tea.Batch(
		a.loadMetrics(),
		a.loadClientStatus(),
		a.loadVerification(),
		a.loadRecentClients(),
		a.loadActiveView(),
		a.schedulePoll(),
	)
}

// SetStatus replaces the status line with an informational message.
func (a *App) SetStatus(msg string) {
	a.status = msg
	a.isError = false
}

// setError surfaces a failure on the status line. It never blocks other
// views or fetches; a failed stats call leaves the list rendering.
func (a *App) setError(err error) {
	if err == nil {
		return
	}
	a.status = err.Error()
	a.isError = true
}

// --- polling ---

// pollInterval returns the refresh interval for a view, zero for views
// that do not poll.
func (a *App) pollInterval(v appState) time.Duration {
	switch v {
	case viewReview:
		return time.Duration(a.cfg.Poll.QueueSeconds) * time.Second
	case viewDashboard:
		return time.Duration(a.cfg.Poll.DashboardSeconds) * time.Second
	case viewBank:
		return time.Duration(a.cfg.Poll.BankSeconds) * time.Second
	}
	return 0
}

// schedulePoll arms the refresh timer for the active view. The sequence
// number invalidates timers from views the operator has left.
func (a *App) schedulePoll() tea.Cmd {
	iv := a.pollInterval(a.state)
	if iv <= 0 {
		return nil
	}
	view, seq := a.state, a.pollSeq
	return tea.Tick(iv, func(time.Time) tea.Msg {
		return pollMsg{view: view, seq: seq}
	})
}

// refreshCmds re-fetches the active view's collections. List and stats
// fetches are independent and unsequenced; last write wins.
func (a *App) refreshCmds() tea.Cmd {
	switch a.state {
	case viewDashboard:
		return tea.Batch(a.loadMetrics(), a.loadClientStatus(), a.loadVerification())
	case viewReview:
		return tea.Batch(a.loadReviewItems(), a.loadReviewStats())
	case viewBank:
		return tea.Batch(a.loadTransactions(), a.loadBankStats())
	}
	return nil
}

// switchView changes the active view, kicks its initial fetches and arms
// its poll timer. The previous view's timer dies via the sequence bump.
func (a *App) switchView(v appState) tea.Cmd {
	if a.state == v {
		return nil
	}
	a.state = v
	a.pollSeq++
	a.status = ""

	var load tea.Cmd
	switch v {
	case viewDashboard:
		a.dash.loading = true
		load = tea.Batch(a.loadMetrics(), a.loadClientStatus(), a.loadVerification())
	case viewReview:
		a.review.loading = true
		load = tea.Batch(a.loadReviewItems(), a.loadReviewStats())
	case viewBank:
		a.bank.loading = true
		load = tea.Batch(a.loadTransactions(), a.loadBankStats(), a.loadSavedFilters())
	case viewContacts:
		a.contacts.loading = true
		load = a.loadContacts()
	case viewAccounts:
		a.accounts.loading = true
		load = a.loadAccounts()
	}
	return tea.Batch(load, a.persistViewCmd(v), a.schedulePoll())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handleViewKey(m)

	case pollMsg:
		if m.seq != a.pollSeq || m.view != a.state {
			return a, nil // stale timer from a view the operator left
		}
		return a, tea.Batch(a.refreshCmds(), a.schedulePoll())

	case spinner.TickMsg:
		if a.chatUI.waiting {
			var cmd tea.Cmd
			a.chatUI.spinner, cmd = a.chatUI.spinner.Update(m)
			return a, cmd
		}
		return a, nil

	case errMsg:
		a.setError(m.error)
		a.dash.loading = false
		a.review.loading = false
		a.bank.loading = false
		a.contacts.loading = false
		a.accounts.loading = false
		a.chatUI.waiting = false
		return a, nil

	case statusMsg:
		a.SetStatus(string(m))
		return a, nil
	}

	if model, cmd, handled := a.updateData(msg); handled {
		return model, cmd
	}
	return a, nil
}

// updateData routes per-view data messages.
func (a *App) updateData(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch m := msg.(type) {
	case savedViewMsg:
		// restore last session's view; valid states only
		switch v := appState(m); v {
		case viewReview, viewBank, viewContacts, viewAccounts, viewReports, viewSettings:
			return a, a.switchView(v), true
		}

	case metricsMsg:
		a.dash.metrics = api.DashboardMetrics(m)
		a.dash.loading = false
	case clientStatusMsg:
		a.dash.clients = []api.ClientSummary(m)
		if a.dash.cursor >= len(a.dash.clients) {
			a.dash.cursor = 0
		}
	case verificationMsg:
		a.dash.verification = []api.VerificationItem(m)
	case recentClientsMsg:
		a.picker.recent = []store.RecentClient(m)

	case reviewItemsMsg:
		a.review.items = []api.ReviewItem(m)
		a.review.loading = false
		if a.review.cursor >= len(a.review.items) {
			a.review.cursor = 0
		}
	case reviewStatsMsg:
		a.review.stats = api.QueueStats(m)
	case reviewActedMsg:
		cmd := a.applyReviewAction(m)
		return a, cmd, true

	case transactionsMsg:
		a.bank.txs = []api.BankTransaction(m)
		a.bank.loading = false
		if a.bank.cursor >= len(a.bank.txs) {
			a.bank.cursor = 0
		}
	case bankStatsMsg:
		a.bank.stats = api.ReconciliationStats(m)
	case suggestionsMsg:
		a.bank.suggestions = []api.MatchSuggestion(m)
		a.bank.sugCursor = 0
		a.modal = modalSuggestions
	case importDoneMsg:
		cmd := a.applyImportDone(m)
		return a, cmd, true
	case autoMatchDoneMsg:
		a.SetStatus(fmtAutoMatch(m.Result))
		return a, tea.Batch(a.loadTransactions(), a.loadBankStats()), true
	case matchConfirmedMsg:
		cmd := a.applyMatchConfirmed(m)
		return a, cmd, true

	case contactsMsg:
		a.contacts.items = []api.Contact(m)
		a.contacts.loading = false
		if a.contacts.cursor >= len(a.contacts.items) {
			a.contacts.cursor = 0
		}
	case contactsChangedMsg:
		a.SetStatus(string(m))
		return a, a.loadContacts(), true
	case brregMsg:
		a.applyBrregUnit(brreg.Unit(m))
	case bulkImportDoneMsg:
		a.SetStatus(fmtBulkImport(m.Result))
		return a, a.loadContacts(), true
	case templateSavedMsg:
		a.SetStatus("Mal lagret: " + string(m))

	case accountsMsg:
		a.accounts.items = []api.Account(m)
		a.accounts.loading = false
		if a.accounts.cursor >= len(a.accounts.items) {
			a.accounts.cursor = 0
		}
	case accountsChangedMsg:
		a.SetStatus(string(m))
		return a, a.loadAccounts(), true

	case reportSavedMsg:
		a.SetStatus("Rapport lagret: " + string(m))

	case chatReplyMsg:
		a.chatUI.waiting = false
		a.chatSession.AppendAssistant(m.Reply)

	case chatFailedMsg:
		a.chatUI.waiting = false
		a.setError(m.error)

	case savedFiltersMsg:
		a.bank.savedFilters = []store.SavedFilter(m)

	default:
		return a, nil, false
	}
	return a, nil, true
}

// handleViewKey handles keys when no modal is open.
func (a *App) handleViewKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	// an in-view text input with focus gets the key first
	if a.state == viewSettings && a.settings.editing {
		return a.handleSettingsKey(m)
	}
	if cmd, handled := a.handleFocusedInput(m); handled {
		return a, cmd
	}

	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "g":
		return a, a.switchView(viewDashboard)
	case "r":
		return a, a.switchView(viewReview)
	case "b":
		return a, a.switchView(viewBank)
	case "o":
		return a, a.switchView(viewContacts)
	case "k":
		return a, a.switchView(viewAccounts)
	case "p":
		return a, a.switchView(viewReports)
	case "s":
		return a, a.switchView(viewSettings)
	case "c":
		a.openChat()
		return a, tea.Batch(textinput.Blink, a.chatUI.spinner.Tick)
	case "j":
		a.openPicker()
		return a, textinput.Blink
	}

	switch a.state {
	case viewDashboard:
		return a.handleDashboardKey(m)
	case viewReview:
		return a.handleReviewKey(m)
	case viewBank:
		return a.handleBankKey(m)
	case viewContacts:
		return a.handleContactsKey(m)
	case viewAccounts:
		return a.handleAccountsKey(m)
	case viewReports:
		return a.handleReportsKey(m)
	case viewSettings:
		return a.handleSettingsKey(m)
	}
	return a, nil
}

// handleFocusedInput gives an in-view text input first crack at the key.
func (a *App) handleFocusedInput(m tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case a.state == viewContacts && a.contacts.search.Focused():
		return a.handleContactSearchKey(m), true
	case a.state == viewAccounts && a.accounts.search.Focused():
		return a.handleAccountSearchKey(m), true
	}
	return nil, false
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewReview:
		body = a.renderReview()
	case viewBank:
		body = a.renderBank()
	case viewContacts:
		body = a.renderContacts()
	case viewAccounts:
		body = a.renderAccounts()
	case viewReports:
		body = a.renderReports()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		line := a.status
		if a.isError {
			line = errStyle.Render(line)
		} else {
			line = dimStyle.Render(line)
		}
		body += "\n" + line
	}
	return body
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalChat:
		return a.renderChatModal()
	case modalPicker:
		return a.renderPickerModal()
	case modalApprove, modalReject:
		return a.renderNoteModal()
	case modalCorrect:
		return a.renderCorrectModal()
	case modalSuggestions:
		return a.renderSuggestionsModal()
	case modalImport:
		return a.renderImportModal()
	case modalContactForm:
		return a.renderContactFormModal()
	case modalBulkImport:
		return a.renderBulkImportModal()
	case modalAccountForm:
		return a.renderAccountFormModal()
	}
	return ""
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalChat:
		return a.handleChatKey(m)
	case modalPicker:
		return a.handlePickerKey(m)
	case modalApprove, modalReject:
		return a.handleNoteKey(m)
	case modalCorrect:
		return a.handleCorrectKey(m)
	case modalSuggestions:
		return a.handleSuggestionsKey(m)
	case modalImport:
		return a.handleImportKey(m)
	case modalContactForm:
		return a.handleContactFormKey(m)
	case modalBulkImport:
		return a.handleBulkImportKey(m)
	case modalAccountForm:
		return a.handleAccountFormKey(m)
	}
	a.modal = modalNone
	return a, nil
}
