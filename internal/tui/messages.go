package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/brreg"
	"github.com/kontali/konsole/internal/store"
)

// pollMsg fires a view's refresh timer. Messages carrying a stale
// sequence number or a view the operator has left are dropped.
type pollMsg struct {
	view appState
	seq  int
}

// errMsg carries any failed command's error to the status line.
type errMsg struct{ error }

// statusMsg replaces the status line with an informational message.
type statusMsg string

// savedViewMsg restores the view the operator last worked in.
type savedViewMsg appState

// dashboard
type metricsMsg api.DashboardMetrics
type clientStatusMsg []api.ClientSummary
type verificationMsg []api.VerificationItem
type recentClientsMsg []store.RecentClient

// review queue
type reviewItemsMsg []api.ReviewItem
type reviewStatsMsg api.QueueStats

// reviewActedMsg reports a completed review mutation.
type reviewActedMsg struct {
	ID     string
	Action string // approved | corrected | rejected
}

// bank reconciliation
type transactionsMsg []api.BankTransaction
type bankStatsMsg api.ReconciliationStats
type suggestionsMsg []api.MatchSuggestion
type importDoneMsg struct{ Result api.ImportResult }
type autoMatchDoneMsg struct{ Result api.AutoMatchResult }
type matchConfirmedMsg struct{ TxID string }
type savedFiltersMsg []store.SavedFilter

// contacts
type contactsMsg []api.Contact

// contactsChangedMsg reports a completed contact mutation; the list is
// re-fetched on arrival.
type contactsChangedMsg string
type brregMsg brreg.Unit
type bulkImportDoneMsg struct{ Result api.BulkImportResult }
type templateSavedMsg string

// accounts
type accountsMsg []api.Account
type accountsChangedMsg string

// reports
type reportSavedMsg string

// chat
type chatReplyMsg struct{ Reply string }
type chatFailedMsg struct{ error }

// cmd wraps a fetch into a tea.Cmd, converting failure to errMsg.
func cmd[T tea.Msg](fetch func() (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fetch()
		if err != nil {
			return errMsg{err}
		}
		return v
	}
}

// --- loaders ---
//
// Commands capture the client pointer when they are built, on the update
// loop. Switching client or saving settings installs a fresh pointer, so
// an in-flight command keeps talking to the client it started with.

func (a *App) loadMetrics() tea.Cmd {
	client := a.api
	return cmd(func() (metricsMsg, error) {
		m, err := client.DashboardMetrics(a.ctx)
		return metricsMsg(m), err
	})
}

func (a *App) loadClientStatus() tea.Cmd {
	client := a.api
	return cmd(func() (clientStatusMsg, error) {
		s, err := client.DashboardStatus(a.ctx)
		return clientStatusMsg(s.Clients), err
	})
}

func (a *App) loadVerification() tea.Cmd {
	client := a.api
	return cmd(func() (verificationMsg, error) {
		v, err := client.DashboardVerification(a.ctx)
		return verificationMsg(v), err
	})
}

func (a *App) loadRecentClients() tea.Cmd {
	return cmd(func() (recentClientsMsg, error) {
		if a.repos.Clients == nil {
			return nil, nil
		}
		rc, err := a.repos.Clients.Recent(a.ctx, 10)
		return recentClientsMsg(rc), err
	})
}

func (a *App) loadActiveView() tea.Cmd {
	return cmd(func() (savedViewMsg, error) {
		if a.repos.Prefs == nil {
			return savedViewMsg(viewDashboard), nil
		}
		v, err := a.repos.Prefs.Get(a.ctx, "active_view", string(viewDashboard))
		return savedViewMsg(v), err
	})
}

// persistViewCmd remembers the active view for the next start.
func (a *App) persistViewCmd(v appState) tea.Cmd {
	if a.repos.Prefs == nil {
		return nil
	}
	return func() tea.Msg {
		if err := a.repos.Prefs.Set(a.ctx, "active_view", string(v)); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (a *App) loadReviewItems() tea.Cmd {
	client, filter := a.api, a.review.filter
	return cmd(func() (reviewItemsMsg, error) {
		items, err := client.ReviewQueue(a.ctx, filter)
		return reviewItemsMsg(items), err
	})
}

func (a *App) loadReviewStats() tea.Cmd {
	client := a.api
	return cmd(func() (reviewStatsMsg, error) {
		s, err := client.ReviewStats(a.ctx)
		return reviewStatsMsg(s), err
	})
}

func (a *App) loadTransactions() tea.Cmd {
	client, filter := a.api, a.bank.filter
	return cmd(func() (transactionsMsg, error) {
		txs, err := client.ListTransactions(a.ctx, filter)
		return transactionsMsg(txs), err
	})
}

func (a *App) loadBankStats() tea.Cmd {
	client := a.api
	return cmd(func() (bankStatsMsg, error) {
		s, err := client.ReconciliationStats(a.ctx)
		return bankStatsMsg(s), err
	})
}

func (a *App) loadSavedFilters() tea.Cmd {
	return cmd(func() (savedFiltersMsg, error) {
		if a.repos.Filters == nil {
			return nil, nil
		}
		fs, err := a.repos.Filters.ListByView(a.ctx, string(viewBank))
		return savedFiltersMsg(fs), err
	})
}

func (a *App) loadContacts() tea.Cmd {
	client, kind, search := a.api, a.contacts.kind, a.contacts.search.Value()
	return cmd(func() (contactsMsg, error) {
		cs, err := client.ListContacts(a.ctx, kind, search)
		return contactsMsg(cs), err
	})
}

func (a *App) loadAccounts() tea.Cmd {
	client, search, accountType := a.api, a.accounts.search.Value(), a.accounts.typeFilter
	return cmd(func() (accountsMsg, error) {
		as, err := client.ListAccounts(a.ctx, search, accountType)
		return accountsMsg(as), err
	})
}
