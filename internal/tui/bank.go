package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/status"
	"github.com/kontali/konsole/internal/store"
)

type bankState struct {
	txs          []api.BankTransaction
	stats        api.ReconciliationStats
	suggestions  []api.MatchSuggestion
	cursor       int
	sugCursor    int
	filter       string // "" = all
	loading      bool
	importInput  textinput.Model
	savedFilters []store.SavedFilter
}

var bankFilters = []string{"", api.TxUnmatched, api.TxMatched, api.TxReviewed, api.TxIgnored}

func (a *App) currentTransaction() *api.BankTransaction {
	if a.bank.cursor < 0 || a.bank.cursor >= len(a.bank.txs) {
		return nil
	}
	return &a.bank.txs[a.bank.cursor]
}

func (a *App) handleBankKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := m.String()
	switch key {
	case "up":
		if a.bank.cursor > 0 {
			a.bank.cursor--
		}
	case "down":
		if a.bank.cursor < len(a.bank.txs)-1 {
			a.bank.cursor++
		}
	case "enter":
		if tx := a.currentTransaction(); tx != nil {
			return a, a.suggestionsCmd(tx.ID)
		}
	case "i":
		a.modal = modalImport
		a.bank.importInput.SetValue("")
		a.bank.importInput.Focus()
		return a, textinput.Blink
	case "m":
		a.SetStatus("Kjører auto-match...")
		return a, a.autoMatchCmd()
	case "f":
		a.bank.filter = cycle(bankFilters, a.bank.filter)
		a.bank.loading = true
		return a, a.loadTransactions()
	case "F":
		return a, a.saveFilterCmd()
	case "X":
		return a, a.deleteFilterCmd()
	case "R":
		a.bank.loading = true
		return a, tea.Batch(a.loadTransactions(), a.loadBankStats())
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(a.bank.savedFilters) {
		a.bank.filter = a.bank.savedFilters[n-1].Query
		a.bank.loading = true
		return a, a.loadTransactions()
	}
	return a, nil
}

func (a *App) handleSuggestionsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
	case "up":
		if a.bank.sugCursor > 0 {
			a.bank.sugCursor--
		}
	case "down":
		if a.bank.sugCursor < len(a.bank.suggestions)-1 {
			a.bank.sugCursor++
		}
	case "enter":
		tx := a.currentTransaction()
		if tx == nil || a.bank.sugCursor >= len(a.bank.suggestions) {
			a.modal = modalNone
			return a, nil
		}
		s := a.bank.suggestions[a.bank.sugCursor]
		return a, a.confirmMatchCmd(tx.ID, s.InvoiceID, s.InvoiceType)
	}
	return a, nil
}

func (a *App) handleImportKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		return a, nil
	case "enter":
		path := strings.TrimSpace(a.bank.importInput.Value())
		if path == "" {
			return a, nil
		}
		a.modal = modalNone
		a.SetStatus("Importerer " + filepath.Base(path) + "...")
		return a, a.importCmd(path)
	}
	var cmd tea.Cmd
	a.bank.importInput, cmd = a.bank.importInput.Update(m)
	return a, cmd
}

// --- commands ---

func (a *App) suggestionsCmd(txID string) tea.Cmd {
	client := a.api
	return cmd(func() (suggestionsMsg, error) {
		sugs, err := client.MatchSuggestions(a.ctx, txID)
		return suggestionsMsg(sugs), err
	})
}

func (a *App) importCmd(path string) tea.Cmd {
	client := a.api
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return errMsg{fmt.Errorf("åpne %s: %w", path, err)}
		}
		defer f.Close()
		res, err := client.ImportBankFile(a.ctx, filepath.Base(path), f)
		if err != nil {
			return errMsg{err}
		}
		return importDoneMsg{Result: res}
	}
}

func (a *App) autoMatchCmd() tea.Cmd {
	client := a.api
	return func() tea.Msg {
		res, err := client.AutoMatch(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return autoMatchDoneMsg{Result: res}
	}
}

func (a *App) confirmMatchCmd(txID, invoiceID, invoiceType string) tea.Cmd {
	client := a.api
	return func() tea.Msg {
		if err := client.ConfirmMatch(a.ctx, txID, invoiceID, invoiceType); err != nil {
			return errMsg{err}
		}
		return matchConfirmedMsg{TxID: txID}
	}
}

func (a *App) saveFilterCmd() tea.Cmd {
	if a.repos.Filters == nil || a.bank.filter == "" {
		return nil
	}
	f := store.SavedFilter{
		ID:    uuid.NewString(),
		View:  string(viewBank),
		Name:  a.bank.filter,
		Query: a.bank.filter,
	}
	f.CreatedAt = store.Now()
	return func() tea.Msg {
		if err := a.repos.Filters.Save(a.ctx, f); err != nil {
			return errMsg{err}
		}
		return statusMsg("Filter lagret: " + f.Name)
	}
}

func (a *App) deleteFilterCmd() tea.Cmd {
	if a.repos.Filters == nil {
		return nil
	}
	for _, f := range a.bank.savedFilters {
		if f.Query == a.bank.filter {
			id, name := f.ID, f.Name
			return func() tea.Msg {
				if err := a.repos.Filters.Delete(a.ctx, id); err != nil {
					return errMsg{err}
				}
				return statusMsg("Filter slettet: " + name)
			}
		}
	}
	return nil
}

// applyImportDone reports the import outcome and re-fetches exactly the
// transaction list and the reconciliation stats; nothing else refreshes.
func (a *App) applyImportDone(m importDoneMsg) tea.Cmd {
	a.SetStatus(fmt.Sprintf("Importerte %d transaksjoner, %d auto-matchet (%.0f %% match)",
		m.Result.TransactionsImported, m.Result.AutoMatched, m.Result.MatchRate))
	return tea.Batch(a.loadTransactions(), a.loadBankStats())
}

// applyMatchConfirmed marks the transaction matched locally, closes the
// suggestion modal and re-fetches. A failed confirm never reaches here;
// the errMsg path leaves the row and the modal as they were.
func (a *App) applyMatchConfirmed(m matchConfirmedMsg) tea.Cmd {
	for i := range a.bank.txs {
		if a.bank.txs[i].ID == m.TxID {
			a.bank.txs[i].Status = api.TxMatched
			break
		}
	}
	a.modal = modalNone
	a.SetStatus("Transaksjon matchet")
	return tea.Batch(a.loadTransactions(), a.loadBankStats())
}

func fmtAutoMatch(r api.AutoMatchResult) string {
	return fmt.Sprintf("Auto-match: %d matchet, %d gjenstår (%.0f %% match)",
		r.Matched, r.Remaining, r.MatchRate)
}

// --- rendering ---

func txStatusStyle(s string) string {
	switch s {
	case api.TxMatched:
		return greenStyle.Render(s)
	case api.TxReviewed:
		return yellowStyle.Render(s)
	case api.TxIgnored:
		return dimStyle.Render(s)
	default:
		return redStyle.Render(s)
	}
}

func (a *App) renderBank() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Bankavstemming"))
	b.WriteString("\n\n")

	s := a.bank.stats
	b.WriteString(fmt.Sprintf("Totalt: %d   Matchet: %d   %s Umatchet: %d   Behandlet: %d   ",
		s.Total, s.Matched, lightDot(status.CountLight(s.Unmatched)), s.Unmatched, s.Reviewed))
	b.WriteString(progressBar(s.MatchRate, 20))
	b.WriteString(fmt.Sprintf(" %.0f%%", s.MatchRate))
	if a.bank.filter != "" {
		b.WriteString(dimStyle.Render("   filter: " + a.bank.filter))
	}
	b.WriteString("\n\n")

	switch {
	case a.bank.loading:
		b.WriteString(dimStyle.Render("Henter transaksjoner...\n"))
	case len(a.bank.txs) == 0:
		b.WriteString(dimStyle.Render("Ingen transaksjoner.\n"))
	}

	for i, tx := range a.bank.txs {
		prefix := "  "
		if i == a.bank.cursor {
			prefix = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s %10.2f %s %-28s %-20s %s %s\n",
			prefix, dimStyle.Render(tx.Date), tx.Amount, a.cfg.UI.CurrencySymbol,
			truncate(tx.Description, 28), truncate(tx.Counterparty, 20),
			txStatusStyle(tx.Status), kidRef(tx.KIDRef)))
	}

	if len(a.bank.savedFilters) > 0 {
		b.WriteString("\n" + dimStyle.Render("Lagrede filtre: "))
		for i, f := range a.bank.savedFilters {
			b.WriteString(dimStyle.Render(fmt.Sprintf("[%d] %s  ", i+1, f.Name)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ velg  enter forslag  i importer  m auto-match  f filter  F lagre filter  X slett filter  R oppdater"))
	return b.String()
}

func kidRef(kid string) string {
	if kid == "" {
		return ""
	}
	return dimStyle.Render("KID " + kid)
}

// truncate shortens s to at most n runes. Counting runes keeps ø/å and
// other multibyte names intact.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func (a *App) renderSuggestionsModal() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Matchforslag"))
	b.WriteString("\n")
	if len(a.bank.suggestions) == 0 {
		b.WriteString(dimStyle.Render("Ingen forslag for denne transaksjonen.\n"))
	}
	for i, s := range a.bank.suggestions {
		prefix := "  "
		if i == a.bank.sugCursor {
			prefix = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s %-10s %-22s %10.2f  %s\n",
			prefix, breakdownBadge(s.Confidence), s.InvoiceNumber,
			truncate(s.Counterparty, 22), s.Amount, dimStyle.Render(s.Reason)))
	}
	b.WriteString(dimStyle.Render("enter match  esc lukk"))
	return modalStyle.Render(b.String())
}

func (a *App) renderImportModal() string {
	body := headerStyle.Render("Importer kontoutskrift (CSV/XLSX)") + "\n" +
		a.bank.importInput.View() + "\n" +
		dimStyle.Render("enter importer  esc avbryt")
	return modalStyle.Render(body)
}
