package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/status"
)

type reviewState struct {
	items    []api.ReviewItem
	stats    api.QueueStats
	cursor   int
	filter   string // "" = all
	expanded bool
	loading  bool

	noteInput textinput.Model

	// correction editor
	entries     []api.BookingEntry
	entryCursor int
	entryField  int // 0 account, 1 account name, 2 debit, 3 credit
	editing     bool
	entryInput  textinput.Model
}

var reviewFilters = []string{"", api.ReviewPending, api.ReviewApproved, api.ReviewCorrected, api.ReviewRejected}

func (a *App) currentReviewItem() *api.ReviewItem {
	if a.review.cursor < 0 || a.review.cursor >= len(a.review.items) {
		return nil
	}
	return &a.review.items[a.review.cursor]
}

func (a *App) handleReviewKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up":
		if a.review.cursor > 0 {
			a.review.cursor--
		}
	case "down":
		if a.review.cursor < len(a.review.items)-1 {
			a.review.cursor++
		}
	case "enter":
		a.review.expanded = !a.review.expanded
	case "f":
		a.review.filter = cycle(reviewFilters, a.review.filter)
		a.review.loading = true
		return a, a.loadReviewItems()
	case "a":
		if a.currentReviewItem() != nil {
			a.openNoteModal(modalApprove)
			return a, textinput.Blink
		}
	case "x":
		if a.currentReviewItem() != nil {
			a.openNoteModal(modalReject)
			return a, textinput.Blink
		}
	case "e":
		if it := a.currentReviewItem(); it != nil {
			a.openCorrectModal(it)
			return a, textinput.Blink
		}
	case "R":
		a.review.loading = true
		return a, tea.Batch(a.loadReviewItems(), a.loadReviewStats())
	}
	return a, nil
}

// cycle advances through the filter ring.
func cycle(ring []string, current string) string {
	for i, v := range ring {
		if v == current {
			return ring[(i+1)%len(ring)]
		}
	}
	return ring[0]
}

func (a *App) openNoteModal(kind modalState) {
	a.modal = kind
	a.review.noteInput = textinput.New()
	if kind == modalReject {
		a.review.noteInput.Placeholder = "Begrunnelse..."
	} else {
		a.review.noteInput.Placeholder = "Notat (valgfritt)..."
	}
	a.review.noteInput.Focus()
}

func (a *App) openCorrectModal(it *api.ReviewItem) {
	a.modal = modalCorrect
	a.review.entries = make([]api.BookingEntry, len(it.BookingEntries))
	copy(a.review.entries, it.BookingEntries)
	if len(a.review.entries) == 0 {
		a.review.entries = []api.BookingEntry{{}}
	}
	a.review.entryCursor = 0
	a.review.entryField = 0
	a.review.editing = false
	a.review.entryInput = textinput.New()
}

// handleNoteKey drives the approve/reject note modal.
func (a *App) handleNoteKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		return a, nil
	case "enter":
		it := a.currentReviewItem()
		if it == nil {
			a.modal = modalNone
			return a, nil
		}
		note := strings.TrimSpace(a.review.noteInput.Value())
		kind := a.modal
		a.modal = modalNone
		if kind == modalApprove {
			return a, a.approveCmd(it.ID, note)
		}
		return a, a.rejectCmd(it.ID, note)
	}
	var cmd tea.Cmd
	a.review.noteInput, cmd = a.review.noteInput.Update(m)
	return a, cmd
}

// handleCorrectKey drives the booking entry editor.
func (a *App) handleCorrectKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := &a.review
	if r.editing {
		switch m.String() {
		case "esc":
			r.editing = false
			return a, nil
		case "enter":
			a.commitEntryField(r.entryInput.Value())
			r.editing = false
			return a, nil
		}
		var cmd tea.Cmd
		r.entryInput, cmd = r.entryInput.Update(m)
		return a, cmd
	}

	switch m.String() {
	case "esc":
		a.modal = modalNone
	case "up":
		if r.entryCursor > 0 {
			r.entryCursor--
		}
	case "down":
		if r.entryCursor < len(r.entries)-1 {
			r.entryCursor++
		}
	case "left":
		if r.entryField > 0 {
			r.entryField--
		}
	case "right":
		if r.entryField < 3 {
			r.entryField++
		}
	case "enter":
		r.entryInput = textinput.New()
		r.entryInput.SetValue(a.entryFieldValue())
		r.entryInput.Focus()
		r.editing = true
		return a, textinput.Blink
	case "n":
		r.entries = append(r.entries, api.BookingEntry{})
		r.entryCursor = len(r.entries) - 1
	case "d":
		if len(r.entries) > 1 {
			r.entries = append(r.entries[:r.entryCursor], r.entries[r.entryCursor+1:]...)
			if r.entryCursor >= len(r.entries) {
				r.entryCursor = len(r.entries) - 1
			}
		}
	case "ctrl+s":
		if !entriesBalanced(r.entries) {
			a.setError(fmt.Errorf("bilaget balanserer ikke"))
			return a, nil
		}
		it := a.currentReviewItem()
		if it == nil {
			a.modal = modalNone
			return a, nil
		}
		entries := make([]api.BookingEntry, len(r.entries))
		copy(entries, r.entries)
		a.modal = modalNone
		return a, a.correctCmd(it.ID, entries)
	}
	return a, nil
}

func (a *App) entryFieldValue() string {
	e := a.review.entries[a.review.entryCursor]
	switch a.review.entryField {
	case 0:
		return e.Account
	case 1:
		return e.AccountName
	case 2:
		return formatAmountField(e.Debit)
	default:
		return formatAmountField(e.Credit)
	}
}

func (a *App) commitEntryField(raw string) {
	e := &a.review.entries[a.review.entryCursor]
	raw = strings.TrimSpace(raw)
	switch a.review.entryField {
	case 0:
		e.Account = raw
	case 1:
		e.AccountName = raw
	case 2:
		e.Debit = parseAmountField(raw)
	case 3:
		e.Credit = parseAmountField(raw)
	}
}

func formatAmountField(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parseAmountField(raw string) float64 {
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func entriesBalanced(entries []api.BookingEntry) bool {
	in := make([]status.Entry, len(entries))
	for i, e := range entries {
		in[i] = status.Entry{Debit: e.Debit, Credit: e.Credit}
	}
	return status.Balanced(in)
}

// --- mutation commands ---

func (a *App) approveCmd(id, note string) tea.Cmd {
	client := a.api
	return func() tea.Msg {
		if err := client.ApproveReview(a.ctx, id, note); err != nil {
			return errMsg{err}
		}
		return reviewActedMsg{ID: id, Action: api.ReviewApproved}
	}
}

func (a *App) rejectCmd(id, reason string) tea.Cmd {
	client := a.api
	return func() tea.Msg {
		if err := client.RejectReview(a.ctx, id, reason); err != nil {
			return errMsg{err}
		}
		return reviewActedMsg{ID: id, Action: api.ReviewRejected}
	}
}

func (a *App) correctCmd(id string, entries []api.BookingEntry) tea.Cmd {
	client := a.api
	return func() tea.Msg {
		if err := client.CorrectReview(a.ctx, id, entries, ""); err != nil {
			return errMsg{err}
		}
		return reviewActedMsg{ID: id, Action: api.ReviewCorrected}
	}
}

// applyReviewAction flips the acted item in place, then re-fetches the
// list and the queue counters. Only the target item changes locally;
// siblings stay untouched until the fresh list lands.
func (a *App) applyReviewAction(m reviewActedMsg) tea.Cmd {
	for i := range a.review.items {
		if a.review.items[i].ID == m.ID {
			a.review.items[i].Status = m.Action
			a.review.items[i].ReviewedBy = a.cfg.API.UserID
			break
		}
	}
	switch m.Action {
	case api.ReviewApproved:
		a.SetStatus("Bilag godkjent")
	case api.ReviewCorrected:
		a.SetStatus("Bilag korrigert")
	case api.ReviewRejected:
		a.SetStatus("Bilag avvist")
	}
	return tea.Batch(a.loadReviewItems(), a.loadReviewStats())
}

// --- rendering ---

func reviewStatusStyle(s string) string {
	switch s {
	case api.ReviewApproved:
		return greenStyle.Render(s)
	case api.ReviewCorrected:
		return yellowStyle.Render(s)
	case api.ReviewRejected:
		return redStyle.Render(s)
	default:
		return dimStyle.Render(s)
	}
}

func (a *App) renderReview() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Gjennomgangskø"))
	b.WriteString("\n\n")

	s := a.review.stats
	b.WriteString(fmt.Sprintf("%s Venter: %d   Godkjent: %d   Korrigert: %d   Avvist: %d",
		lightDot(status.CountLight(s.Pending)), s.Pending, s.Approved, s.Corrected, s.Rejected))
	if a.review.filter != "" {
		b.WriteString(dimStyle.Render("   filter: " + a.review.filter))
	}
	b.WriteString("\n\n")

	switch {
	case a.review.loading:
		b.WriteString(dimStyle.Render("Henter kø...\n"))
	case len(a.review.items) == 0:
		b.WriteString(dimStyle.Render("Ingen bilag i køen.\n"))
	}

	for i, it := range a.review.items {
		prefix := "  "
		if i == a.review.cursor {
			prefix = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s %-25s %10.2f %s  %-10s %s %s\n",
			prefix, confidenceBadge(it.Confidence), it.Supplier, it.Amount, a.cfg.UI.CurrencySymbol,
			it.InvoiceNumber, dimStyle.Render(it.Date), reviewStatusStyle(it.Status)))
		if a.review.expanded && i == a.review.cursor {
			b.WriteString(a.renderReviewDetail(it))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ velg  enter detaljer  a godkjenn  e korriger  x avvis  f filter  R oppdater"))
	return b.String()
}

func (a *App) renderReviewDetail(it api.ReviewItem) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("      Konteringsforslag  ") + breakdownBadge(it.Confidence) + "\n")
	for _, e := range it.BookingEntries {
		b.WriteString(fmt.Sprintf("      %-6s %-24s %10s %10s\n",
			e.Account, e.AccountName, formatAmountField(e.Debit), formatAmountField(e.Credit)))
	}
	if !entriesBalanced(it.BookingEntries) {
		b.WriteString("      " + redStyle.Render("Ubalansert kontering") + "\n")
	}
	for _, p := range it.SuggestedPatterns {
		b.WriteString(dimStyle.Render("      mønster: "+p) + "\n")
	}
	if it.ReviewedBy != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("      behandlet av %s %s", it.ReviewedBy, it.ReviewedAt)) + "\n")
	}
	return b.String()
}

func (a *App) renderNoteModal() string {
	title := "Godkjenn bilag"
	if a.modal == modalReject {
		title = "Avvis bilag"
	}
	body := headerStyle.Render(title) + "\n" + a.review.noteInput.View() + "\n" +
		dimStyle.Render("enter bekreft  esc avbryt")
	return modalStyle.Render(body)
}

func (a *App) renderCorrectModal() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Korriger kontering"))
	b.WriteString("\n")
	fields := []string{"konto", "navn", "debet", "kredit"}
	for i, e := range a.review.entries {
		row := fmt.Sprintf("%-6s %-24s %10s %10s",
			e.Account, e.AccountName, formatAmountField(e.Debit), formatAmountField(e.Credit))
		if i == a.review.entryCursor {
			row = "> " + row + dimStyle.Render("  ["+fields[a.review.entryField]+"]")
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	if a.review.editing {
		b.WriteString(a.review.entryInput.View() + "\n")
	}
	if !entriesBalanced(a.review.entries) {
		b.WriteString(redStyle.Render("Ubalansert: debet og kredit må stemme") + "\n")
	}
	b.WriteString(dimStyle.Render("piler velg felt  enter rediger  n ny linje  d slett  ctrl+s lagre  esc avbryt"))
	return modalStyle.Render(b.String())
}
