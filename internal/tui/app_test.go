package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/brreg"
	"github.com/kontali/konsole/internal/chat"
	"github.com/kontali/konsole/internal/config"
)

func newTestApp(t *testing.T, baseURL string) *App {
	t.Helper()
	cfg := config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.ClientID = "client-1"
	cfg.API.UserID = "kari"
	cfg.Poll.QueueSeconds = 5
	cfg.Poll.DashboardSeconds = 30
	cfg.Poll.BankSeconds = 30
	client := api.New(baseURL, cfg.API.ClientID, cfg.API.UserID)
	return New(context.Background(), cfg, client, brreg.New(baseURL), nil, Repos{})
}

// runBatch executes a command tree and returns every produced message.
func runBatch(t *testing.T, c tea.Cmd) []tea.Msg {
	t.Helper()
	if c == nil {
		return nil
	}
	msg := c()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, runBatch(t, sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestApproveMutatesOnlyTargetItem(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	a.review.items = []api.ReviewItem{
		{ID: "r1", Status: api.ReviewPending},
		{ID: "r2", Status: api.ReviewPending},
		{ID: "r3", Status: api.ReviewPending},
	}

	a.applyReviewAction(reviewActedMsg{ID: "r2", Action: api.ReviewApproved})

	require.Equal(t, api.ReviewPending, a.review.items[0].Status)
	require.Equal(t, api.ReviewApproved, a.review.items[1].Status)
	require.Equal(t, "kari", a.review.items[1].ReviewedBy)
	require.Empty(t, a.review.items[0].ReviewedBy)
	require.Equal(t, api.ReviewPending, a.review.items[2].Status)
	require.Empty(t, a.review.items[2].ReviewedBy)
}

func TestImportDoneRefetchesTransactionsAndStatsOnly(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/bank/transactions":
			_ = json.NewEncoder(w).Encode([]api.BankTransaction{{ID: "t1"}})
		case "/api/bank/reconciliation/stats":
			_ = json.NewEncoder(w).Encode(api.ReconciliationStats{Total: 1})
		default:
			t.Errorf("unexpected re-fetch of %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	cmd := a.applyImportDone(importDoneMsg{Result: api.ImportResult{
		TransactionsImported: 12, AutoMatched: 9, MatchRate: 75,
	}})

	require.Contains(t, a.status, "12")
	require.Contains(t, a.status, "75")
	require.False(t, a.isError)

	msgs := runBatch(t, cmd)
	require.Len(t, msgs, 2)
	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []string{"/api/bank/transactions", "/api/bank/reconciliation/stats"}, paths)
}

func TestFailedMatchKeepsRowAndShowsDetail(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invoice already matched"})
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.state = viewBank
	a.modal = modalSuggestions
	a.bank.txs = []api.BankTransaction{{ID: "t1", Status: api.TxUnmatched}}

	msg := a.confirmMatchCmd("t1", "inv-1", "customer")()
	em, ok := msg.(errMsg)
	require.True(t, ok)
	require.Equal(t, "Invoice already matched", em.Error())

	model, _ := a.Update(msg)
	got := model.(*App)
	require.Len(t, got.bank.txs, 1)
	require.Equal(t, api.TxUnmatched, got.bank.txs[0].Status)
	require.Equal(t, "Invoice already matched", got.status)
	require.True(t, got.isError)
}

func TestMatchConfirmedFlipsRowAndClosesModal(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	a.modal = modalSuggestions
	a.bank.txs = []api.BankTransaction{
		{ID: "t1", Status: api.TxUnmatched},
		{ID: "t2", Status: api.TxUnmatched},
	}

	cmd := a.applyMatchConfirmed(matchConfirmedMsg{TxID: "t2"})
	require.NotNil(t, cmd)
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, api.TxUnmatched, a.bank.txs[0].Status)
	require.Equal(t, api.TxMatched, a.bank.txs[1].Status)
}

func TestStalePollIsDropped(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	a.state = viewReview
	a.pollSeq = 3

	_, cmd := a.Update(pollMsg{view: viewReview, seq: 2})
	require.Nil(t, cmd, "stale sequence must not refresh")

	_, cmd = a.Update(pollMsg{view: viewBank, seq: 3})
	require.Nil(t, cmd, "poll for an inactive view must not refresh")

	_, cmd = a.Update(pollMsg{view: viewReview, seq: 3})
	require.NotNil(t, cmd, "current poll re-fetches and re-arms")
}

func TestSwitchViewBumpsPollSeq(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	before := a.pollSeq
	cmd := a.switchView(viewReview)
	require.NotNil(t, cmd)
	require.Equal(t, viewReview, a.state)
	require.Equal(t, before+1, a.pollSeq)
	require.True(t, a.review.loading)

	require.Nil(t, a.switchView(viewReview), "switching to the same view is a no-op")
	require.Equal(t, before+1, a.pollSeq)
}

func TestErrMsgClearsLoadingEverywhere(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	a.dash.loading = true
	a.review.loading = true
	a.bank.loading = true
	a.chatUI.waiting = true

	model, _ := a.Update(errMsg{errTest("boom")})
	got := model.(*App)
	require.False(t, got.dash.loading)
	require.False(t, got.review.loading)
	require.False(t, got.bank.loading)
	require.False(t, got.chatUI.waiting)
	require.Equal(t, "boom", got.status)
	require.True(t, got.isError)
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestCycleFilterRing(t *testing.T) {
	t.Parallel()
	require.Equal(t, api.ReviewPending, cycle(reviewFilters, ""))
	require.Equal(t, api.ReviewApproved, cycle(reviewFilters, api.ReviewPending))
	require.Equal(t, "", cycle(reviewFilters, api.ReviewRejected))
	require.Equal(t, "", cycle(reviewFilters, "bogus"), "unknown value restarts the ring")
}

func TestBrregAutofillKeepsTypedFields(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	a.modal = modalContactForm
	a.contacts.form = api.Contact{Name: "Manuell AS", OrgNumber: "912345678"}
	a.contacts.formInput.SetValue("Manuell AS")

	a.applyBrregUnit(brreg.Unit{
		Name: "Registernavn AS", Street: "Storgata 1",
		PostalCode: "0155", City: "Oslo", Country: "Norge",
	})

	require.Equal(t, "Manuell AS", a.contacts.form.Name, "typed name wins over registry")
	require.Equal(t, "Storgata 1", a.contacts.form.Street)
	require.Equal(t, "0155", a.contacts.form.PostalCode)
	require.Equal(t, "Oslo", a.contacts.form.City)
	require.True(t, strings.Contains(a.status, "Registernavn AS"))
}

func TestImportStatusMessageWording(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Auto-match: 4 matchet, 2 gjenstår (67 % match)",
		fmtAutoMatch(api.AutoMatchResult{Matched: 4, Remaining: 2, MatchRate: 67}))
	require.Equal(t, "Importerte 3 kontakter, 1 hoppet over (2 feil)",
		fmtBulkImport(api.BulkImportResult{Imported: 3, Skipped: 1, Errors: []string{"a", "b"}}))
}

type scriptedProvider struct {
	mu          sync.Mutex
	lastMessage string
	lastHistory []api.ChatMessage
	reply       string
	err         error
}

func (f *scriptedProvider) Reply(_ context.Context, message string, history []api.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMessage = message
	f.lastHistory = history
	return f.reply, f.err
}

func TestChatTurnsAppendOnUpdateLoop(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	p := &scriptedProvider{reply: "Det er 3 ubetalte fakturaer."}
	a.chatProvider = p
	a.openChat()
	a.chatUI.input.SetValue("Hvor mange ubetalte fakturaer?")

	_, cmd := a.handleChatKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, a.chatUI.waiting)

	// The user turn lands before the provider command runs; the command
	// itself never writes to the session log.
	log := a.chatSession.Messages()
	require.Len(t, log, 2) // greeting + user
	require.Equal(t, chat.RoleUser, log[1].Role)
	require.Equal(t, "Hvor mange ubetalte fakturaer?", log[1].Content)

	var reply chatReplyMsg
	for _, msg := range runBatch(t, cmd) {
		if r, ok := msg.(chatReplyMsg); ok {
			reply = r
		}
	}
	require.Equal(t, "Det er 3 ubetalte fakturaer.", reply.Reply)
	require.Len(t, a.chatSession.Messages(), 2, "command produced a message without touching the log")
	require.Empty(t, p.lastHistory, "first turn carries no prior history")

	model, _ := a.Update(reply)
	got := model.(*App)
	require.False(t, got.chatUI.waiting)
	log = got.chatSession.Messages()
	require.Len(t, log, 3)
	require.Equal(t, chat.RoleAssistant, log[2].Role)
	require.Equal(t, "Det er 3 ubetalte fakturaer.", log[2].Content)
}

func TestFailedChatTurnKeepsQuestionVisible(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	a.chatProvider = &scriptedProvider{err: errTest("backend unavailable")}
	a.openChat()
	a.chatUI.input.SetValue("hallo?")

	_, cmd := a.handleChatKey(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := runBatch(t, cmd)

	var failed chatFailedMsg
	for _, msg := range msgs {
		if f, ok := msg.(chatFailedMsg); ok {
			failed = f
		}
	}
	require.EqualError(t, failed, "backend unavailable")

	model, _ := a.Update(failed)
	got := model.(*App)
	require.False(t, got.chatUI.waiting)
	require.True(t, got.isError)
	log := got.chatSession.Messages()
	require.Equal(t, chat.RoleUser, log[len(log)-1].Role)
	require.Equal(t, "hallo?", log[len(log)-1].Content)
}

func TestSwitchClientKeepsInFlightRequestScope(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var clientIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bank/transactions" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		clientIDs = append(clientIDs, r.URL.Query().Get("client_id"))
		mu.Unlock()
		_ = json.NewEncoder(w).Encode([]api.BankTransaction{})
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	before := a.api
	inFlight := a.loadTransactions()

	a.switchClient(PickerItem{ID: "client-2", Label: "Beta AS"})
	require.NotSame(t, before, a.api, "switching installs a fresh client")
	require.Equal(t, "client-2", a.api.ClientID)
	require.Equal(t, "client-1", before.ClientID, "the old client is never written to")

	runBatch(t, inFlight)
	runBatch(t, a.loadTransactions())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"client-1", "client-2"}, clientIDs,
		"a command built before the switch keeps the scope it captured")
}

func TestReviewActionRefetchesListAndStats(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/review-queue":
			_ = json.NewEncoder(w).Encode([]api.ReviewItem{})
		case "/api/review-queue/stats":
			_ = json.NewEncoder(w).Encode(api.QueueStats{})
		default:
			t.Errorf("unexpected re-fetch of %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.review.items = []api.ReviewItem{{ID: "r1", Status: api.ReviewPending}}

	cmd := a.applyReviewAction(reviewActedMsg{ID: "r1", Action: api.ReviewApproved})
	msgs := runBatch(t, cmd)
	require.Len(t, msgs, 2)

	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []string{"/api/review-queue", "/api/review-queue/stats"}, paths)
}

func TestConfidenceTablePerScreen(t *testing.T) {
	// No t.Parallel: the color profile is a package-level lipgloss setting
	// and plain-text rendering makes the two tables indistinguishable.
	old := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(old) })

	require.NotEqual(t, confidenceBadge(87), breakdownBadge(87),
		"87 % is yellow on the compact table and green on the detailed one")

	a := newTestApp(t, "http://unreachable.invalid")
	a.bank.suggestions = []api.MatchSuggestion{
		{InvoiceID: "inv-1", InvoiceNumber: "F-100", Counterparty: "Beta AS", Amount: 1250, Confidence: 87},
	}
	out := a.renderSuggestionsModal()
	require.Contains(t, out, breakdownBadge(87), "match suggestions use the detailed thresholds")
	require.NotContains(t, out, confidenceBadge(87))

	a.review.items = []api.ReviewItem{{ID: "r1", Supplier: "Beta AS", Confidence: 87}}
	out = a.renderReview()
	require.Contains(t, out, confidenceBadge(87), "queue rows use the compact thresholds")
}

func TestTruncateCountsRunes(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Brønnøy...", truncate("Brønnøysundregisteret AS", 10))
	require.Equal(t, "Beta AS", truncate("Beta AS", 22))
	require.Equal(t, "øåæ", truncate("øåæø", 3))
	for n := 1; n < 12; n++ {
		require.True(t, utf8.ValidString(truncate("Ærlig Ålesund Økonomi", n)))
	}
}

func TestSaveSettingsSwapsChatProvider(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, "http://unreachable.invalid")
	a.chatProvider = &chat.BackendProvider{Client: a.api}

	a.settings.provider = "openai"
	a.settings.apiKey = "sk-test"
	a.settings.model = "gpt-4o-mini"
	a.saveSettings()
	require.IsType(t, &chat.OpenAIProvider{}, a.chatProvider)

	a.settings.provider = "backend"
	a.saveSettings()
	bp, ok := a.chatProvider.(*chat.BackendProvider)
	require.True(t, ok)
	require.Same(t, a.api, bp.Client, "backend provider talks through the live client")
}
