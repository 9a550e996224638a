package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "client-1", "user-7")
}

func TestListTransactionsQuery(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bank/transactions", r.URL.Path)
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode([]BankTransaction{
			{ID: "tx-1", Amount: 1250.50, Status: TxUnmatched, KIDRef: "00123456789"},
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	txs, err := c.ListTransactions(ctx, TxUnmatched)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "tx-1", txs[0].ID)
	require.Equal(t, "client-1", gotQuery.Get("client_id"))
	require.Equal(t, "unmatched", gotQuery.Get("status"))
}

func TestImportBankFileMultipart(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/bank/import", r.URL.Path)
		require.Equal(t, "client-1", r.URL.Query().Get("client_id"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "statement.csv", header.Filename)
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		require.Contains(t, string(data), "DNB")

		_ = json.NewEncoder(w).Encode(ImportResult{TransactionsImported: 12, AutoMatched: 9, MatchRate: 75})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := c.ImportBankFile(ctx, "statement.csv", strings.NewReader("2026-01-05;DNB;-1200.00\n"))
	require.NoError(t, err)
	require.Equal(t, 12, res.TransactionsImported)
	require.Equal(t, 9, res.AutoMatched)
	require.InDelta(t, 75.0, res.MatchRate, 0.001)
}

func TestConfirmMatchErrorDetailVerbatim(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bank/transactions/tx-9/match", r.URL.Path)
		require.Equal(t, "inv-3", r.URL.Query().Get("invoice_id"))
		require.Equal(t, "supplier", r.URL.Query().Get("invoice_type"))
		require.Equal(t, "user-7", r.URL.Query().Get("user_id"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Invoice already matched"}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.ConfirmMatch(ctx, "tx-9", "inv-3", "supplier")
	require.Error(t, err)
	require.Equal(t, "Invoice already matched", err.Error())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestErrorBodyMessageFallback(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "database unavailable"}`))
	})

	_, err := c.ReconciliationStats(context.Background())
	require.Error(t, err)
	require.Equal(t, "database unavailable", err.Error())
}

func TestErrorWithoutBody(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ReviewQueue(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestApproveReviewPayload(t *testing.T) {
	t.Parallel()

	var got approveRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/review-queue/abc-123/approve", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, c.ApproveReview(context.Background(), "abc-123", "ok"))
	require.Equal(t, "user-7", got.UserID)
	require.Equal(t, "ok", got.Note)
}

func TestCorrectReviewPayload(t *testing.T) {
	t.Parallel()

	var got correctRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/review-queue/abc-123/correct", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	})

	entries := []BookingEntry{
		{Account: "4000", AccountName: "Varekjøp", Debit: 1000},
		{Account: "2400", AccountName: "Leverandørgjeld", Credit: 1000},
	}
	require.NoError(t, c.CorrectReview(context.Background(), "abc-123", entries, "fixed account"))
	require.Len(t, got.Entries, 2)
	require.Equal(t, "4000", got.Entries[0].Account)
	require.Equal(t, "fixed account", got.Note)
}

func TestChatSendsHistory(t *testing.T) {
	t.Parallel()

	var got chatRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ChatResponse{Message: "Saldoen er 12 400 kr."})
	})

	history := []ChatMessage{
		{Role: "user", Content: "Hei"},
		{Role: "assistant", Content: "Hei! Hva kan jeg hjelpe med?"},
	}
	reply, err := c.Chat(context.Background(), "Hva er saldoen?", history)
	require.NoError(t, err)
	require.Equal(t, "Saldoen er 12 400 kr.", reply)
	require.Equal(t, "Hva er saldoen?", got.Message)
	require.Len(t, got.History, 2)
}

func TestReportURL(t *testing.T) {
	t.Parallel()

	c := New("http://localhost:8000", "client-1", "user-7")
	u := c.ReportURL(ReportResultat, FormatPDF, "2026-01-01", "2026-03-31")
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	require.Equal(t, "/api/reports/resultat/pdf", parsed.Path)
	require.Equal(t, "2026-01-01", parsed.Query().Get("from_date"))
	require.Equal(t, "2026-03-31", parsed.Query().Get("to_date"))
	require.Equal(t, "client-1", parsed.Query().Get("client_id"))
}

func TestListAccountsFilters(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/accounts/", r.URL.Path)
		require.Equal(t, "vare", r.URL.Query().Get("search"))
		require.Equal(t, "expense", r.URL.Query().Get("account_type"))
		_ = json.NewEncoder(w).Encode([]Account{{Number: "4000", Name: "Varekjøp", AccountType: "expense", Active: true}})
	})

	accounts, err := c.ListAccounts(context.Background(), "vare", "expense")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "4000", accounts[0].Number)
}
