package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the Kontali backend. All accounting logic (matching,
// confidence scoring, auto-booking) lives server-side; the console only
// renders what comes back.
//
// Requests are not retried and in-flight requests are not cancelled when
// the operator moves on; a late response simply lands and is overwritten
// by the next poll.
//
// A Client is fixed to one client/user scope after New; switching scope
// means constructing a new Client, never mutating a shared one.
type Client struct {
	base     string
	http     *http.Client
	ClientID string
	UserID   string
}

// APIError is a non-2xx response. Error() returns the server-provided
// detail verbatim so the status line shows exactly what the backend said.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// New creates a client for the given backend origin.
func New(baseURL, clientID, userID string) *Client {
	return &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		ClientID: clientID,
		UserID:   userID,
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) url(path string, q url.Values) string {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) clientQuery() url.Values {
	q := url.Values{}
	q.Set("client_id", c.ClientID)
	return q
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, rawURL string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, rawURL, body, "application/json", out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
		if eb.Detail != "" {
			apiErr.Detail = eb.Detail
		} else if eb.Message != "" {
			apiErr.Detail = eb.Message
		}
	}
	return apiErr
}

// --- Bank reconciliation ---

// ListTransactions returns bank transactions, optionally filtered by status.
func (c *Client) ListTransactions(ctx context.Context, status string) ([]BankTransaction, error) {
	q := c.clientQuery()
	if status != "" {
		q.Set("status", status)
	}
	var out []BankTransaction
	if err := c.getJSON(ctx, c.url("/api/bank/transactions", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReconciliationStats returns the reconciliation summary for the client.
func (c *Client) ReconciliationStats(ctx context.Context) (ReconciliationStats, error) {
	var out ReconciliationStats
	err := c.getJSON(ctx, c.url("/api/bank/reconciliation/stats", c.clientQuery()), &out)
	return out, err
}

// MatchSuggestions returns candidate invoice matches for a transaction.
func (c *Client) MatchSuggestions(ctx context.Context, txID string) ([]MatchSuggestion, error) {
	var out []MatchSuggestion
	path := "/api/bank/transactions/" + url.PathEscape(txID) + "/suggestions"
	if err := c.getJSON(ctx, c.url(path, c.clientQuery()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportBankFile uploads a CSV/XLSX bank statement as multipart form data.
// Parsing happens server-side.
func (c *Client) ImportBankFile(ctx context.Context, filename string, r io.Reader) (ImportResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return ImportResult{}, fmt.Errorf("multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return ImportResult{}, fmt.Errorf("multipart: %w", err)
	}
	var out ImportResult
	err = c.do(ctx, http.MethodPost, c.url("/api/bank/import", c.clientQuery()), &buf, w.FormDataContentType(), &out)
	return out, err
}

// AutoMatch asks the backend to run automatic matching.
func (c *Client) AutoMatch(ctx context.Context) (AutoMatchResult, error) {
	var out AutoMatchResult
	err := c.postJSON(ctx, c.url("/api/bank/auto-match", c.clientQuery()), nil, &out)
	return out, err
}

// ConfirmMatch records a manual transaction-to-invoice match.
func (c *Client) ConfirmMatch(ctx context.Context, txID, invoiceID, invoiceType string) error {
	q := c.clientQuery()
	q.Set("invoice_id", invoiceID)
	q.Set("invoice_type", invoiceType)
	q.Set("user_id", c.UserID)
	path := "/api/bank/transactions/" + url.PathEscape(txID) + "/match"
	return c.postJSON(ctx, c.url(path, q), nil, nil)
}

// --- Review queue ---

// ReviewQueue lists review items, optionally filtered by status.
func (c *Client) ReviewQueue(ctx context.Context, status string) ([]ReviewItem, error) {
	q := c.clientQuery()
	if status != "" {
		q.Set("status", status)
	}
	var out []ReviewItem
	if err := c.getJSON(ctx, c.url("/api/review-queue", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReviewStats returns per-status counts for the review queue.
func (c *Client) ReviewStats(ctx context.Context) (QueueStats, error) {
	var out QueueStats
	err := c.getJSON(ctx, c.url("/api/review-queue/stats", c.clientQuery()), &out)
	return out, err
}

type approveRequest struct {
	UserID string `json:"user_id"`
	Note   string `json:"note,omitempty"`
}

// ApproveReview approves a review item as the configured user.
func (c *Client) ApproveReview(ctx context.Context, id, note string) error {
	path := "/api/review-queue/" + url.PathEscape(id) + "/approve"
	return c.postJSON(ctx, c.url(path, c.clientQuery()), approveRequest{UserID: c.UserID, Note: note}, nil)
}

type correctRequest struct {
	UserID  string         `json:"user_id"`
	Entries []BookingEntry `json:"booking_entries"`
	Note    string         `json:"note,omitempty"`
}

// CorrectReview submits corrected booking entries for a review item.
func (c *Client) CorrectReview(ctx context.Context, id string, entries []BookingEntry, note string) error {
	path := "/api/review-queue/" + url.PathEscape(id) + "/correct"
	return c.postJSON(ctx, c.url(path, c.clientQuery()), correctRequest{UserID: c.UserID, Entries: entries, Note: note}, nil)
}

type rejectRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// RejectReview rejects a review item.
func (c *Client) RejectReview(ctx context.Context, id, reason string) error {
	path := "/api/review-queue/" + url.PathEscape(id) + "/reject"
	return c.postJSON(ctx, c.url(path, c.clientQuery()), rejectRequest{UserID: c.UserID, Reason: reason}, nil)
}

// --- Dashboard ---

// DashboardMetrics returns the aggregate KPI payload.
func (c *Client) DashboardMetrics(ctx context.Context) (DashboardMetrics, error) {
	var out DashboardMetrics
	err := c.getJSON(ctx, c.url("/api/dashboard/metrics", c.clientQuery()), &out)
	return out, err
}

// DashboardStatus returns per-client task rollups.
func (c *Client) DashboardStatus(ctx context.Context) (DashboardStatus, error) {
	var out DashboardStatus
	err := c.getJSON(ctx, c.url("/api/dashboard/status", nil), &out)
	return out, err
}

// DashboardVerification returns the verification feed.
func (c *Client) DashboardVerification(ctx context.Context) ([]VerificationItem, error) {
	var out []VerificationItem
	err := c.getJSON(ctx, c.url("/api/dashboard/verification", c.clientQuery()), &out)
	return out, err
}

// --- Chart of accounts ---

// ListAccounts searches the chart of accounts.
func (c *Client) ListAccounts(ctx context.Context, search, accountType string) ([]Account, error) {
	q := c.clientQuery()
	if search != "" {
		q.Set("search", search)
	}
	if accountType != "" {
		q.Set("account_type", accountType)
	}
	var out []Account
	if err := c.getJSON(ctx, c.url("/api/accounts/", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccount adds an account to the chart.
func (c *Client) CreateAccount(ctx context.Context, a Account) error {
	return c.postJSON(ctx, c.url("/api/accounts/", c.clientQuery()), a, nil)
}

// DeleteAccount removes an account by number.
func (c *Client) DeleteAccount(ctx context.Context, number string) error {
	rawURL := c.url("/api/accounts/"+url.PathEscape(number), c.clientQuery())
	return c.do(ctx, http.MethodDelete, rawURL, nil, "", nil)
}

// --- Contacts ---

// ListContacts lists suppliers or customers.
func (c *Client) ListContacts(ctx context.Context, kind, search string) ([]Contact, error) {
	q := c.clientQuery()
	if search != "" {
		q.Set("search", search)
	}
	var out []Contact
	if err := c.getJSON(ctx, c.url("/api/contacts/"+kind, q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateContact creates a supplier or customer.
func (c *Client) CreateContact(ctx context.Context, kind string, contact Contact) error {
	return c.postJSON(ctx, c.url("/api/contacts/"+kind, c.clientQuery()), contact, nil)
}

// DeleteContact removes a supplier or customer.
func (c *Client) DeleteContact(ctx context.Context, kind, id string) error {
	rawURL := c.url("/api/contacts/"+kind+"/"+url.PathEscape(id), c.clientQuery())
	return c.do(ctx, http.MethodDelete, rawURL, nil, "", nil)
}

// BulkImportContacts uploads a CSV/Excel contact file.
func (c *Client) BulkImportContacts(ctx context.Context, kind, filename string, r io.Reader) (BulkImportResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return BulkImportResult{}, fmt.Errorf("multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return BulkImportResult{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return BulkImportResult{}, fmt.Errorf("multipart: %w", err)
	}
	var out BulkImportResult
	url := c.url("/api/contacts/"+kind+"/bulk-import", c.clientQuery())
	err = c.do(ctx, http.MethodPost, url, &buf, w.FormDataContentType(), &out)
	return out, err
}

// --- Reports ---

// ReportURL builds the export URL for a report type and format.
func (c *Client) ReportURL(kind, format, fromDate, toDate string) string {
	q := c.clientQuery()
	q.Set("from_date", fromDate)
	q.Set("to_date", toDate)
	return c.url("/api/reports/"+kind+"/"+format, q)
}

// DownloadReport streams a rendered report. The caller owns the ReadCloser.
func (c *Client) DownloadReport(ctx context.Context, kind, format, fromDate, toDate string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReportURL(kind, format, fromDate, toDate), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download report: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// --- Chat ---

type chatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// Chat sends one user turn plus prior history and returns the assistant
// reply. History must already be filtered to user/assistant roles.
func (c *Client) Chat(ctx context.Context, message string, history []ChatMessage) (string, error) {
	var out ChatResponse
	err := c.postJSON(ctx, c.url("/api/chat", c.clientQuery()), chatRequest{Message: message, History: history}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}
