package api

// ReviewItem is an invoice awaiting bookkeeper review. The backend creates
// these on invoice ingestion; the console only flips status via approve,
// correct and reject.
type ReviewItem struct {
	ID                string         `json:"id"`
	Supplier          string         `json:"supplier"`
	Amount            float64        `json:"amount"`
	InvoiceNumber     string         `json:"invoice_number"`
	Date              string         `json:"date"`
	Status            string         `json:"status"`   // pending|approved|corrected|rejected
	Priority          string         `json:"priority"` // high|medium|low
	Confidence        float64        `json:"confidence"`
	BookingEntries    []BookingEntry `json:"booking_entries"`
	SuggestedPatterns []string       `json:"suggested_patterns"`
	ReviewedAt        string         `json:"reviewed_at,omitempty"`
	ReviewedBy        string         `json:"reviewed_by,omitempty"`
}

// Review item statuses.
const (
	ReviewPending   = "pending"
	ReviewApproved  = "approved"
	ReviewCorrected = "corrected"
	ReviewRejected  = "rejected"
)

// BookingEntry is one line of a double-entry posting (bilag).
type BookingEntry struct {
	Account     string  `json:"account"`
	AccountName string  `json:"account_name"`
	Debit       float64 `json:"debit,omitempty"`
	Credit      float64 `json:"credit,omitempty"`
}

// BankTransaction is a statement line from the bank feed.
type BankTransaction struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"` // credit|debit
	Description  string  `json:"description"`
	Counterparty string  `json:"counterparty"`
	KIDRef       string  `json:"kid_ref"`
	Status       string  `json:"status"` // unmatched|matched|reviewed|ignored
	Confidence   float64 `json:"confidence"`
}

// Bank transaction statuses.
const (
	TxUnmatched = "unmatched"
	TxMatched   = "matched"
	TxReviewed  = "reviewed"
	TxIgnored   = "ignored"
)

// MatchSuggestion is a candidate invoice for a bank transaction.
type MatchSuggestion struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceType   string  `json:"invoice_type"` // customer|supplier
	InvoiceNumber string  `json:"invoice_number"`
	Counterparty  string  `json:"counterparty"`
	Amount        float64 `json:"amount"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason"`
}

// ReconciliationStats is the bank reconciliation summary header.
type ReconciliationStats struct {
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	Unmatched int     `json:"unmatched"`
	Reviewed  int     `json:"reviewed"`
	MatchRate float64 `json:"match_rate"`
}

// ImportResult is returned by the bank statement import endpoint.
type ImportResult struct {
	TransactionsImported int     `json:"transactions_imported"`
	AutoMatched          int     `json:"auto_matched"`
	MatchRate            float64 `json:"match_rate"`
}

// AutoMatchResult is returned by the auto-match trigger.
type AutoMatchResult struct {
	Matched   int     `json:"matched"`
	Remaining int     `json:"remaining"`
	MatchRate float64 `json:"match_rate"`
}

// QueueStats aggregates the review queue per status.
type QueueStats struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Corrected int `json:"corrected"`
	Rejected  int `json:"rejected"`
}

// DashboardMetrics is the aggregate KPI payload.
type DashboardMetrics struct {
	InvoicesToday     int     `json:"invoices_today"`
	InvoicesWeek      int     `json:"invoices_week"`
	AutoBookedRate    float64 `json:"auto_booked_rate"`
	PendingReview     int     `json:"pending_review"`
	UnmatchedBankTx   int     `json:"unmatched_bank_tx"`
	EHFReceived       int     `json:"ehf_received"`
	AIThresholdAuto   float64 `json:"ai_threshold_auto"`
	AIThresholdReview float64 `json:"ai_threshold_review"`
}

// DashboardStatus carries per-client task rollups.
type DashboardStatus struct {
	Clients []ClientSummary `json:"clients"`
}

// ClientSummary is one row of the multi-client dashboard.
type ClientSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OrgNumber string `json:"org_number"`
	Tasks     []Task `json:"tasks"`
}

// Task is a unit of outstanding work for a client.
type Task struct {
	ID         string  `json:"id"`
	ClientID   string  `json:"client_id"`
	Category   string  `json:"category"` // invoicing|bank|reporting
	Priority   string  `json:"priority"` // high|medium|low
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary"`
}

// VerificationItem is a row of the dashboard verification feed.
type VerificationItem struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Account is a chart-of-accounts row (NS 4102 numbering).
type Account struct {
	Number      string `json:"number"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
	VATCode     string `json:"vat_code,omitempty"`
	Active      bool   `json:"active"`
}

// Contact is a supplier or customer record. Address, contact and financial
// groups mirror the backend form layout.
type Contact struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	OrgNumber     string `json:"org_number"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
	BankAccount   string `json:"bank_account"`
	PaymentTerms  int    `json:"payment_terms"`
	DefaultVAT    string `json:"default_vat_code"`
	LedgerAccount string `json:"ledger_account"`
}

// Contact kinds, as they appear in URL paths.
const (
	ContactSuppliers = "suppliers"
	ContactCustomers = "customers"
)

// BulkImportResult summarizes a CSV/Excel contact import.
type BulkImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ChatMessage is one turn in the assistant exchange.
type ChatMessage struct {
	Role    string `json:"role"` // user|assistant|system
	Content string `json:"content"`
}

// ChatResponse is the assistant reply payload.
type ChatResponse struct {
	Message string `json:"message"`
}

// Report types and formats accepted by the export endpoint.
const (
	ReportResultat     = "resultat"
	ReportBalanse      = "balanse"
	ReportHovedbok     = "hovedbok"
	ReportMVA          = "mva"
	ReportSaldobalanse = "saldobalanse"

	FormatPDF   = "pdf"
	FormatExcel = "excel"
)
