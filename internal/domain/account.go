package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Accounts
// ============================================================

// DefaultAccountType is shown when the service omits account_type.
const DefaultAccountType = "Savings"

// AccountNumber identifies an account. The service may encode it as a JSON
// number or string; both decode to the same value.
type AccountNumber string

// UnmarshalJSON accepts both `123` and `"123"`.
func (n *AccountNumber) UnmarshalJSON(b []byte) error {
	s, err := decodeIdentifier(b)
	if err != nil {
		return err
	}
	*n = AccountNumber(s)
	return nil
}

func (n AccountNumber) String() string { return string(n) }

// Account is one entry of GET /accounts/all.
type Account struct {
	AccountNumber AccountNumber   `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   string          `json:"account_type"`
	DateOpened    Timestamp       `json:"date_opened"`
}

// TypeLabel returns the account type, defaulting to Savings.
func (a Account) TypeLabel() string {
	if a.AccountType == "" {
		return DefaultAccountType
	}
	return a.AccountType
}

// AccountList is the body of GET /accounts/all.
type AccountList struct {
	Accounts []Account `json:"accounts"`
}

// AccountDetail is the body of GET /accounts/details/{accountNumber}.
type AccountDetail struct {
	AccountNumber      AccountNumber   `json:"account_number"`
	Balance            decimal.Decimal `json:"balance"`
	DateOpened         Timestamp       `json:"date_opened"`
	RecentTransactions []Transaction   `json:"recent_transactions"`
}

// ============================================================
// Transactions (account history)
// ============================================================

// TransactionKind is the money-moving operation.
type TransactionKind string

const (
	Deposit  TransactionKind = "Deposit"
	Withdraw TransactionKind = "Withdraw"
)

// Endpoint returns the path segment of the mutation endpoint.
func (k TransactionKind) Endpoint() string {
	return strings.ToLower(string(k))
}

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == Deposit || k == Withdraw
}

// TransactionID identifies a history entry; numeric or string on the wire.
type TransactionID string

// UnmarshalJSON accepts both `42` and `"42"`.
func (id *TransactionID) UnmarshalJSON(b []byte) error {
	s, err := decodeIdentifier(b)
	if err != nil {
		return err
	}
	*id = TransactionID(s)
	return nil
}

// Transaction is a read-only history entry embedded in AccountDetail.
type Transaction struct {
	ID     TransactionID   `json:"transaction_id"`
	Date   Timestamp       `json:"date"`
	Type   TransactionKind `json:"transaction_type"`
	Amount decimal.Decimal `json:"amount"`
}

// SignedAmount renders the amount with a sign derived from the type.
func (t Transaction) SignedAmount() string {
	sign := "-"
	if t.Type == Deposit {
		sign = "+"
	}
	return sign + "$" + FormatMoney(t.Amount)
}

// TransactionRequest is the body of POST /accounts/{deposit|withdraw}.
type TransactionRequest struct {
	Amount        json.Number   `json:"amount"`
	AccountNumber AccountNumber `json:"account_number"`
}

// NewTransactionRequest encodes amount as a JSON number.
func NewTransactionRequest(account AccountNumber, amount decimal.Decimal) TransactionRequest {
	return TransactionRequest{
		Amount:        json.Number(amount.String()),
		AccountNumber: account,
	}
}

// MessageResponse is the {message} body used by mutations and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================
// Money & dates
// ============================================================

// maxAmountLength bounds amount literals. Exponent notation is refused so a
// short literal cannot expand into a huge decimal.
const maxAmountLength = 24

// ParseAmountLiteral parses a plain decimal literal such as "12.50".
func ParseAmountLiteral(text string) (decimal.Decimal, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxAmountLength || strings.ContainsAny(text, "eE") {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// Timestamp is a date as sent by the service. Unknown formats are kept raw.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// UnmarshalJSON parses the common layouts the service emits.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

// MarshalJSON writes the raw value back.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw == "" && !t.Time.IsZero() {
		return json.Marshal(t.Time.Format(time.RFC3339))
	}
	return json.Marshal(t.Raw)
}

// ParseTimestamp tries each known layout in turn.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: ts, Raw: s}
		}
	}
	return Timestamp{Raw: s}
}

// Date renders the calendar date, or the raw value when unparsed.
func (t Timestamp) Date() string {
	if t.Time.IsZero() {
		return t.Raw
	}
	return t.Time.Format("2006-01-02")
}

func decodeIdentifier(b []byte) (string, error) {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// LedgerAccount is a devbank account with its owner and full history,
// newest transaction last.
type LedgerAccount struct {
	Owner        string
	Account      Account
	Transactions []Transaction
}
