package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type represents the kind of money movement.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
	TypeSaving  Type = "saving"
)

// Status represents the lifecycle state of a transaction. Pending/paid apply
// to income and expense movements; active/used apply to savings.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
)

// Currency is an ISO currency code. The ledger tracks each currency as a
// separate bucket; amounts are never converted implicitly.
type Currency string

const (
	ARS Currency = "ARS"
	USD Currency = "USD"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{ARS, USD}

// Transaction is a single dated money movement. Field names follow the
// stored document keys and must not change.
type Transaction struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	EntityName  string          `json:"entityName"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CUIT        string          `json:"cuit,omitempty"`
	Currency    Currency        `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Status      Status          `json:"status"`
	Date        time.Time       `json:"date"`
	AccountID   string          `json:"accountId,omitempty"`

	// Recurrence bookkeeping. A transaction is either a parent template
	// (IsRecurring set, no ParentRecurringID) or a generated child / manual
	// entry. At most one child per parent per calendar month may exist.
	IsRecurring       bool   `json:"isRecurring,omitempty"`
	ParentRecurringID string `json:"parentRecurringId,omitempty"`
	InstallmentsTotal int    `json:"installmentsTotal,omitempty"`
	InstallmentNumber int    `json:"installmentNumber,omitempty"`

	// IsInitial marks a saving entry whose value never passed through cash
	// (transfer legs, capitalizations). Such entries are not subtracted when
	// deriving the cash balance.
	IsInitial bool `json:"isInitial,omitempty"`

	// Set on incomes generated by agreement invoicing.
	AgreementID string `json:"agreementId,omitempty"`
	PeriodKey   string `json:"periodKey,omitempty"`

	// TransferID groups the two legs of a savings transfer.
	TransferID string `json:"transferId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

// IsParent reports whether the transaction is a recurrence template.
func (t *Transaction) IsParent() bool {
	return t.IsRecurring && t.ParentRecurringID == ""
}

// ChildOf reports whether the transaction was generated from the given parent.
func (t *Transaction) ChildOf(parentID string) bool {
	return t.ParentRecurringID == parentID
}
