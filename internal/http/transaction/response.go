package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/ledger"
)

type transactionResponse struct {
	ID                string          `json:"id"`
	Type              ledger.Type     `json:"type"`
	EntityName        string          `json:"entityName"`
	Category          string          `json:"category,omitempty"`
	Description       string          `json:"description,omitempty"`
	CUIT              string          `json:"cuit,omitempty"`
	Currency          ledger.Currency `json:"currency"`
	Amount            decimal.Decimal `json:"amount"`
	Status            ledger.Status   `json:"status"`
	Date              time.Time       `json:"date"`
	AccountID         string          `json:"accountId,omitempty"`
	IsRecurring       bool            `json:"isRecurring,omitempty"`
	ParentRecurringID string          `json:"parentRecurringId,omitempty"`
	InstallmentsTotal int             `json:"installmentsTotal,omitempty"`
	InstallmentNumber int             `json:"installmentNumber,omitempty"`
	IsInitial         bool            `json:"isInitial,omitempty"`
	AgreementID       string          `json:"agreementId,omitempty"`
	PeriodKey         string          `json:"periodKey,omitempty"`
	TransferID        string          `json:"transferId,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		Type:              tx.Type,
		EntityName:        tx.EntityName,
		Category:          tx.Category,
		Description:       tx.Description,
		CUIT:              tx.CUIT,
		Currency:          tx.Currency,
		Amount:            tx.Amount,
		Status:            tx.Status,
		Date:              tx.Date,
		AccountID:         tx.AccountID,
		IsRecurring:       tx.IsRecurring,
		ParentRecurringID: tx.ParentRecurringID,
		InstallmentsTotal: tx.InstallmentsTotal,
		InstallmentNumber: tx.InstallmentNumber,
		IsInitial:         tx.IsInitial,
		AgreementID:       tx.AgreementID,
		PeriodKey:         tx.PeriodKey,
		TransferID:        tx.TransferID,
		CreatedAt:         tx.CreatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
