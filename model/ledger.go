package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LedgerStatus is the settlement state of a receivable or payable.
type LedgerStatus string

const (
	LedgerPending LedgerStatus = "pending"
	LedgerPartial LedgerStatus = "partial"
	LedgerPaid    LedgerStatus = "paid"
	LedgerOverdue LedgerStatus = "overdue"
)

func ParseLedgerStatus(s string) (LedgerStatus, error) {
	switch st := LedgerStatus(s); st {
	case LedgerPending, LedgerPartial, LedgerPaid, LedgerOverdue:
		return st, nil
	}
	return "", fmt.Errorf("알 수 없는 채권 상태입니다: %q", s)
}

// Receivable is one export invoice awaiting collection.
type Receivable struct {
	ID          string          `json:"id,omitempty"`
	InvoiceNo   string          `json:"invoice_no,omitempty"`
	Customer    string          `json:"customer"`
	InvoiceDate string          `json:"invoice_date,omitempty"`
	DueDate     string          `json:"due_date,omitempty"`
	Currency    string          `json:"currency,omitempty"`
	AmountUSD   decimal.Decimal `json:"amount_usd"`
	AmountKRW   decimal.Decimal `json:"amount_krw"`
	DaysOverdue int             `json:"days_overdue"`
	Status      LedgerStatus    `json:"status,omitempty"`
	Paid        bool            `json:"paid"`
}

// AgingBuckets splits an outstanding amount by days overdue.
type AgingBuckets struct {
	Current    decimal.Decimal `json:"current"`
	Days30     decimal.Decimal `json:"30_days"`
	Days60     decimal.Decimal `json:"60_days"`
	Days90Plus decimal.Decimal `json:"90_days_plus"`
}

type LedgerCount struct {
	Total   int `json:"total"`
	Overdue int `json:"overdue"`
}

type ReceivableSummary struct {
	TotalOutstandingUSD decimal.Decimal `json:"total_outstanding_usd"`
	TotalOutstandingKRW decimal.Decimal `json:"total_outstanding_krw"`
	OverdueAmountUSD    decimal.Decimal `json:"overdue_amount_usd"`
	OverdueRatio        decimal.Decimal `json:"overdue_ratio"`
	Aging               AgingBuckets    `json:"aging"`
	Count               LedgerCount     `json:"count"`
}

// CustomerAging is the aging of one customer's open invoices.
type CustomerAging struct {
	Customer string `json:"customer"`
	AgingBuckets
	Total decimal.Decimal `json:"total"`
}

// Payable is one supplier invoice awaiting payment.
type Payable struct {
	ID            string          `json:"id,omitempty"`
	PurchaseOrder string          `json:"purchase_order,omitempty"`
	Supplier      string          `json:"supplier"`
	SupplierType  string          `json:"supplier_type,omitempty"`
	InvoiceDate   string          `json:"invoice_date,omitempty"`
	DueDate       string          `json:"due_date,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	AmountKRW     decimal.Decimal `json:"amount_krw"`
	AmountUSD     decimal.Decimal `json:"amount_usd"`
	Status        LedgerStatus    `json:"status,omitempty"`
	DaysUntilDue  int             `json:"days_until_due"`
	PaymentTerms  string          `json:"payment_terms,omitempty"`
	Material      string          `json:"material,omitempty"`
}

type PaymentSchedule struct {
	ThisWeek decimal.Decimal `json:"this_week"`
	NextWeek decimal.Decimal `json:"next_week"`
	Overdue  decimal.Decimal `json:"overdue"`
}

type PayableSummary struct {
	TotalOutstandingKRW decimal.Decimal `json:"total_outstanding_krw"`
	TotalOutstandingUSD decimal.Decimal `json:"total_outstanding_usd"`
	PaymentSchedule     PaymentSchedule `json:"payment_schedule"`
	Count               LedgerCount     `json:"count"`
}

// ReceivablePage is a filtered listing plus the number of matches before the limit.
type ReceivablePage struct {
	Items []Receivable `json:"items"`
	Total int          `json:"total"`
}

type PayablePage struct {
	Items []Payable `json:"items"`
	Total int       `json:"total"`
}
