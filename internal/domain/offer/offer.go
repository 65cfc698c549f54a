package offer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusDisbursed Status = "DISBURSED"
)

// CustomerSummary is the slice of the customer record an offer carries after
// the repository join. UserID is what the ownership chain resolves through.
type CustomerSummary struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
}

// LoanOffer is a financing offer for one customer. MonthlyPayment is derived
// from (LoanAmount, InterestRate, LoanTerm) and is never client-supplied; it
// is recomputed whenever any of the three inputs changes.
type LoanOffer struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     uuid.UUID       `json:"customerId"`
	Customer       CustomerSummary `json:"customer"`
	LoanAmount     decimal.Decimal `json:"loanAmount"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	LoanTerm       int             `json:"loanTerm"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	Status         Status          `json:"status"`
	CreatedBy      *uuid.UUID      `json:"createdBy,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// OwnerUserID resolves the ownership chain transitively: offers are created
// by installers, so ownership traces through the customer's linked user, not
// through CreatedBy.
func (o *LoanOffer) OwnerUserID() *uuid.UUID {
	return o.Customer.UserID
}

// TotalPayment is the sum of all monthly payments over the term.
func (o *LoanOffer) TotalPayment() decimal.Decimal {
	return o.MonthlyPayment.Mul(decimal.NewFromInt(int64(o.LoanTerm))).Round(2)
}

// TotalInterest is the cost of the loan above the principal.
func (o *LoanOffer) TotalInterest() decimal.Decimal {
	return o.TotalPayment().Sub(o.LoanAmount).Round(2)
}
