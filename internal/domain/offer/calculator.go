package offer

import (
	"fmt"

	"lending-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// Business bounds on loan terms. These are contract, not tuning knobs.
var (
	MinLoanAmount   = decimal.NewFromInt(500)
	MaxLoanAmount   = decimal.NewFromInt(1_000_000)
	MinInterestRate = decimal.Zero
	MaxInterestRate = decimal.NewFromInt(50)
)

const (
	MinLoanTermMonths = 1
	MaxLoanTermMonths = 600

	// divisionScale is the number of fractional digits carried through
	// intermediate divisions before the final rounding to cents.
	divisionScale = 16
)

// ValidateTerms checks the three loan inputs against their business bounds.
// Every violated bound is collected into a single FieldViolations error so
// the caller can report all of them in one response.
func ValidateTerms(amount, rate decimal.Decimal, term int) error {
	var violations apperrors.FieldViolations

	if amount.LessThan(MinLoanAmount) {
		violations.Add("loanAmount", fmt.Sprintf("loan amount must be at least %s", MinLoanAmount.StringFixed(2)))
	} else if amount.GreaterThan(MaxLoanAmount) {
		violations.Add("loanAmount", fmt.Sprintf("loan amount cannot exceed %s", MaxLoanAmount.StringFixed(2)))
	}

	if rate.LessThan(MinInterestRate) {
		violations.Add("interestRate", "interest rate cannot be negative, use 0 for interest-free loans")
	} else if rate.GreaterThan(MaxInterestRate) {
		violations.Add("interestRate", fmt.Sprintf("interest rate cannot exceed %s%%", MaxInterestRate.String()))
	}

	if term < MinLoanTermMonths {
		violations.Add("loanTerm", fmt.Sprintf("loan term must be at least %d month", MinLoanTermMonths))
	} else if term > MaxLoanTermMonths {
		violations.Add("loanTerm", fmt.Sprintf("loan term cannot exceed %d months", MaxLoanTermMonths))
	}

	return violations.AsError()
}

// MonthlyPayment computes the fixed monthly payment with the standard
// amortization formula:
//
//	M = P * r(1+r)^n / ((1+r)^n - 1)
//
// where r is the monthly rate (annual percentage / 12 / 100) and n the term
// in months. Interest-free loans amortize linearly. All intermediates are
// base-10 decimals; the result is rounded half-up to cents at the very end.
// Banker's rounding is deliberately not used for currency. The function is
// pure: identical inputs always produce a bit-identical decimal.
func MonthlyPayment(amount, rate decimal.Decimal, term int) decimal.Decimal {
	termDec := decimal.NewFromInt(int64(term))

	if rate.IsZero() {
		return amount.DivRound(termDec, 2)
	}

	one := decimal.NewFromInt(1)
	monthlyRate := rate.DivRound(decimal.NewFromInt(1200), divisionScale)
	compound := one.Add(monthlyRate).Pow(termDec)

	numerator := amount.Mul(monthlyRate).Mul(compound)
	denominator := compound.Sub(one)

	return numerator.DivRound(denominator, divisionScale).Round(2)
}

// ValidateAndCompute is the single entry point the offer service uses:
// bounds first, then the payment, against one consistent snapshot of the
// three inputs.
func ValidateAndCompute(amount, rate decimal.Decimal, term int) (decimal.Decimal, error) {
	if err := ValidateTerms(amount, rate, term); err != nil {
		return decimal.Zero, err
	}
	return MonthlyPayment(amount, rate, term), nil
}
