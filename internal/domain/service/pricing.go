package service

import (
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// PricingPolicy – domain service for invoice charges
// ---------------------------------------------------------------------------

// InvoicePrice holds the charge breakdown for one invoice.
type InvoicePrice struct {
	Principal decimal.Decimal
	Tax       decimal.Decimal
	Fee       decimal.Decimal
	Total     decimal.Decimal
}

// PricingPolicy computes tax and fee for a repayment invoice. Rates are
// fractions of the principal (e.g. 0.05 = 5%). The current institutional
// policy charges neither, but both rates are pluggable per deployment.
type PricingPolicy struct {
	taxRate decimal.Decimal
	feeRate decimal.Decimal
}

// NewPricingPolicy returns a policy with the given tax and fee rates.
func NewPricingPolicy(taxRate, feeRate decimal.Decimal) *PricingPolicy {
	return &PricingPolicy{taxRate: taxRate, feeRate: feeRate}
}

// DefaultPricingPolicy returns the current institutional policy: no tax,
// no fee.
func DefaultPricingPolicy() *PricingPolicy {
	return NewPricingPolicy(decimal.Zero, decimal.Zero)
}

// Price computes the charge breakdown for the given principal amount.
// The invariant total == principal + tax + fee holds by construction.
func (p *PricingPolicy) Price(principal decimal.Decimal) InvoicePrice {
	tax := principal.Mul(p.taxRate).Round(2)
	fee := principal.Mul(p.feeRate).Round(2)
	return InvoicePrice{
		Principal: principal,
		Tax:       tax,
		Fee:       fee,
		Total:     principal.Add(tax).Add(fee),
	}
}
