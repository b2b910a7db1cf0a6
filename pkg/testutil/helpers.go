// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/iwvelando/loan-engine/internal/calculation"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/shopspring/decimal"
)

// FindCalculation finds a calculation by loan name in the results slice.
// Returns a pointer to the calculation if found, nil otherwise.
func FindCalculation(results []calculation.Calculation, name string) *calculation.Calculation {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// Decimal parses s, panicking on malformed input.
func Decimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// BridgeRequest is a 500,000 gross bridge loan at 12% simple over 12 months
// from 2025-01-01 against a 1,000,000 property, with interest retained.
func BridgeRequest() loans.CalculationRequest {
	return loans.CalculationRequest{
		LoanType:         loans.LoanTypeBridge,
		AmountInputType:  loans.AmountInputGross,
		GrossAmount:      Decimal("500000"),
		PropertyValue:    Decimal("1000000"),
		AnnualRate:       Decimal("12"),
		LoanTerm:         12,
		StartDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DayCountBase:     loans.DayCount365,
		InterestType:     loans.InterestSimple,
		RepaymentOption:  loans.RepaymentRetained,
		Currency:         "GBP",
		PaymentTiming:    loans.PaymentInArrears,
		PaymentFrequency: loans.PaymentMonthly,
	}
}

// DevelopmentRequest is an 800,000 net development loan with a 100,000 day 1
// advance, compounding daily at 10% over 18 months from 2025-01-15.
func DevelopmentRequest() loans.CalculationRequest {
	req := BridgeRequest()
	req.LoanType = loans.LoanTypeDevelopment
	req.AmountInputType = loans.AmountInputNet
	req.GrossAmount = decimal.Zero
	req.NetAmount = Decimal("800000")
	req.PropertyValue = Decimal("1500000")
	req.AnnualRate = Decimal("10")
	req.LoanTerm = 18
	req.StartDate = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	req.InterestType = loans.InterestCompoundDaily
	req.Day1Advance = Decimal("100000")
	return req
}

// BridgePayload is BridgeRequest as a raw request mapping.
func BridgePayload() map[string]interface{} {
	return map[string]interface{}{
		"loan_type":      "bridge",
		"gross_amount":   500000,
		"property_value": 1000000,
		"annual_rate":    12,
		"loan_term":      12,
		"start_date":     "2025-01-01",
	}
}
