// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/loan-engine/internal/calculation"
	"github.com/iwvelando/loan-engine/pkg/adapters"
	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/iwvelando/loan-engine/pkg/format"
	"github.com/iwvelando/loan-engine/pkg/optimization"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []calculation.Calculation) {
	WritePretty(os.Stdout, results)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []calculation.Calculation) {
	_, _ = io.WriteString(os.Stdout, CsvString(results))
}

// JSONFormat outputs the API response shape for every calculation.
func JSONFormat(results []calculation.Calculation) error {
	return WriteJSON(os.Stdout, results)
}

// WritePretty writes the headline figures and schedule of each calculation.
func WritePretty(w io.Writer, results []calculation.Calculation) {
	p := message.NewPrinter(language.English)
	for i, calc := range results {
		result := calc.Result
		money := func(amount decimal.Decimal) string {
			return currency(p, amount, result.Currency)
		}

		fmt.Fprintf(w, "--- Results for loan %s ---\n", calc.Name)
		fmt.Fprintf(w, "Loan type:        %s (%s, %s)\n", result.LoanType, result.RepaymentOption, result.InterestType)
		fmt.Fprintf(w, "Term:             %d months, %s to %s\n", result.LoanTerm,
			datetime.Format(result.StartDate), datetime.Format(result.MaturityDate))
		fmt.Fprintf(w, "Rate:             %s%% a year (%s%% a month)\n",
			result.AnnualRate.StringFixed(constants.CurrencyPlaces), result.MonthlyRate.StringFixed(4))
		fmt.Fprintf(w, "Gross amount:     %s\n", money(result.GrossAmount))
		fmt.Fprintf(w, "Net advance:      %s\n", money(result.TotalNetAdvance))
		fmt.Fprintf(w, "Fees:             %s\n", money(result.Fees.Total))
		fmt.Fprintf(w, "Total interest:   %s\n", money(result.TotalInterest))
		if result.RetainedInterest.IsPositive() {
			fmt.Fprintf(w, "Retained:         %s\n", money(result.RetainedInterest))
		}
		if !result.InterestSavings.IsZero() {
			fmt.Fprintf(w, "Interest savings: %s\n", money(result.InterestSavings))
		}
		if result.InterestRefund.IsPositive() {
			fmt.Fprintf(w, "Interest refund:  %s\n", money(result.InterestRefund))
		}
		fmt.Fprintf(w, "Total payments:   %s\n", money(result.TotalPayments))
		fmt.Fprintf(w, "Closing balance:  %s\n", money(result.ClosingBalance))
		fmt.Fprintf(w, "LTV:              %s -> %s\n", format.Percent(result.LTVStart), format.Percent(result.LTVEnd))

		fmt.Fprintf(w, "Period | Date       | Opening | Release | Interest | Principal | Payment | Closing | Notes\n")
		fmt.Fprintf(w, "______ | __________ | _______ | _______ | ________ | _________ | _______ | _______ | _____\n")
		for _, row := range result.Schedule {
			fmt.Fprintf(w, "%6d | %s | %s | %s | %s | %s | %s | %s | %s\n",
				row.PeriodNumber, datetime.Format(row.Date),
				money(row.OpeningBalance), money(row.TrancheRelease), money(row.InterestAmount),
				money(row.PrincipalPayment), money(row.TotalPayment), money(row.ClosingBalance),
				row.CalculationNote)
		}

		writeNotes(w, calc)
		if calc.Solver != nil {
			writeSolver(w, *calc.Solver)
		}
		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

func writeNotes(w io.Writer, calc calculation.Calculation) {
	warnings := calc.Result.Warnings
	if len(warnings) == 0 && len(calc.Advisories) == 0 {
		return
	}
	fmt.Fprintf(w, "Warnings:\n")
	for _, warning := range warnings {
		fmt.Fprintf(w, "  - %s: %s", warning.Field, warning.Message)
		if warning.Default != "" {
			fmt.Fprintf(w, " (using %s)", warning.Default)
		}
		fmt.Fprintf(w, "\n")
	}
	for _, advisory := range calc.Advisories {
		fmt.Fprintf(w, "  - %s\n", advisory)
	}
}

func writeSolver(w io.Writer, summary optimization.Summary) {
	fmt.Fprintf(w, "Payment solver:\n")
	status := "converged"
	if !summary.Converged {
		status = "not converged"
	}
	fmt.Fprintf(w, "  - %s (%s): %s -> %s after %d iterations, %s\n",
		summary.TargetName, summary.Field, summary.OriginalDisplay, summary.ValueDisplay, summary.Iterations, status)
	for _, note := range summary.Notes {
		fmt.Fprintf(w, "    %s\n", note)
	}
}

// CsvString renders every schedule row of every calculation as quoted CSV.
func CsvString(results []calculation.Calculation) string {
	var b strings.Builder
	header := []string{"loan", "period", "date", "opening_balance", "tranche_release", "interest",
		"principal", "payment", "closing_balance", "notes"}
	writeCsvLine(&b, header)
	for _, calc := range results {
		for _, row := range calc.Result.Schedule {
			writeCsvLine(&b, []string{
				calc.Name,
				fmt.Sprintf("%d", row.PeriodNumber),
				datetime.Format(row.Date),
				row.OpeningBalance.StringFixed(constants.CurrencyPlaces),
				row.TrancheRelease.StringFixed(constants.CurrencyPlaces),
				row.InterestAmount.StringFixed(constants.CurrencyPlaces),
				row.PrincipalPayment.StringFixed(constants.CurrencyPlaces),
				row.TotalPayment.StringFixed(constants.CurrencyPlaces),
				row.ClosingBalance.StringFixed(constants.CurrencyPlaces),
				row.CalculationNote,
			})
		}
	}
	return b.String()
}

func writeCsvLine(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// Document is the JSON shape of one calculation.
type Document struct {
	Name       string                `json:"name"`
	Result     adapters.Response     `json:"result"`
	Advisories []string              `json:"advisories,omitempty"`
	Solver     *optimization.Summary `json:"solver,omitempty"`
}

// Documents converts calculations into their JSON shape.
func Documents(results []calculation.Calculation) []Document {
	docs := make([]Document, 0, len(results))
	for _, calc := range results {
		docs = append(docs, Document{
			Name:       calc.Name,
			Result:     adapters.BuildResponse(calc.Result),
			Advisories: calc.Advisories,
			Solver:     calc.Solver,
		})
	}
	return docs
}

// WriteJSON writes every calculation as an indented JSON array.
func WriteJSON(w io.Writer, results []calculation.Calculation) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(Documents(results)); err != nil {
		return fmt.Errorf("failed to encode calculations: %w", err)
	}
	return nil
}

// currency renders a rounded amount with thousands separators.
func currency(p *message.Printer, amount decimal.Decimal, code string) string {
	rounded := amount.Round(constants.CurrencyPlaces)
	symbol := format.Symbol(code)
	if rounded.IsNegative() {
		return "-" + symbol + p.Sprintf("%.2f", rounded.Abs().InexactFloat64())
	}
	return symbol + p.Sprintf("%.2f", rounded.InexactFloat64())
}
