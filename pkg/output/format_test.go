package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/iwvelando/loan-engine/internal/calculation"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/iwvelando/loan-engine/pkg/optimization"
	"github.com/iwvelando/loan-engine/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bridgeCalculation(t *testing.T) calculation.Calculation {
	t.Helper()
	result, err := loans.Calculate(testutil.BridgeRequest())
	require.NoError(t, err)
	return calculation.Calculation{Name: "Bridge", Result: result}
}

func TestPrettyFormat(t *testing.T) {
	results := []calculation.Calculation{bridgeCalculation(t)}

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	PrettyFormat(results)

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	output := buf.String()

	expected := []string{
		"--- Results for loan Bridge ---",
		"Loan type:        bridge (retained, simple)",
		"Term:             12 months, 2025-01-01 to 2026-01-01",
		"Rate:             12.00% a year (1.0000% a month)",
		"Gross amount:     £500,000.00",
		"Net advance:      £440,000.00",
		"Total interest:   £60,000.00",
		"Retained:         £60,000.00",
		"Closing balance:  £560,000.00",
		"LTV:              50.00% -> 56.00%",
		"Period | Date       | Opening | Release | Interest | Principal | Payment | Closing | Notes",
		"     1 | 2025-02-01 | £500,000.00 | £0.00 | £5,000.00 | £0.00 | £0.00 | £505,000.00 |",
		"    12 | 2026-01-01 | £555,000.00 | £0.00 | £5,000.00 | £0.00 | £0.00 | £560,000.00 |",
	}
	for _, fragment := range expected {
		assert.Contains(t, output, fragment)
	}
	assert.NotContains(t, output, "Interest savings:")
	assert.NotContains(t, output, "Warnings:")
}

func TestWritePrettyNotesAndSolver(t *testing.T) {
	calc := bridgeCalculation(t)
	calc.Result.Warnings = []loans.NormalizationWarning{
		{Field: "loan_term", Value: "twelve", Default: "12", Message: "not a whole number of months"},
	}
	calc.Advisories = []string{"Loan 'Bridge' ends above the 55.00% LTV ceiling (56.00%)"}
	calc.Solver = &optimization.Summary{
		TargetName:      "Bridge",
		Field:           "capital_repayment",
		OriginalDisplay: "£1,000.00",
		ValueDisplay:    "£41,666.67",
		Iterations:      22,
		Converged:       true,
	}

	var buf bytes.Buffer
	WritePretty(&buf, []calculation.Calculation{calc, calc})
	output := buf.String()

	assert.Contains(t, output, "  - loan_term: not a whole number of months (using 12)")
	assert.Contains(t, output, "  - Loan 'Bridge' ends above the 55.00% LTV ceiling (56.00%)")
	assert.Contains(t, output, "  - Bridge (capital_repayment): £1,000.00 -> £41,666.67 after 22 iterations, converged")
	assert.Equal(t, 2, strings.Count(output, "--- Results for loan Bridge ---"))
}

func TestWritePrettyEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	WritePretty(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestCsvString(t *testing.T) {
	calc := bridgeCalculation(t)
	other := calc
	other.Name = `Bridge "B"`

	output := CsvString([]calculation.Calculation{calc, other})
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 25)

	assert.Equal(t, `"loan","period","date","opening_balance","tranche_release","interest","principal","payment","closing_balance","notes"`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1],
		`"Bridge","1","2025-02-01","500000.00","0.00","5000.00","0.00","0.00","505000.00","`), lines[1])
	assert.True(t, strings.HasPrefix(lines[13], `"Bridge ""B""","1",`), lines[13])
}

func TestCsvFormatMatchesCsvString(t *testing.T) {
	results := []calculation.Calculation{bridgeCalculation(t)}

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	CsvFormat(results)

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	assert.Equal(t, CsvString(results), buf.String())
}

func TestWriteJSON(t *testing.T) {
	calc := bridgeCalculation(t)
	calc.Advisories = []string{"advisory"}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []calculation.Calculation{calc}))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Bridge", decoded[0]["name"])
	assert.Equal(t, []interface{}{"advisory"}, decoded[0]["advisories"])
	assert.NotContains(t, decoded[0], "solver")

	result := decoded[0]["result"].(map[string]interface{})
	assert.Equal(t, "500000", result["grossAmount"])
	assert.Equal(t, "500000", result["gross_amount"])
	assert.Len(t, result["payment_schedule"], 12)
}
