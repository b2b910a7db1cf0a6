package loans

import (
	"time"

	"github.com/iwvelando/loan-engine/pkg/datetime"
)

// Period is one schedule interval.
type Period struct {
	Number int
	Start  time.Time
	End    time.Time
	Span   Span
	// MonthsElapsed counts loan months from the start date to End.
	MonthsElapsed int
}

// PeriodCount returns the number of schedule periods for the request.
func (r CalculationRequest) PeriodCount() int {
	if r.LoanTerm <= 0 {
		return 0
	}
	step := r.frequency().Months()
	return (r.LoanTerm + step - 1) / step
}

// Periods lays out the schedule intervals. Every boundary is offset from the
// start date rather than chained so month-end clamping never drifts. An end
// date replaces the final boundary.
func (r CalculationRequest) Periods() []Period {
	count := r.PeriodCount()
	step := r.frequency().Months()
	periods := make([]Period, 0, count)
	for n := 1; n <= count; n++ {
		fromMonth := (n - 1) * step
		toMonth := n * step
		if toMonth > r.LoanTerm {
			toMonth = r.LoanTerm
		}
		start := datetime.AddMonths(r.StartDate, fromMonth)
		end := datetime.AddMonths(r.StartDate, toMonth)
		span := Span{Start: start, End: end, Months: toMonth - fromMonth}
		if n == count && r.EndDate != nil {
			end = datetime.Date(*r.EndDate)
			span = NewSpan(start, end)
		}
		periods = append(periods, Period{
			Number:        n,
			Start:         start,
			End:           end,
			Span:          span,
			MonthsElapsed: toMonth,
		})
	}
	return periods
}

// MaturityDate is the end of the final period.
func (r CalculationRequest) MaturityDate() time.Time {
	periods := r.Periods()
	if len(periods) == 0 {
		return r.StartDate
	}
	return periods[len(periods)-1].End
}

// periodFor returns the number of the period containing date, or zero when
// the date falls outside the term.
func periodFor(periods []Period, date time.Time) int {
	for _, p := range periods {
		if !date.Before(p.Start) && date.Before(p.End) {
			return p.Number
		}
	}
	return 0
}

func (r CalculationRequest) frequency() PaymentFrequency {
	if r.PaymentFrequency.Valid() {
		return r.PaymentFrequency
	}
	return PaymentMonthly
}
