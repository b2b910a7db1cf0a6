package loans

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Schedule is the output of one run of the period loop.
type Schedule struct {
	Rows           []ScheduleRow
	TotalInterest  decimal.Decimal
	TotalPayments  decimal.Decimal
	TotalReleased  decimal.Decimal
	ClosingBalance decimal.Decimal
	// Truncated is set when the balance cleared before the final period.
	Truncated bool
}

// ledgerLine is one principal amount accruing at its own rate: the gross for
// bridge and term loans, each release for development loans.
type ledgerLine struct {
	release     Release
	principal   decimal.Decimal
	capitalized decimal.Decimal
	accrued     decimal.Decimal
	drawn       bool
}

func (l *ledgerLine) balance() decimal.Decimal {
	return l.principal.Add(l.capitalized).Add(l.accrued)
}

// BuildSchedule runs the period loop for req with the resolved gross and net
// amounts.
func (c *Calculator) BuildSchedule(req CalculationRequest, gross, net decimal.Decimal) (Schedule, error) {
	periods := req.Periods()
	var schedule Schedule
	if len(periods) == 0 {
		return schedule, nil
	}

	var releases []Release
	if req.LoanType == LoanTypeDevelopment {
		var err error
		releases, err = PlanReleases(req, net)
		if err != nil {
			return schedule, fmt.Errorf("planning releases: %w", err)
		}
	} else {
		releases = []Release{{
			Date:   req.StartDate,
			Period: 1,
			Amount: gross,
			Rate:   req.AnnualRate,
			Label:  "gross advance",
		}}
	}

	lines := make([]*ledgerLine, len(releases))
	for i, r := range releases {
		lines[i] = &ledgerLine{release: r, principal: r.Amount}
	}

	strategy := NewStrategy(req)
	convention := req.Convention()
	capitalizeEvery := convention.Type.capitalizationMonths()
	timing := req.PaymentTiming

	// Bridge and term loans are drawn in full before the first period opens.
	opening := decimal.Zero
	if req.LoanType != LoanTypeDevelopment {
		lines[0].drawn = true
		opening = gross
	}

	schedule.Rows = make([]ScheduleRow, 0, len(periods))
	for i, period := range periods {
		final := i == len(periods)-1

		release := decimal.Zero
		for _, line := range lines {
			if !line.drawn && line.release.Period == period.Number {
				line.drawn = true
				release = release.Add(line.principal)
			}
		}

		interest := decimal.Zero
		base := decimal.Zero
		active := 0
		for _, line := range lines {
			if !line.drawn {
				continue
			}
			span := period.Span
			if line.release.Date.After(period.Start) {
				span = NewSpan(line.release.Date, period.End)
			}
			lineBase := line.principal
			if strategy.CapitalizesInterest() {
				lineBase = lineBase.Add(line.capitalized)
			}
			accrued := InterestForSpan(lineBase, line.release.Rate, span, convention)
			line.accrued = line.accrued.Add(accrued)
			interest = interest.Add(accrued)
			base = base.Add(lineBase)
			active++
		}

		outcome := strategy.Settle(PeriodInput{
			Opening:  opening,
			Release:  release,
			Interest: interest,
		})

		if strategy.CapitalizesInterest() {
			applyPayment(lines, outcome.Principal, true)
			if capitalizeEvery > 0 && (period.MonthsElapsed%capitalizeEvery == 0 || final) {
				for _, line := range lines {
					line.capitalized = line.capitalized.Add(line.accrued)
					line.accrued = decimal.Zero
				}
			}
		} else {
			for _, line := range lines {
				line.accrued = decimal.Zero
			}
			applyPayment(lines, outcome.Principal, false)
		}

		closing := decimal.Zero
		for _, line := range lines {
			if line.drawn {
				closing = closing.Add(line.balance())
			}
		}

		row := ScheduleRow{
			PeriodNumber:     period.Number,
			Date:             rowDate(period, timing),
			PeriodStart:      period.Start,
			PeriodEnd:        period.End,
			Days:             datetime.DaysBetween(period.Start, period.End),
			OpeningBalance:   opening,
			TrancheRelease:   release,
			InterestAmount:   interest,
			PrincipalPayment: outcome.Principal,
			TotalPayment:     outcome.Payment,
			ClosingBalance:   closing,
			CalculationNote:  describePeriod(req, period, base, active, interest, outcome),
		}
		schedule.Rows = append(schedule.Rows, row)
		schedule.TotalInterest = schedule.TotalInterest.Add(interest)
		schedule.TotalPayments = schedule.TotalPayments.Add(outcome.Payment)
		schedule.TotalReleased = schedule.TotalReleased.Add(release)
		schedule.ClosingBalance = closing
		opening = closing

		if strategy.Truncates() && !final && closing.Sign() <= 0 && allDrawn(lines) {
			c.logger.Debug(fmt.Sprintf("balance cleared in period %d of %d, truncating schedule",
				period.Number, len(periods)),
				zap.String("op", "loans.BuildSchedule"),
			)
			schedule.Truncated = true
			break
		}
	}

	c.logger.Debug(fmt.Sprintf("built %d period %s schedule with %s interest",
		len(schedule.Rows), req.RepaymentOption, schedule.TotalInterest.StringFixed(constants.CurrencyPlaces)),
		zap.String("op", "loans.BuildSchedule"),
	)
	return schedule, nil
}

// applyPayment reduces the drawn lines oldest first. When interest is carried
// in the balance a payment clears accrued interest, then capitalized interest,
// then principal.
func applyPayment(lines []*ledgerLine, amount decimal.Decimal, includeInterest bool) {
	remaining := amount
	if includeInterest {
		for _, line := range lines {
			if !line.drawn {
				continue
			}
			line.accrued, remaining = deduct(line.accrued, remaining)
		}
		for _, line := range lines {
			if !line.drawn {
				continue
			}
			line.capitalized, remaining = deduct(line.capitalized, remaining)
		}
	}
	for _, line := range lines {
		if !line.drawn {
			continue
		}
		line.principal, remaining = deduct(line.principal, remaining)
	}
}

// deduct takes as much of amount as value allows and returns what is left of
// each.
func deduct(value, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !amount.IsPositive() || !value.IsPositive() {
		return value, amount
	}
	if amount.GreaterThanOrEqual(value) {
		return decimal.Zero, amount.Sub(value)
	}
	return value.Sub(amount), decimal.Zero
}

func allDrawn(lines []*ledgerLine) bool {
	for _, line := range lines {
		if !line.drawn {
			return false
		}
	}
	return true
}

func describePeriod(req CalculationRequest, period Period, base decimal.Decimal, active int,
	interest decimal.Decimal, outcome PeriodOutcome) string {
	var b strings.Builder
	if active > 1 {
		fmt.Fprintf(&b, "%d tranches, ", active)
	}
	fmt.Fprintf(&b, "%s x %s%% %s over %s = %s; %s",
		base.StringFixed(constants.CurrencyPlaces),
		req.AnnualRate.String(),
		req.InterestType,
		period.Span,
		interest.StringFixed(constants.CurrencyPlaces),
		outcome.Note,
	)
	return b.String()
}

// rowDate is the payment date of a period: its end in arrears, its start in
// advance.
func rowDate(period Period, timing PaymentTiming) time.Time {
	if timing == PaymentInAdvance {
		return period.Start
	}
	return period.End
}
