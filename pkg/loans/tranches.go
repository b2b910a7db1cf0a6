package loans

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/iwvelando/loan-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Release is a single capital release of a development loan.
type Release struct {
	Date   time.Time
	Period int
	Amount decimal.Decimal
	Rate   decimal.Decimal
	Label  string
}

// HasExplicitTranches reports whether the caller supplied the release list.
func (r CalculationRequest) HasExplicitTranches() bool {
	return len(r.Tranches) > 0
}

// ExplicitNetAmount is the day 1 advance plus every explicit tranche.
func (r CalculationRequest) ExplicitNetAmount() decimal.Decimal {
	total := r.Day1Advance
	for _, t := range r.Tranches {
		total = total.Add(t.Amount)
	}
	return total
}

// PlanReleases returns the capital releases of a development loan drawing
// net in total, ordered by date. Other loan types release nothing.
func PlanReleases(req CalculationRequest, net decimal.Decimal) ([]Release, error) {
	if req.LoanType != LoanTypeDevelopment {
		return nil, nil
	}
	periods := req.Periods()
	if len(periods) == 0 {
		return nil, nil
	}
	if req.HasExplicitTranches() {
		return explicitReleases(req, periods)
	}
	return progressiveReleases(req, periods, net)
}

// progressiveReleases spreads net across the term: the day 1 advance in month
// 1, equal pence-rounded releases in the intermediate months and the exact
// remainder in the final month so the releases always sum to net.
func progressiveReleases(req CalculationRequest, periods []Period, net decimal.Decimal) ([]Release, error) {
	term := req.LoanTerm
	if term == 1 {
		return []Release{req.release(periods, 1, net, "full advance")}, nil
	}
	if req.Day1Advance.GreaterThan(net) {
		return nil, NewValidationError("day1_advance", "day 1 advance %s exceeds net amount %s",
			req.Day1Advance.StringFixed(constants.CurrencyPlaces), net.StringFixed(constants.CurrencyPlaces))
	}

	remaining := net.Sub(req.Day1Advance)
	monthly := remaining.DivRound(decimal.NewFromInt(int64(term-1)), constants.CurrencyPlaces)
	final := remaining.Sub(monthly.Mul(decimal.NewFromInt(int64(term - 2))))

	releases := make([]Release, 0, term)
	releases = append(releases, req.release(periods, 1, req.Day1Advance, "day 1 advance"))
	for month := 2; month < term; month++ {
		releases = append(releases, req.release(periods, month, monthly, fmt.Sprintf("tranche %d", month)))
	}
	releases = append(releases, req.release(periods, term, final, fmt.Sprintf("tranche %d", term)))
	return releases, nil
}

func explicitReleases(req CalculationRequest, periods []Period) ([]Release, error) {
	maturity := periods[len(periods)-1].End
	releases := make([]Release, 0, len(req.Tranches)+1)
	if req.Day1Advance.IsPositive() {
		releases = append(releases, req.release(periods, 1, req.Day1Advance, "day 1 advance"))
	}

	for i, tranche := range req.Tranches {
		field := fmt.Sprintf("tranches[%d]", i)
		date := tranche.ReleaseDate
		if date.IsZero() {
			if tranche.MonthIndex < 1 || tranche.MonthIndex > req.LoanTerm {
				return nil, NewValidationError(field, "month %d is outside the %d month term", tranche.MonthIndex, req.LoanTerm)
			}
			date = datetime.AddMonths(req.StartDate, tranche.MonthIndex-1)
		}
		date = datetime.Date(date)
		if date.Before(req.StartDate) || !date.Before(maturity) {
			return nil, NewValidationError(field, "release date %s is outside the loan term %s to %s",
				datetime.Format(date), datetime.Format(req.StartDate), datetime.Format(maturity))
		}

		rate := req.AnnualRate
		if tranche.RateOverride != nil {
			rate = *tranche.RateOverride
		}
		label := tranche.Description
		if label == "" {
			label = fmt.Sprintf("tranche %d", i+1)
		}
		releases = append(releases, Release{
			Date:   date,
			Period: periodFor(periods, date),
			Amount: tranche.Amount,
			Rate:   rate,
			Label:  label,
		})
	}

	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].Date.Before(releases[j].Date)
	})
	return releases, nil
}

// release places a month-indexed release at the start of that loan month.
func (r CalculationRequest) release(periods []Period, month int, amount decimal.Decimal, label string) Release {
	date := datetime.AddMonths(r.StartDate, month-1)
	return Release{
		Date:   date,
		Period: periodFor(periods, date),
		Amount: amount,
		Rate:   r.AnnualRate,
		Label:  label,
	}
}

// TotalReleased sums a release plan.
func TotalReleased(releases []Release) decimal.Decimal {
	total := decimal.Zero
	for _, r := range releases {
		total = total.Add(r.Amount)
	}
	return mathutil.NonNegative(total)
}
