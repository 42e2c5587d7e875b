package balance

import (
	"time"

	balanceerrors "leaveflow/internal/balance/errors"
)

// DayPolicy names the strategy used to count requested days. It is
// recorded on every request so downstream balance math stays consistent.
type DayPolicy string

const (
	// PolicyCalendar counts every day in the inclusive range.
	PolicyCalendar DayPolicy = "calendar"
	// PolicyBusiness counts the inclusive range excluding Saturday and Sunday.
	PolicyBusiness DayPolicy = "business"
)

func ParseDayPolicy(v string) (DayPolicy, error) {
	switch DayPolicy(v) {
	case PolicyCalendar, PolicyBusiness:
		return DayPolicy(v), nil
	case "":
		return PolicyBusiness, nil
	default:
		return "", balanceerrors.ErrInvalidDayPolicy
	}
}

// PTOBalance is the point-in-time balance for a team member.
// Remaining never goes below zero even when consumption was overridden
// past the allowance.
type PTOBalance struct {
	AnnualPTO    int `json:"annual_pto"`
	UsedPTO      int `json:"used_pto"`
	RemainingPTO int `json:"remaining_pto"`
}

// BalanceCheck is advisory: insufficiency is a flag for the reviewer,
// never an error.
type BalanceCheck struct {
	Sufficient bool       `json:"sufficient"`
	Balance    PTOBalance `json:"balance"`
}

// ComputeDays counts the days in the inclusive [start, end] range under
// the given policy.
func ComputeDays(start, end time.Time, policy DayPolicy) (int, error) {
	if end.Before(start) {
		return 0, balanceerrors.ErrInvalidDateRange
	}

	switch policy {
	case PolicyCalendar:
		return int(end.Sub(start).Hours()/24) + 1, nil
	case PolicyBusiness:
		days := 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
				days++
			}
		}
		return days, nil
	default:
		return 0, balanceerrors.ErrInvalidDayPolicy
	}
}

// CheckBalance reports whether the balance covers the requested days.
func CheckBalance(bal PTOBalance, days int) BalanceCheck {
	return BalanceCheck{
		Sufficient: days <= bal.RemainingPTO,
		Balance:    bal,
	}
}
