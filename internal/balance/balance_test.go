package balance_test

import (
	"testing"
	"time"

	"leaveflow/internal/balance"
	balanceerrors "leaveflow/internal/balance/errors"

	"github.com/stretchr/testify/assert"
)

func date(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", v)
	assert.NoError(t, err)
	return d
}

func TestComputeDays_BusinessPolicy(t *testing.T) {
	// Mon 2025-06-02 .. Fri 2025-06-06, a full working week.
	days, err := balance.ComputeDays(date(t, "2025-06-02"), date(t, "2025-06-06"), balance.PolicyBusiness)
	assert.NoError(t, err)
	assert.Equal(t, 5, days)

	// Fri .. Mon spans a weekend: only Fri and Mon count.
	days, err = balance.ComputeDays(date(t, "2025-06-06"), date(t, "2025-06-09"), balance.PolicyBusiness)
	assert.NoError(t, err)
	assert.Equal(t, 2, days)

	// Saturday alone counts zero.
	days, err = balance.ComputeDays(date(t, "2025-06-07"), date(t, "2025-06-07"), balance.PolicyBusiness)
	assert.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestComputeDays_CalendarPolicy(t *testing.T) {
	days, err := balance.ComputeDays(date(t, "2025-06-02"), date(t, "2025-06-06"), balance.PolicyCalendar)
	assert.NoError(t, err)
	assert.Equal(t, 5, days)

	// Calendar counting includes the weekend.
	days, err = balance.ComputeDays(date(t, "2025-06-06"), date(t, "2025-06-09"), balance.PolicyCalendar)
	assert.NoError(t, err)
	assert.Equal(t, 4, days)

	days, err = balance.ComputeDays(date(t, "2025-06-02"), date(t, "2025-06-02"), balance.PolicyCalendar)
	assert.NoError(t, err)
	assert.Equal(t, 1, days)
}

func TestComputeDays_InvertedRange(t *testing.T) {
	_, err := balance.ComputeDays(date(t, "2025-06-06"), date(t, "2025-06-02"), balance.PolicyBusiness)
	assert.ErrorIs(t, err, balanceerrors.ErrInvalidDateRange)

	_, err = balance.ComputeDays(date(t, "2025-06-06"), date(t, "2025-06-02"), balance.PolicyCalendar)
	assert.ErrorIs(t, err, balanceerrors.ErrInvalidDateRange)
}

func TestComputeDays_UnknownPolicy(t *testing.T) {
	_, err := balance.ComputeDays(date(t, "2025-06-02"), date(t, "2025-06-06"), balance.DayPolicy("fiscal"))
	assert.ErrorIs(t, err, balanceerrors.ErrInvalidDayPolicy)
}

func TestParseDayPolicy(t *testing.T) {
	p, err := balance.ParseDayPolicy("calendar")
	assert.NoError(t, err)
	assert.Equal(t, balance.PolicyCalendar, p)

	p, err = balance.ParseDayPolicy("business")
	assert.NoError(t, err)
	assert.Equal(t, balance.PolicyBusiness, p)

	// Empty picks the default.
	p, err = balance.ParseDayPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, balance.PolicyBusiness, p)

	_, err = balance.ParseDayPolicy("fiscal")
	assert.ErrorIs(t, err, balanceerrors.ErrInvalidDayPolicy)
}

func TestCheckBalance(t *testing.T) {
	bal := balance.PTOBalance{AnnualPTO: 20, UsedPTO: 10, RemainingPTO: 10}

	check := balance.CheckBalance(bal, 5)
	assert.True(t, check.Sufficient)
	assert.Equal(t, bal, check.Balance)

	check = balance.CheckBalance(bal, 10)
	assert.True(t, check.Sufficient)

	check = balance.CheckBalance(bal, 11)
	assert.False(t, check.Sufficient)
}

func TestBalanceSnapshot_FloorsAtZero(t *testing.T) {
	b := balance.Balance{AnnualPTO: 10, UsedPTO: 12}
	snapshot := b.Snapshot()
	assert.Equal(t, 10, snapshot.AnnualPTO)
	assert.Equal(t, 12, snapshot.UsedPTO)
	assert.Equal(t, 0, snapshot.RemainingPTO)
}
