// Package schedule decides when customers are due for their next newsletter.
package schedule

import (
	"time"

	"github.com/iterate-labs/newsletter-portal/internal/db"
)

// Interval days per frequency: weekly=7, biweekly=14, monthly=28.
func intervalDays(frequency string) int {
	switch frequency {
	case db.FrequencyWeekly:
		return 7
	case db.FrequencyMonthly:
		return 28
	default:
		return 14
	}
}

// IsCustomerDue reports whether enough days have passed since the customer's
// last successful run. A customer that has never run is always due.
func IsCustomerDue(customer *db.Customer, now time.Time) bool {
	if customer.LastRunAt == nil {
		return true
	}
	days := int(now.Sub(*customer.LastRunAt).Hours() / 24)
	return days >= intervalDays(customer.Frequency)
}
