package dashboard

import (
	"time"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// StatementWindow resolves the credit-card billing window that is "current" for
// the viewed month.
//
// The bill closes on closingDay. On or after the closing day of today's month
// the window runs from closingDay of referenceMonth to the day before closingDay
// of the following month; before it, the window is the one ending in
// referenceMonth. The year is always taken from today, and month arithmetic
// wraps across years.
func StatementWindow(referenceMonth int, today time.Time, closingDay int) domain.StatementWindow {
	y := today.Year()
	m := time.Month(referenceMonth)
	if today.Day() < closingDay {
		m--
	}
	return domain.StatementWindow{
		Start: domain.Date(y, m, closingDay),
		End:   domain.Date(y, m+1, closingDay-1),
	}
}
