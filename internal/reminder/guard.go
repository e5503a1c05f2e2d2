package reminder

import (
	"time"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

// AlreadySentToday reports whether the loan's last successful reminder
// falls on today as seen in loc. The key is one email per loan per day,
// whatever the email type.
func AlreadySentToday(loan *domain.Loan, today time.Time, loc *time.Location) bool {
	if loan.LastReminderSentAt == nil {
		return false
	}
	return utils.SameDay(*loan.LastReminderSentAt, today, loc)
}
