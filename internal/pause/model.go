package pause

import "time"

// Pause is one pause interval. EndDate is nil while the pause is open.
type Pause struct {
	ID        int        `db:"id" json:"id"`
	MemberID  int        `db:"member_id" json:"member_id"`
	StartDate time.Time  `db:"pause_start_date" json:"pause_start_date"`
	EndDate   *time.Time `db:"pause_end_date" json:"pause_end_date,omitempty"`
	Reason    *string    `db:"pause_reason" json:"pause_reason,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
