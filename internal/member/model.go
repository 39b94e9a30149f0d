package member

import "time"

type Member struct {
	ID              int        `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           *string    `db:"email" json:"email,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	PassportID      *string    `db:"passport_id" json:"passport_id,omitempty"`
	NationalityID   *string    `db:"nationality_id" json:"nationality_id,omitempty"`
	PlanType        string     `db:"plan_type" json:"plan_type"`
	PlanDuration    *int       `db:"plan_duration" json:"plan_duration,omitempty"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	OriginalEndDate *time.Time `db:"original_end_date" json:"original_end_date,omitempty"`
	CurrentEndDate  *time.Time `db:"current_end_date" json:"current_end_date,omitempty"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	IsPaused        bool       `db:"is_paused" json:"is_paused"`
	PauseCount      int        `db:"pause_count" json:"pause_count"`
	RemainingVisits *int       `db:"remaining_visits" json:"remaining_visits,omitempty"`
	UsedVisits      int        `db:"used_visits" json:"used_visits"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// ProfileUpdate holds the fields staff may edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name          *string `json:"name" binding:"omitempty,min=1"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
	PassportID    *string `json:"passport_id"`
	NationalityID *string `json:"nationality_id"`
	IsActive      *bool   `json:"is_active"`
}

type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
