package checkin

import "time"

type FacilityType string

const (
	FacilityGym          FacilityType = "gym"
	FacilityCrossfit     FacilityType = "crossfit"
	FacilityFitnessClass FacilityType = "fitness_class"
)

// CheckIn is an append-only visit record.
type CheckIn struct {
	ID           int          `db:"id" json:"id"`
	MemberID     int          `db:"member_id" json:"member_id"`
	FacilityType FacilityType `db:"facility_type" json:"facility_type"`
	CheckInTime  time.Time    `db:"check_in_time" json:"check_in_time"`
	DeletedAt    *time.Time   `db:"deleted_at" json:"deleted_at,omitempty"`
}

type FacilityCount struct {
	FacilityType FacilityType `db:"facility_type" json:"facility_type"`
	Day          time.Time    `db:"day" json:"day"`
	Total        int          `db:"total" json:"total"`
}
