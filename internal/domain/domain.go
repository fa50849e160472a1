package domain

// Status is the activation state shared by farmers, vendors and
// redemption centers.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the recognised status values.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}
