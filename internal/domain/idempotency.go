package domain

import "time"

// MarkerState is the lifecycle state of an idempotency marker.
type MarkerState string

const (
	MarkerPending  MarkerState = "pending"
	MarkerApplied  MarkerState = "applied"
	MarkerRejected MarkerState = "rejected"
)

// MarkerKey identifies one external event.
type MarkerKey struct {
	Source        string
	CorrelationID string
}

func (k MarkerKey) String() string {
	return k.Source + "/" + k.CorrelationID
}

// Marker records whether an intent has been applied.
type Marker struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Key       MarkerKey
	State     MarkerState
	Attempts  int
}

// Reclaimable reports whether another invocation may take over the marker.
// Pending markers are reclaimable once their lease has expired.
func (m *Marker) Reclaimable(now time.Time, lease time.Duration) bool {
	switch m.State {
	case MarkerRejected:
		return true
	case MarkerPending:
		return now.Sub(m.UpdatedAt) >= lease
	}
	return false
}

// BeginOutcome is the result of registering an intent with the guard.
type BeginOutcome int

const (
	BeginProceed BeginOutcome = iota
	BeginAlreadyApplied
	BeginInProgressConflict
)

func (o BeginOutcome) String() string {
	switch o {
	case BeginProceed:
		return "proceed"
	case BeginAlreadyApplied:
		return "already_applied"
	case BeginInProgressConflict:
		return "in_progress_conflict"
	}
	return "unknown"
}
