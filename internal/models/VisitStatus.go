package models

// VisitStatus is the two-state domain view of the raw tri-state status
// column (NULL / "" / marker). The raw representation only exists at the
// store boundary.
type VisitStatus string

const (
	VisitPending   VisitStatus = "pending"
	VisitCompleted VisitStatus = "completed"
)

// StatusOf collapses a raw status value to the domain enum.
func StatusOf(raw string) VisitStatus {
	if raw == StatusCompletedMarker {
		return VisitCompleted
	}
	return VisitPending
}
