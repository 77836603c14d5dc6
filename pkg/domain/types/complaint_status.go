package types

// ComplaintStatus represents the handling status of a complaint.
// Loaded files may carry any free text; only submissions are guaranteed to use a known value.
type ComplaintStatus string

const (
	ComplaintStatusNew        ComplaintStatus = "New"
	ComplaintStatusInProgress ComplaintStatus = "In Progress"
	ComplaintStatusResolved   ComplaintStatus = "Resolved"
)

// String returns the string representation of the status
func (s ComplaintStatus) String() string {
	return string(s)
}

// IsKnown checks if the status is one of the predefined values
func (s ComplaintStatus) IsKnown() bool {
	switch s {
	case ComplaintStatusNew, ComplaintStatusInProgress, ComplaintStatusResolved:
		return true
	default:
		return false
	}
}
