package types

import (
	"github.com/google/uuid"
)

// ComplaintID represents a complaint identifier
type ComplaintID string

// String returns the string representation
func (id ComplaintID) String() string {
	return string(id)
}

// NewComplaintID creates a new ComplaintID using UUID v7 so that IDs sort by creation time
func NewComplaintID() ComplaintID {
	id, err := uuid.NewV7()
	if err != nil {
		return ComplaintID(uuid.New().String())
	}
	return ComplaintID(id.String())
}
