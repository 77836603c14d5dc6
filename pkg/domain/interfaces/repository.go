package interfaces

//go:generate moq -out mocks/repository_mock.go -pkg mocks . Repository

import (
	"context"

	"github.com/secmon-lab/kujo/pkg/domain/model"
)

// Repository defines the interface for complaint persistence.
// Stores are append only: there is no key lookup, update or delete.
type Repository interface {
	// AppendComplaint stores one complaint after every existing one
	AppendComplaint(ctx context.Context, complaint *model.Complaint) error

	// ListComplaints returns every stored complaint in insertion order.
	// A store whose backing source does not exist returns an error tagged model.ErrTagNotFound.
	ListComplaints(ctx context.Context) ([]*model.Complaint, error)

	// Close closes the repository connection
	Close() error
}
