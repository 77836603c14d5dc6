package interfaces

import (
	"context"

	"github.com/secmon-lab/kujo/pkg/domain/model"
)

// Dashboard is the use case behind the dashboard page, the CLI and the assistant
type Dashboard interface {
	// Options returns the selectable values observed in the loaded table
	Options(ctx context.Context) (*model.Options, error)

	// Query filters the loaded table and summarises the result.
	// A nil filter selects the table's default filter.
	Query(ctx context.Context, filter *model.Filter) (*model.DashboardView, error)

	// Submit appends a new complaint and returns the stored record
	Submit(ctx context.Context, req model.ComplaintRequest) (*model.Complaint, error)

	// Ask answers a question about the filtered rows with the external chat model
	Ask(ctx context.Context, question model.Question) (*model.Answer, error)

	// Reload drops the cached table so that the next call reads the store again
	Reload(ctx context.Context)
}
