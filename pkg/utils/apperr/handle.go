package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
)

// Handle logs an error that is not returned to any caller
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	logger := ctxlog.From(ctx)
	logger.Error("application error", "error", err)
}
