package feedback

import (
	"context"

	domfb "github.com/kailas-cloud/newsline/internal/domain/feedback"
)

// Updater sends one relevance update to the search backend.
type Updater interface {
	Update(ctx context.Context, u domfb.Update) error
}

// Enqueuer accepts updates for asynchronous delivery.
type Enqueuer interface {
	Dispatch(ctx context.Context, u domfb.Update) error
}
