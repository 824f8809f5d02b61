package alert

import "context"

// UseCase consumes decoded alerts on behalf of the application.
type UseCase interface {
	Handle(ctx context.Context, a Alert) error
	// Shutdown waits for background deliveries started by Handle.
	Shutdown(ctx context.Context) error
}
