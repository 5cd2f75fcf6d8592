package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/storefront/internal/pkg/stacktrace"
)

// handle runs handler with panic recovery and logs its failure.
func handle(ctx context.Context, driver string, handler Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	if err = handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "messaging handler failed", "driver", driver, "source", msg.Source, "id", msg.ID, "error", err)
	}

	return err
}
