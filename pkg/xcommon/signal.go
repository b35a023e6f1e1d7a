package xcommon

import (
	"context"
	"os/signal"
	"syscall"
)

// SignalContext SIGINT/SIGTERM时取消ctx
func SignalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
