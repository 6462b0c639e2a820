package srv

import (
	"context"
	"time"

	"github.com/sandevgo/rtbot/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Run starts every service and blocks until ctx is done or one of them
// fails to start. Services are then shut down in order. The returned error
// is the first start failure, if any.
func Run(parent context.Context, services []Service) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	StartServices(ctx, cancel, services)
	<-ctx.Done()

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()
	ShutdownServices(shutdownCtx, services)

	// parent still alive means a service failed
	if parent.Err() == nil {
		return context.Cause(ctx)
	}
	return nil
}

func StartServices(ctx context.Context, cancel context.CancelCauseFunc, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed", service)
				cancel(err)
			}
		}(service)
	}
}

func ShutdownServices(ctx context.Context, services []Service) {
	for _, service := range services {
		if err := service.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", service)
		}
	}
}
