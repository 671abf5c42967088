package srv

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/gsb/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service on its own goroutine. A service that
// fails to start is reported on the returned channel instead of killing the
// process, so ShutdownServices can still run the cleanups.
func StartServices(ctx context.Context, services []Service) <-chan error {
	logger := log.FromCtx(ctx)
	failures := make(chan error, len(services))
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed to start", service)
				failures <- fmt.Errorf("%T: %w", service, err)
			}
		}(service)
	}
	return failures
}

// ShutdownServices waits for ctx to end or a service to fail, then shuts the
// services down in reverse order of registration.
func ShutdownServices(ctx context.Context, services []Service, failures <-chan error) error {
	var cause error
	select {
	case <-ctx.Done():
	case cause = <-failures:
	}

	// ctx may already be cancelled; shutdown still needs a live logger context.
	shutdownCtx := context.WithoutCancel(ctx)

	errs := []error{cause}
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(shutdownCtx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
