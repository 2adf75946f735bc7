package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/0xweirdlabs/fastapi.prod.starter/api/responses"
	pkgerrors "github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/logger"
)

// Pinger is any dependency with a connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is the unauthenticated liveness probe.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "healthy"})
	}
}

// HealthReady checks every backing dependency and aggregates the failures.
// Nil pingers (an unconfigured redis, say) are skipped.
func HealthReady(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var errs error
		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
				failed[name] = err.Error()
			}
		}

		if errs != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed").
				WithDetails(failed)
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
