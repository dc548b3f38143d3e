package api

import (
	"errors"

	domrepo "TrueSignal/internal/domain/repository"
	"TrueSignal/internal/usecase"
	xhttp "TrueSignal/pkg/http"
)

// appError maps use case errors onto HTTP errors.
func appError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrTickerNotFound):
		return xhttp.NotFoundError("No matching company or ticker found.").WithError(err)
	case errors.Is(err, domrepo.ErrNotFound):
		return xhttp.NotFoundError("Not found.").WithError(err)
	case errors.Is(err, domrepo.ErrUpstreamTimeout):
		return xhttp.UpstreamTimeoutError("Market data request timed out.").WithError(err)
	case errors.Is(err, domrepo.ErrUpstream):
		return xhttp.UpstreamError("Market data provider failed.").WithError(err)
	default:
		return xhttp.InternalError("Internal server error").WithError(err)
	}
}
