package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "fantasy-cricket"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, envelope googleResponseEnvelope) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(envelope)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, statusCode, googleResponseEnvelope{
		APIVersion: apiVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	statusCode, reason, status := mapError(err)
	writeJSON(ctx, w, statusCode, googleResponseEnvelope{
		APIVersion: apiVersion,
		Error: &googleErrorBody{
			Code:    statusCode,
			Message: err.Error(),
			Status:  status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const message = "internal server error"
	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: apiVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: message,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: message,
				},
			},
		},
	})
}

func mapError(err error) (statusCode int, reason string, status string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"
	case errors.Is(err, squad.ErrInvalidComposition):
		return http.StatusBadRequest, "invalidComposition", "INVALID_ARGUMENT"
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, "notFound", "NOT_FOUND"
	case errors.Is(err, usecase.ErrNoPriorLineup):
		return http.StatusNotFound, "noPriorLineup", "NOT_FOUND"
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"
	case errors.Is(err, usecase.ErrMatchLocked):
		return http.StatusConflict, "matchLocked", "FAILED_PRECONDITION"
	case errors.Is(err, usecase.ErrSequentialLockViolation):
		return http.StatusConflict, "sequentialLockViolation", "FAILED_PRECONDITION"
	case errors.Is(err, usecase.ErrTransferLimitExceeded):
		return http.StatusConflict, "transferLimitExceeded", "FAILED_PRECONDITION"
	case errors.Is(err, usecase.ErrCaptainQuotaExceeded):
		return http.StatusConflict, "captainQuotaExceeded", "FAILED_PRECONDITION"
	case errors.Is(err, usecase.ErrViceCaptainQuotaExceeded):
		return http.StatusConflict, "viceCaptainQuotaExceeded", "FAILED_PRECONDITION"
	case errors.Is(err, usecase.ErrUndoWindowClosed):
		return http.StatusConflict, "undoWindowClosed", "FAILED_PRECONDITION"
	case errors.Is(err, usecase.ErrPerformanceUnavailable):
		return http.StatusConflict, "performanceUnavailable", "FAILED_PRECONDITION"
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "internalError", "INTERNAL"
	}
}
