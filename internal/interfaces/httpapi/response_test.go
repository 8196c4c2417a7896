package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_DomainTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantReason string
	}{
		{name: "match locked", err: usecase.ErrMatchLocked, wantCode: http.StatusConflict, wantReason: "matchLocked"},
		{name: "sequential lock", err: usecase.ErrSequentialLockViolation, wantCode: http.StatusConflict, wantReason: "sequentialLockViolation"},
		{name: "transfer limit", err: usecase.ErrTransferLimitExceeded, wantCode: http.StatusConflict, wantReason: "transferLimitExceeded"},
		{name: "captain quota", err: usecase.ErrCaptainQuotaExceeded, wantCode: http.StatusConflict, wantReason: "captainQuotaExceeded"},
		{name: "vice quota", err: usecase.ErrViceCaptainQuotaExceeded, wantCode: http.StatusConflict, wantReason: "viceCaptainQuotaExceeded"},
		{name: "undo window", err: usecase.ErrUndoWindowClosed, wantCode: http.StatusConflict, wantReason: "undoWindowClosed"},
		{name: "performance pending", err: usecase.ErrPerformanceUnavailable, wantCode: http.StatusConflict, wantReason: "performanceUnavailable"},
		{name: "no prior lineup", err: usecase.ErrNoPriorLineup, wantCode: http.StatusNotFound, wantReason: "noPriorLineup"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, wantCode: http.StatusUnauthorized, wantReason: "unauthorized"},
		{name: "dependency", err: usecase.ErrDependencyUnavailable, wantCode: http.StatusServiceUnavailable, wantReason: "dependencyUnavailable"},
		{name: "unknown", err: fmt.Errorf("boom"), wantCode: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, reason, _ := mapError(tt.err)
			if code != tt.wantCode || reason != tt.wantReason {
				t.Fatalf("mapError(%v)=(%d,%q) want (%d,%q)", tt.err, code, reason, tt.wantCode, tt.wantReason)
			}
		})
	}
}
