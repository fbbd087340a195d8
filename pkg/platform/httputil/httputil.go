package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": DomainCodeToHTTPCode(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeCredentialNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict,
		dErrors.CodeBatchRejected,
		dErrors.CodeBatchNotInspected,
		dErrors.CodeInspectionNotPassed,
		dErrors.CodeCredentialAlreadyIssued:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeExternalService:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the JSON error code.
// Issuance precondition codes are surfaced upper-case so clients can branch on them.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "NOT_FOUND"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "BAD_REQUEST"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "VALIDATION_ERROR"
	case dErrors.CodeConflict:
		return "INVALID_TRANSITION"
	case dErrors.CodeUnauthorized:
		return "UNAUTHORIZED"
	case dErrors.CodeForbidden:
		return "FORBIDDEN"
	case dErrors.CodeBatchRejected:
		return "BATCH_REJECTED"
	case dErrors.CodeBatchNotInspected:
		return "BATCH_NOT_INSPECTED"
	case dErrors.CodeInspectionNotPassed:
		return "INSPECTION_NOT_PASSED"
	case dErrors.CodeCredentialAlreadyIssued:
		return "CREDENTIAL_ALREADY_ISSUED"
	case dErrors.CodeCredentialNotFound:
		return "CREDENTIAL_NOT_FOUND"
	case dErrors.CodeExternalService:
		return "EXTERNAL_SERVICE_ERROR"
	case dErrors.CodeTimeout:
		return "TIMEOUT"
	default:
		return "INTERNAL_ERROR"
	}
}

// RequireActor extracts the authenticated actor from context.
// A missing actor behind the auth middleware is a wiring bug, reported as internal.
func RequireActor(ctx context.Context, logger *slog.Logger) (domain.Actor, error) {
	actor, ok := requestcontext.Actor(ctx)
	if !ok {
		if logger != nil {
			logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
				"request_id", requestcontext.RequestID(ctx))
		}
		return domain.Actor{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return actor, nil
}
