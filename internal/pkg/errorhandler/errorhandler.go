package errorhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/logger"
	"github.com/hccc/gameroom-console/internal/pkg/response"
)

// HandleError logs the failure and writes an error envelope.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	level := zerolog.ErrorLevel
	if status < http.StatusInternalServerError {
		level = zerolog.WarnLevel
	}
	event := logger.FromContext(ctx).WithLevel(level).
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)
	if err != nil {
		event.Err(err)
	}
	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// HandleUpstream maps an error returned by the HCCC client to the console
// envelope. 4xx answers keep their status and the server's message; transport
// failures become 502 or 504.
func HandleUpstream(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		apiErr       *hccc.APIError
		transportErr *hccc.TransportError
	)

	switch {
	case errors.Is(err, context.Canceled):
		// client went away, nothing to write
		logger.FromContext(ctx).Debug().Err(err).Msg("Request canceled")
	case errors.Is(err, hccc.ErrNoToken):
		HandleError(ctx, w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token", err)
	case errors.As(err, &apiErr):
		LogExternalServiceError(ctx, apiErr)
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			response.Unauthorized(w, apiErr.Message)
		case apiErr.Status == http.StatusForbidden:
			response.Forbidden(w, apiErr.Message)
		case apiErr.Status == http.StatusNotFound:
			response.NotFound(w, apiErr.Message)
		case apiErr.Status == http.StatusConflict:
			response.Conflict(w, apiErr.Message)
		case apiErr.Status >= 400 && apiErr.Status < 500:
			response.Error(w, apiErr.Status, "UPSTREAM_REJECTED", apiErr.Message)
		default:
			response.BadGateway(w, apiErr.Message)
		}
	case errors.As(err, &transportErr) && transportErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		logger.FromContext(ctx).Error().Err(err).Msg("HCCC API timeout")
		response.GatewayTimeout(w)
	case errors.As(err, &transportErr):
		logger.FromContext(ctx).Error().Err(err).Str("kind", transportErr.Kind).Msg("HCCC API unreachable")
		response.BadGateway(w, "The gameroom service is unavailable")
	default:
		HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
	}
}

// UpstreamMessage is the user-facing text for an upstream failure, for
// channels that cannot carry an HTTP status such as live frames.
func UpstreamMessage(err error) string {
	var (
		apiErr       *hccc.APIError
		transportErr *hccc.TransportError
	)
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && apiErr.Message != "":
		return apiErr.Message
	case errors.As(err, &transportErr) && transportErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		return "The gameroom service did not respond in time"
	case errors.As(err, &apiErr), errors.As(err, &transportErr):
		return "The gameroom service is unavailable"
	}
	return "An unexpected error occurred"
}

// HandleValidation logs field errors and writes a 422 envelope.
func HandleValidation(ctx context.Context, w http.ResponseWriter, fieldErrors map[string]string) {
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
	response.ValidationError(w, fieldErrors)
}

// LogExternalServiceError logs a non-2xx answer from the HCCC API.
func LogExternalServiceError(ctx context.Context, apiErr *hccc.APIError) {
	level := zerolog.WarnLevel
	if apiErr.Status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	logger.FromContext(ctx).WithLevel(level).
		Str("external_service", "hccc").
		Str("method", apiErr.Method).
		Str("endpoint", apiErr.Path).
		Int("status_code", apiErr.Status).
		Str("message", truncateString(apiErr.Message, 1000)).
		Msg("External service error")
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "...<truncated>"
	}
	return s
}
