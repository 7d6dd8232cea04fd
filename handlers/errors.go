package handlers

import (
	"errors"
	"net/http"

	"sample-app/logger"
	"sample-app/services"

	"go.uber.org/zap"
)

// routeClass groups routes that answer store failures the same way.
type routeClass int

const (
	routeHealth routeClass = iota
	routeData
)

// storeStatus maps a store error kind to an HTTP status per route class.
// The health route reports the dependency as unavailable; data routes
// report a server error.
var storeStatus = map[routeClass]map[services.ErrorKind]int{
	routeHealth: {
		services.KindConnect:  http.StatusServiceUnavailable,
		services.KindQuery:    http.StatusServiceUnavailable,
		services.KindCanceled: http.StatusServiceUnavailable,
	},
	routeData: {
		services.KindConnect:  http.StatusInternalServerError,
		services.KindQuery:    http.StatusInternalServerError,
		services.KindCanceled: http.StatusInternalServerError,
	},
}

// redactedMessages replace driver text when REDACT_ERRORS is set
var redactedMessages = map[services.ErrorKind]string{
	services.KindConnect:  "database unavailable",
	services.KindQuery:    "database query failed",
	services.KindCanceled: "request canceled",
}

func storeErrorStatus(route routeClass, err error) int {
	if status, ok := storeStatus[route][services.KindOf(err)]; ok {
		return status
	}
	if route == routeHealth {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errorMessage is the text sent to clients for err.
func (h *Handler) errorMessage(err error) string {
	if !h.cfg.RedactErrors {
		return err.Error()
	}
	if msg, ok := redactedMessages[services.KindOf(err)]; ok {
		return msg
	}
	return "internal error"
}

func logStoreError(endpoint string, err error, message string) {
	fields := []zap.Field{
		zap.String(LogFieldEndpoint, endpoint),
		zap.Error(err),
	}
	var se *services.StoreError
	if errors.As(err, &se) {
		fields = append(fields,
			zap.String(LogFieldOperation, se.Op),
			zap.String(LogFieldErrorKind, se.Kind.String()),
		)
	}
	logger.Logger.Error(message, fields...)
}
