// Package handlers provides HTTP request handlers for the workshop sample app.
//
// Overview
//
// The service exposes a liveness check, a store health check, list/create
// operations on the items table, an environment info endpoint and a
// snapshot export. Handlers are organized by functionality:
//   - health.go: liveness and store health endpoints
//   - items.go: item list, create and export endpoints
//   - info.go: process and environment facts
//   - fallback.go: unmatched routes
//
// Request Flow
//
// Data handlers follow the same pattern:
//   1. Parse and validate the request (create only)
//   2. Call the store through the ItemStore interface
//   3. Map store errors to an HTTP status in errors.go
//   4. Update cache, events and metrics on success
//   5. Write a JSON body
//
// Error Handling
//
// Every failure is answered with a JSON body:
//   - 400: Bad Request (name missing)
//   - 404: Not Found (unmatched route or method)
//   - 500: Internal Server Error (store failure on data routes, panics)
//   - 503: Service Unavailable (store failure on /health/db, export not configured)
//
// The store's error text is passed through to clients unless
// REDACT_ERRORS is set.
//
// Constants
//
// Log field keys are defined as constants for consistency:
//   - LogFieldEndpoint: API endpoint name
//   - LogFieldOperation: store operation
//   - LogFieldErrorKind: store error classification
//   - LogFieldItemID: item identifier
//   - LogFieldCount: number of items
//   - LogFieldDurationMs: handler duration in milliseconds
package handlers
