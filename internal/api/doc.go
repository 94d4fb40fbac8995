// Package api contains the HTTP handlers for the AI endpoints. Handlers
// decode and validate requests, call the insight service, and translate
// service errors into sanitized JSON responses.
package api
