// Package postgres implements the store interfaces on PostgreSQL via the
// pgx stdlib driver. It maps database errors to the store sentinel errors,
// enforces cache expiry at read time, and embeds the goose migrations that
// create the profiles and ai_response_cache tables.
package postgres
