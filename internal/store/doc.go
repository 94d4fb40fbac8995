// Package store defines the persistence interfaces and sentinel errors used
// by the rest of the application: the user profile store that backs quota
// metering, and the AI response cache. Implementations live under
// internal/platform; consumers depend only on these interfaces.
package store
