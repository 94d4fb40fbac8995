// Package domain holds the core business entities of the journal service,
// chiefly the user profile with its subscription tier and daily AI usage
// counter. Entities validate themselves and carry no infrastructure
// concerns.
package domain
