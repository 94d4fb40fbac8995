// Package gemini is the HTTP client for Google's generative-language API.
//
// This package is an infrastructure adapter: it translates the gateway's
// flat conversation transcript into Gemini's alternating user/model turn
// format, issues the generateContent call, and recovers from transient
// failures without exposing wire details to the rest of the application.
//
// Key components:
//
// 1. Client:
//   - Issues generateContent requests over plain HTTP
//   - Paces every outbound attempt through a shared request pacer
//   - Retries with exponential backoff, with a longer backoff schedule
//     for upstream 429 responses than for other transient failures
//
// 2. Message Adaptation:
//   - Converts a flat []Message transcript into alternating turns
//   - Rewrites a system-role entry into a synthetic leading user turn
//     plus a model acknowledgment, preserving alternation
//
// 3. Error Handling:
//   - Categorizes upstream failures as rate-limited or transient
//   - Treats a response with no extractable text as a failure, never
//     a success
package gemini
