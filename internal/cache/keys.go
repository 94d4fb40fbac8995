// Package cache derives the fingerprints AI responses are cached under.
//
// A fingerprint identifies a reusable response, not a unique request:
// collisions only cost an unrelated cached answer being served, so a fast
// non-cryptographic hash is sufficient. Callers treat cached responses as
// advisory, never authoritative.
package cache

import (
	"fmt"
	"hash/fnv"
)

// keyPrefix versions the derivation scheme so a future change to the hash
// input layout invalidates old entries instead of colliding with them.
const keyPrefix = "g1"

// DeriveKey returns the cache key for a call with no explicit key: a stable
// FNV-1a fingerprint of the prompt and system prompt. Identical inputs
// always produce the same key; changing either input changes it.
func DeriveKey(prompt, systemPrompt string) string {
	h := fnv.New64a()
	// The separator keeps ("ab","c") and ("a","bc") from hashing alike.
	_, _ = h.Write([]byte(prompt))
	_, _ = h.Write([]byte{0x1f})
	_, _ = h.Write([]byte(systemPrompt))
	return fmt.Sprintf("%s:%016x", keyPrefix, h.Sum64())
}

// EffectiveKey returns the explicit key verbatim when the caller supplied
// one (enabling cross-call sharing by business fingerprint), otherwise the
// derived key.
func EffectiveKey(explicit, prompt, systemPrompt string) string {
	if explicit != "" {
		return explicit
	}
	return DeriveKey(prompt, systemPrompt)
}
