// Package config loads and validates application settings from an optional
// config file and JOURNAL_-prefixed environment variables. All tunables for
// the upstream LLM (pacing, retries, timeouts) and the per-tier daily
// quotas live here so deployments can adjust them without code changes.
package config
