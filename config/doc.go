// Package config loads client settings from the environment and optional
// .env files.
//
// Every setting has a GUIDELINELY_ variable and a default:
//
//	GUIDELINELY_API_BASE          service root (https://guidelines.1681248.com/api/v1)
//	GUIDELINELY_API_KEY           credential; ${VAR} and secretref: values are resolved
//	GUIDELINELY_TIMEOUT           per-call timeout, seconds or a duration (30)
//	GUIDELINELY_CACHE_DIR         cache directory (~/.guidelinely_cache)
//	GUIDELINELY_CACHE_TTL         single-calculation TTL (24h), 0 disables
//	GUIDELINELY_BATCH_CACHE_TTL   batch TTL (168h), 0 disables
//	GUIDELINELY_RETRIES           transport retries (0)
//	GUIDELINELY_LOG_LEVEL         debug|info|warn|error, empty disables logging
//	GUIDELINELY_TRACE_EXPORTER    otlp|jaeger|stdout|none
//	GUIDELINELY_METRICS_EXPORTER  otlp|prometheus|stdout|none
//
// Variables in the process environment take precedence over a .env file.
package config
