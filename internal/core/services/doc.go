// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Every service takes its logger explicitly; none keep package-level state.
// Calls to loaders and the embedding provider run under a RetryPolicy, and
// ingestion of one source key is serialised by a per-key lock.
package services
