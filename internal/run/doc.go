// Package run holds the per-run session state shared between the worker
// goroutine and the operator front-end.
//
// A Session is created for one end-to-end invocation of the download or
// convert workflow and discarded afterwards. The only state shared across
// goroutines is the cancellation flag and the run-level conflict decision
// override; both are safe for concurrent access. Conflict prompts are
// delivered to the front-end as a blocking request/response exchange.
package run
