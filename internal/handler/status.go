// Package handler is the resource-handler framework the harness dispatches
// deployments through. Modules contribute a ResourceHandler per resource type;
// the framework wraps it in a Provider that computes change sets, drives the
// CRUD calls, and records the outcome on a per-deployment Context.
package handler

// Status is the terminal state of a single deployment attempt.
type Status string

const (
	// StatusDeployed means the handler applied all required changes.
	StatusDeployed Status = "deployed"
	// StatusFailed means the handler raised an error.
	StatusFailed Status = "failed"
	// StatusDry means the handler computed changes without applying them.
	StatusDry Status = "dry"
	// StatusSkipped means the handler declined to act on the resource.
	StatusSkipped Status = "skipped"
	// StatusUnavailable means no handler could serve the resource.
	StatusUnavailable Status = "unavailable"
)
