package domain

import "errors"

// Error taxonomy. Failures are wrapped with fmt.Errorf("...: %w", ...) so
// callers can classify with errors.Is.
var (
	// ErrConfiguration marks bad or missing input detected before any
	// agent is invoked. Fatal to the current work item only.
	ErrConfiguration = errors.New("configuration error")

	// ErrAgentInvocation marks an agent process that could not be
	// started or exceeded its timeout. Never retried by the gateway.
	ErrAgentInvocation = errors.New("agent invocation failed")

	// ErrHostOperation marks a failed change-request host call
	// (publish or merge).
	ErrHostOperation = errors.New("host operation failed")
)
