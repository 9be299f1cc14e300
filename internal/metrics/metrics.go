// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels for registrations.
const (
	RegistrationCreated   = "created"
	RegistrationDuplicate = "duplicate"
	RegistrationFull      = "full"
	RegistrationNoEvent   = "not_found"
)

// Outcome labels for logins.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Accounts
	IncUserRegistered()
	IncLogin(outcome string)

	// Events
	IncEventCreated()
	IncEventUpdated()
	IncEventDeleted()
	IncRegistration(outcome string)

	// Activity stream; status is "success" or "dropped".
	IncActivityPublished(status string)

	// HTTP
	IncRateLimited(scope string)
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
