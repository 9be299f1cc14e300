package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered()                                 {}
func (n *NoopRecorder) IncLogin(string)                                    {}
func (n *NoopRecorder) IncEventCreated()                                   {}
func (n *NoopRecorder) IncEventUpdated()                                   {}
func (n *NoopRecorder) IncEventDeleted()                                   {}
func (n *NoopRecorder) IncRegistration(string)                             {}
func (n *NoopRecorder) IncActivityPublished(string)                        {}
func (n *NoopRecorder) IncRateLimited(string)                              {}
func (n *NoopRecorder) ObserveRequest(string, string, int, time.Duration) {}
