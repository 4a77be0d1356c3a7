// Package metrics defines the recorder interface used to instrument the
// CMS, plus a no-op implementation for when metrics are disabled.
package metrics

import "time"

// Recorder receives measurements from the server and site manager.
type Recorder interface {
	// RecordHTTPRequest counts a handled request by route and status class.
	RecordHTTPRequest(route string, status int, duration time.Duration)
	// RecordBuild records one site build and its outcome.
	RecordBuild(duration time.Duration, success bool)
	// RecordPublish records one publish attempt and its outcome.
	RecordPublish(duration time.Duration, success bool)
	// RecordSync records one repository sync and its outcome.
	RecordSync(success bool)
}

// NoopRecorder discards all measurements.
type NoopRecorder struct{}

// NewNoopRecorder creates a recorder that does nothing.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordHTTPRequest(string, int, time.Duration) {}
func (n *NoopRecorder) RecordBuild(time.Duration, bool)              {}
func (n *NoopRecorder) RecordPublish(time.Duration, bool)            {}
func (n *NoopRecorder) RecordSync(bool)                              {}
