package module

import (
	"buzzwatch/internal/services/alerts/domain"
)

// Ports exposed by the alerts module
type Ports struct {
	Sink     domain.SinkPort
	Reader   domain.ReaderPort
	Dispatch domain.DispatchPort
	Worker   domain.WorkerPort
}
