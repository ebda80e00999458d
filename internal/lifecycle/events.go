package lifecycle

// Severity classifies an event for user-facing display and audit logging.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is a structured status message emitted during a synchronization
// attempt. The sink decides how to surface it; the controller never
// writes to any output itself.
type Event struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Sink consumes events.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) {
	f(e)
}

func (c *Controller) info(format string, args ...interface{}) {
	c.emit(SeverityInfo, format, args...)
}

func (c *Controller) warn(format string, args ...interface{}) {
	c.emit(SeverityWarning, format, args...)
}

func (c *Controller) error(format string, args ...interface{}) {
	c.emit(SeverityError, format, args...)
}
