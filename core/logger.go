package core

// Logger is any leveled logger that can ship errors to an error tracker.
// args may contain errors, maps or a domain record to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
