package core

// Logger is the app-wide logging contract. Implementations may ship logs to
// an external service; `args` may carry an error, a map of extra fields
// and/or the acting user for richer reports.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
