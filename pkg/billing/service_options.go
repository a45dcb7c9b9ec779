package billing

import "log/slog"

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithLogger sets a custom logger for the engine. The engine logs
// diagnostic detail at the point a provider call fails before returning
// the normalized error. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
