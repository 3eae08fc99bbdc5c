package splice

// Logger is an interface that can be implemented to log errors
// and the splice strategies chosen by an Engine.
// *log.Logger from the standard library implements it.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
