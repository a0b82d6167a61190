package buildscript

type ScriptOption[State any] func(*Script[State])

func WithLogger[State any](logger Logger) ScriptOption[State] {
	return func(s *Script[State]) {
		s.Logger = logger
	}
}
