package b64pdf

// Level styles a [Status] line.
type Level int

const (
	// LevelNone is the empty status shown after a reset.
	LevelNone Level = iota
	LevelInfo
	LevelSuccess
	LevelError
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "none"
	}
}

// Status is the single user-visible status line.
type Status struct {
	Level   Level
	Message string
}

// IsZero reports whether s is the empty status.
func (s Status) IsZero() bool {
	return s == Status{}
}
