package types

type SignalType string

const (
	// SignalTypeBuy tells the simulator to open a long position.
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell tells the simulator to close the held position.
	SignalTypeSell SignalType = "sell"
	// SignalTypeHold tells the simulator to take no action.
	SignalTypeHold SignalType = "hold"
)

// Valid reports whether s is one of the three recognized signal values.
func (s SignalType) Valid() bool {
	switch s {
	case SignalTypeBuy, SignalTypeSell, SignalTypeHold:
		return true
	default:
		return false
	}
}

// AnnotatedBar pairs a bar with the signal the strategy assigned to it.
// Exactly one signal exists per bar.
type AnnotatedBar struct {
	Bar    Bar
	Signal SignalType
}
