package led

// Switch is the on/off capability a controller drives.
type Switch interface {
	TurnOn()
	TurnOff()
}

// Setter is implemented by switches that can report a fault instead of
// halting. Only the failsafe path uses it.
type Setter interface {
	Set(on bool) error
}
