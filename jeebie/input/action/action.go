package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorQuit
)

var names = map[Action]string{
	GBButtonA:           "A",
	GBButtonB:           "B",
	GBButtonStart:       "Start",
	GBButtonSelect:      "Select",
	GBDPadUp:            "Up",
	GBDPadDown:          "Down",
	GBDPadLeft:          "Left",
	GBDPadRight:         "Right",
	EmulatorSnapshot:    "Snapshot",
	EmulatorPauseToggle: "Pause",
	EmulatorStepFrame:   "Step frame",
	EmulatorQuit:        "Quit",
}

func (a Action) String() string {
	if name, ok := names[a]; ok {
		return name
	}
	return "Unknown"
}

// IsGameInput reports whether a drives a console button.
func (a Action) IsGameInput() bool {
	return a >= GBButtonA && a <= GBDPadRight
}

// IsDirection reports whether a is one of the d-pad directions.
func (a Action) IsDirection() bool {
	return a >= GBDPadUp && a <= GBDPadRight
}
