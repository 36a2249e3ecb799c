package cpu

// ActionKind identifies the externally observable result of a step.
type ActionKind int

// Known action kinds.
const (
	None          ActionKind = iota // Nothing observable happened.
	RequiresInput                   // An input instruction found the queue empty.
	Output                          // An output instruction produced Action.Value.
	Halt                            // The program terminated.
)

func (k ActionKind) String() string {
	switch k {
	case None:
		return "none"
	case RequiresInput:
		return "requires-input"
	case Output:
		return "output"
	case Halt:
		return "halt"
	}
	return "unknown"
}

// Action defines the result of a single Step.
type Action struct {
	Kind  ActionKind
	Value int64 // Output value, if Kind is Output.
}

// State defines the execution state of a CPU.
type State int

// Known states.
const (
	Running State = iota
	AwaitingInput
	Halted
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingInput:
		return "awaiting-input"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	}
	return "unknown"
}
