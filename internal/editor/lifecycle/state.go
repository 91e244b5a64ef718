package lifecycle

// State tracks the lifecycle of the currently active document. The manager
// is a single-document-focus design: exactly one document is active at a
// time, matching a single-pane editor.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSaving  State = "saving"
	StateSaved   State = "saved"
	StateError   State = "error"
)

// StateFunc receives every state transition of the active document.
type StateFunc func(state State, err error)

// ContentFunc receives the latest converted text of a document after every
// edit. The read path is not debounced, only the save path is.
type ContentFunc func(text string)
