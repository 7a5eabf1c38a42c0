package matchdto

const (
	CommandClick = "click"
	CommandMode  = "mode"
	CommandReset = "reset"
)

// Command is an inbound request from a renderer.
type Command struct {
	Type   string `json:"type"`
	Square string `json:"square,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Budget string `json:"budget,omitempty"`
}

// Envelope wraps outbound messages: either a view or an error.
type Envelope struct {
	Type  string        `json:"type"`
	View  *View         `json:"view,omitempty"`
	Error *CommandError `json:"error,omitempty"`
}
