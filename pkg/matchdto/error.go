package matchdto

// CommandError reports a rejected renderer command. Match state is never
// affected by a rejected command.
type CommandError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e CommandError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "match command error"
}
