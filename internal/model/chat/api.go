package chat

// StatusSuccess marks a reply the widget should display.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request is the body of POST /api/chat.
type Request struct {
	Message string `json:"message"`
}

// Response is the body returned by POST /api/chat.
type Response struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// OK reports whether the server accepted the turn.
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}
