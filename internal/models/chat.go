package models

// ChatRequest is the body POSTed to the assistant service.
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the body returned by the assistant service.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned by the development service on bad requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
