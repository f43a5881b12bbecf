package core

// Endpoint is a framework-agnostic route description. Adapters look up their
// own handler by Metadata.OperationID.
type Endpoint struct {
	Path      string
	Method    string
	Protected bool // requires a valid Bearer token
	Metadata  EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
	RequestBody interface{} // for validation
	Responses   map[int]interface{}
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the success body of the account endpoints
type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}
