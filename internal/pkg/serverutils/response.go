package serverutils

// Envelope is the standard success wrapper for every endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) Envelope[T] {
	return Envelope[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// ErrorBody is the structured error shape returned to callers:
// {"error": <kind>, "message": <safe text>}.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
