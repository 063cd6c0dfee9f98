package response

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the operation-level failure envelope. Fields carries
// per-field validation messages when the failure is a validation error.
type ErrorResponse struct {
	Status  string              `json:"status"`
	Error   string              `json:"error"`
	Details string              `json:"details,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}

func ValidationErrorResponse(fields map[string][]string) ErrorResponse {
	return ErrorResponse{
		Status: "error",
		Error:  "validation_failed",
		Fields: fields,
	}
}
