package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationRequired = ErrorResponse{
		Status:  "error",
		Error:   "authentication_required",
		Details: "Authentication required",
	}

	ErrPhotoNotFound = ErrorResponse{
		Status:  "error",
		Error:   "not_found",
		Details: "Photo not found",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)
