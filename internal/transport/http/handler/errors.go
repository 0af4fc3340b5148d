package handler

const (
	errInternalServer   = "Internal server error"
	errProjectNotFound  = "Project not found"
	errURLNotFound      = "URL not found"
	errDuplicateURL     = "URL already exists in this project"
	errTokenInvalid     = "Token is invalid or expired"
	errInsufficientFunds = "Insufficient credit balance"
)
