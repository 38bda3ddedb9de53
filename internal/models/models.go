// Package models defines the core data structures for Vibe BPMN Studio.
//
// It includes the pipeline session state, the request/response types of the
// HTTP API, and shared error variables used across modules.
package models

import "errors"

// Validation constants for input validation
const (
	// MaxUserInputLength defines the maximum allowed length for a process description
	MaxUserInputLength = 8192
)

// Error variables for better error handling and testability
var (
	ErrEmptyUserInput   = errors.New("user_input cannot be empty")
	ErrUserInputTooLong = errors.New("user_input exceeds maximum length")
)

// GenerateRequest is the body of the POST /api/generate endpoint.
type GenerateRequest struct {
	UserInput string `json:"user_input"`
}

// Validate checks the generation request against input constraints.
func (r GenerateRequest) Validate() error {
	if r.UserInput == "" {
		return ErrEmptyUserInput
	}
	if len(r.UserInput) > MaxUserInputLength {
		return ErrUserInputTooLong
	}
	return nil
}

// GenerateResult is the payload returned by a pipeline run.
type GenerateResult struct {
	SessionID string `json:"session_id"`
	Stage     Stage  `json:"stage"`
	Output    string `json:"output"`
}

// AssembleResult is the payload returned by the deterministic assembler path.
type AssembleResult struct {
	XML string `json:"xml"`
}

// ExampleResult carries the static example diagram.
type ExampleResult struct {
	XML string `json:"xml"`
}

// APIStatus represents the status field of an API response.
type APIStatus string

const (
	// APIStatusOK indicates a successful API call.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates a failed API call.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
