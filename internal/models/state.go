package models

import "time"

// Stage identifies a step of the generation pipeline.
type Stage string

// Pipeline stage constants.
const (
	StageImagine  Stage = "imagine"  // describe the business process from user intent
	StageGenerate Stage = "generate" // turn the described process into BPMN XML
	StageWait     Stage = "wait"     // suspension point for human editing
	StageValidate Stage = "validate" // strict XML validation
	StageRefactor Stage = "refactor" // regenerate against the validation error
	StageDone     Stage = "done"     // terminal: valid XML produced
	StageFailed   Stage = "failed"   // terminal: retry ceiling exceeded
)

// IsTerminal reports whether the stage ends a pipeline run.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// SessionState is the unit of work flowing through the pipeline. One live
// state exists per session id; stages mutate it only through patches merged
// by the orchestrator.
type SessionState struct {
	SessionID       string    `json:"session_id"`
	Stage           Stage     `json:"stage"`
	UserInput       string    `json:"user_input"`
	PreviousAnswer  string    `json:"previous_answer,omitempty"`
	XMLContent      string    `json:"xml_content,omitempty"`
	CleanXML        string    `json:"clean_xml,omitempty"`
	IsValid         *bool     `json:"is_valid,omitempty"` // nil until a validation attempt ran
	ValidationError string    `json:"validation_error,omitempty"`
	UserEditPrompt  string    `json:"user_edit_prompt,omitempty"`
	Attempts        int       `json:"attempts"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatePatch carries the fields a single stage is allowed to change. Nil
// pointers leave the corresponding state field untouched.
type StatePatch struct {
	PreviousAnswer  *string
	XMLContent      *string
	CleanXML        *string
	IsValid         *bool
	ValidationError *string
	UserEditPrompt  *string
	Attempts        *int
}

// Apply merges a patch into the state and bumps UpdatedAt.
func (s *SessionState) Apply(p StatePatch) {
	if p.PreviousAnswer != nil {
		s.PreviousAnswer = *p.PreviousAnswer
	}
	if p.XMLContent != nil {
		s.XMLContent = *p.XMLContent
	}
	if p.CleanXML != nil {
		s.CleanXML = *p.CleanXML
	}
	if p.IsValid != nil {
		s.IsValid = p.IsValid
	}
	if p.ValidationError != nil {
		s.ValidationError = *p.ValidationError
	}
	if p.UserEditPrompt != nil {
		s.UserEditPrompt = *p.UserEditPrompt
	}
	if p.Attempts != nil {
		s.Attempts = *p.Attempts
	}
	s.UpdatedAt = time.Now()
}

// Ptr returns a pointer to v, for concise patch construction.
func Ptr[T any](v T) *T {
	return &v
}
