package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/PigStep/Vibe-BPMN-studio/internal/agent"
	"github.com/PigStep/Vibe-BPMN-studio/internal/bpmn"
	"github.com/PigStep/Vibe-BPMN-studio/internal/models"
)

// genericFailureMessage is returned whenever the pipeline fails for reasons
// the user cannot act on.
const genericFailureMessage = "Generation is temporarily unavailable, please try again later."

// handleGenerate runs the pipeline for the caller's session. A missing
// session header starts a fresh session under a newly generated identifier.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Server.handleGenerate: invalid request body", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = uuid.NewString()
		slog.Debug("Server.handleGenerate: generated fresh session id", "sessionID", sessionID)
	}

	state, err := s.pipeline.Invoke(r.Context(), sessionID, req.UserInput)
	if err != nil {
		slog.Error("Server.handleGenerate: pipeline invocation failed", "sessionID", sessionID, "error", err)
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error(genericFailureMessage))
		return
	}

	result := models.GenerateResult{SessionID: state.SessionID, Stage: state.Stage}
	switch state.Stage {
	case models.StageDone:
		result.Output = state.CleanXML
	case models.StageWait:
		result.Output = agent.SuspensionMessage
	case models.StageFailed:
		result.Output = fmt.Sprintf("Could not produce valid BPMN XML after %d attempts. Last error: %s",
			state.Attempts, state.ValidationError)
	default:
		result.Output = state.PreviousAnswer
	}
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// handleAssemble runs the deterministic path: normalized JSON in, assembled
// BPMN XML out. The payload is schema-validated before the director runs.
func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Failed to read request body"))
		return
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Request body is not valid JSON"))
		return
	}
	if err := s.input.Validate(doc); err != nil {
		slog.Debug("Server.handleAssemble: schema validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	var input bpmn.ProcessInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Request body does not match the process input shape"))
		return
	}

	director := bpmn.NewDirector(nil)
	if err := director.ConstructFromJSON(input); err != nil {
		if errors.Is(err, bpmn.ErrMissingProcessData) {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		slog.Error("Server.handleAssemble: construction failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to assemble diagram"))
		return
	}

	xml, err := director.String()
	if err != nil {
		slog.Error("Server.handleAssemble: serialization failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to assemble diagram"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(models.AssembleResult{XML: xml}))
}

// handleExampleXML returns the static example diagram. Read failures degrade
// to a safe error document instead of an HTTP failure, matching what the
// renderer expects.
func (s *Server) handleExampleXML(w http.ResponseWriter, r *http.Request) {
	slog.Info("Server.handleExampleXML: asked for example BPMN XML")

	content, err := os.ReadFile(s.opts.ExampleXMLPath)
	if err != nil {
		slog.Error("Server.handleExampleXML: failed to read example diagram", "path", s.opts.ExampleXMLPath, "error", err)
		writeJSONResponse(w, http.StatusOK, models.Success(models.ExampleResult{XML: "<error>File not found</error>"}))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(models.ExampleResult{XML: string(content)}))
}

// handleResetSession tears down the session named in the header.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing "+SessionHeader+" header"))
		return
	}
	if err := s.pipeline.Reset(sessionID); err != nil {
		slog.Error("Server.handleResetSession: reset failed", "sessionID", sessionID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to reset session"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session reset", nil))
}
