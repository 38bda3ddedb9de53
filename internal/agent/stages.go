package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PigStep/Vibe-BPMN-studio/internal/bpmn"
	"github.com/PigStep/Vibe-BPMN-studio/internal/genai"
	"github.com/PigStep/Vibe-BPMN-studio/internal/models"
	"github.com/PigStep/Vibe-BPMN-studio/internal/prompt"
	"github.com/PigStep/Vibe-BPMN-studio/internal/validation"
)

// imagine describes a business process from the user's free-text intent.
func (p *Pipeline) imagine(ctx context.Context, state *models.SessionState) (models.StatePatch, error) {
	answer, err := p.callModel(ctx, p.imagineCfg, state.UserInput, nil)
	if err != nil {
		return models.StatePatch{}, err
	}
	slog.Debug("Pipeline.imagine: process described", "sessionID", state.SessionID, "length", len(answer))
	return models.StatePatch{PreviousAnswer: models.Ptr(answer)}, nil
}

// generate turns the described process into candidate BPMN XML. In
// structured mode the model returns schema-constrained JSON that is
// assembled into XML by the deterministic builder instead.
func (p *Pipeline) generate(ctx context.Context, state *models.SessionState) (models.StatePatch, error) {
	if p.schema != nil {
		return p.generateStructured(ctx, state)
	}

	answer, err := p.callModel(ctx, p.generateCfg, state.PreviousAnswer, nil)
	if err != nil {
		return models.StatePatch{}, err
	}
	slog.Debug("Pipeline.generate: candidate XML produced", "sessionID", state.SessionID, "length", len(answer))
	return models.StatePatch{
		PreviousAnswer: models.Ptr(answer),
		XMLContent:     models.Ptr(answer),
	}, nil
}

// generateStructured requests normalized JSON and runs it through the
// director. Unparseable or unassemblable output is a soft failure.
func (p *Pipeline) generateStructured(ctx context.Context, state *models.SessionState) (models.StatePatch, error) {
	answer, err := p.callModel(ctx, p.generateCfg, state.PreviousAnswer, p.schema)
	if err != nil {
		return models.StatePatch{}, err
	}

	var input bpmn.ProcessInput
	if err := json.Unmarshal([]byte(answer), &input); err != nil {
		return models.StatePatch{}, fmt.Errorf("structured output did not parse as process input: %w", err)
	}

	director := bpmn.NewDirector(nil)
	if err := director.ConstructFromJSON(input); err != nil {
		return models.StatePatch{}, fmt.Errorf("failed to assemble structured output: %w", err)
	}
	xml, err := director.String()
	if err != nil {
		return models.StatePatch{}, fmt.Errorf("failed to serialize assembled document: %w", err)
	}

	slog.Debug("Pipeline.generateStructured: XML assembled from structured output", "sessionID", state.SessionID, "length", len(xml))
	return models.StatePatch{
		PreviousAnswer: models.Ptr(answer),
		XMLContent:     models.Ptr(xml),
	}, nil
}

// validate cleans and strictly parses the candidate XML, turning the outcome
// into the state fields that drive the conditional branch.
func (p *Pipeline) validate(_ context.Context, state *models.SessionState) (models.StatePatch, error) {
	result := validation.ValidateXML(state.XMLContent)
	if result.Valid {
		slog.Info("Pipeline.validate: processed XML is valid", "sessionID", state.SessionID)
		return models.StatePatch{
			CleanXML:        models.Ptr(result.CleanXML),
			IsValid:         models.Ptr(true),
			ValidationError: models.Ptr(""),
		}, nil
	}

	slog.Warn("Pipeline.validate: XML generation error", "sessionID", state.SessionID, "error", result.Err)
	return models.StatePatch{
		CleanXML:        models.Ptr(""),
		IsValid:         models.Ptr(false),
		ValidationError: models.Ptr(result.Err),
	}, nil
}

// refactor regenerates the XML against the validator's structured error and
// any pending user feedback, consuming the edit prompt and counting the
// attempt toward the retry ceiling.
func (p *Pipeline) refactor(ctx context.Context, state *models.SessionState) (models.StatePatch, error) {
	var sb strings.Builder
	sb.WriteString("The previous BPMN XML attempt was rejected.\n")
	if state.ValidationError != "" {
		sb.WriteString("Validation error: " + state.ValidationError + "\n")
	}
	if state.UserEditPrompt != "" {
		sb.WriteString("User feedback: " + state.UserEditPrompt + "\n")
	}
	sb.WriteString("Previous XML:\n" + state.XMLContent)

	answer, err := p.callModel(ctx, p.refactorCfg, sb.String(), nil)
	if err != nil {
		return models.StatePatch{}, err
	}

	slog.Info("Pipeline.refactor: regenerated candidate XML", "sessionID", state.SessionID, "attempt", state.Attempts+1)
	return models.StatePatch{
		PreviousAnswer: models.Ptr(answer),
		XMLContent:     models.Ptr(answer),
		UserEditPrompt: models.Ptr(""),
		Attempts:       models.Ptr(state.Attempts + 1),
	}, nil
}

// callModel performs one bounded generation call with the stage's config.
func (p *Pipeline) callModel(ctx context.Context, cfg prompt.CallConfig, input string, schema map[string]any) (string, error) {
	userPrompt := input
	if cfg.UserPrompt != "" {
		userPrompt = strings.ReplaceAll(cfg.UserPrompt, "{{input}}", input)
	}

	opts := genai.Options{
		Temperature:     cfg.Temperature,
		ReasoningEffort: cfg.ReasoningEffort,
	}
	if schema != nil {
		opts.Schema = schema
		opts.SchemaName = p.schemaName
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.client.Generate(callCtx, cfg.SystemPrompt, userPrompt, opts)
}
