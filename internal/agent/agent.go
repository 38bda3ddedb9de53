// Package agent implements the staged generation pipeline for BPMN diagrams.
//
// A Pipeline drives one session through the stages imagine, generate, wait,
// validate and refactor until a terminal stage is reached. Stage functions
// are pure transforms returning state patches; the orchestrator merges
// patches, consults the transition table and checkpoints state through the
// session store at every step, so a run suspended at the wait stage can be
// resumed by a later request carrying the same session id.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PigStep/Vibe-BPMN-studio/internal/genai"
	"github.com/PigStep/Vibe-BPMN-studio/internal/models"
	"github.com/PigStep/Vibe-BPMN-studio/internal/prompt"
	"github.com/PigStep/Vibe-BPMN-studio/internal/store"
)

// Default pipeline settings.
const (
	// DefaultMaxAttempts bounds the refactor loop; exceeding it ends the run
	// in the failed stage instead of looping forever on a persistently
	// malformed generator.
	DefaultMaxAttempts = 3
	// DefaultCallTimeout bounds each generation call.
	DefaultCallTimeout = 120 * time.Second
)

// Call config template names resolved at pipeline build time.
const (
	configImagine  = "business_generation"
	configGenerate = "xml_generation"
	configRefactor = "xml_refactoring"
)

// SuspensionMessage is surfaced to the user while a session is suspended at
// the wait stage.
const SuspensionMessage = "Share your feedback. Ask me anything to edit!"

// Pipeline orchestrates the generation state machine over per-session state.
// Construct one explicitly and pass it by reference; there is no package
// level instance.
type Pipeline struct {
	client      genai.ClientInterface
	store       store.Store
	imagineCfg  prompt.CallConfig
	generateCfg prompt.CallConfig
	refactorCfg prompt.CallConfig

	maxAttempts int
	callTimeout time.Duration
	interactive bool

	// structured mode: when set, the generate stage constrains model output
	// to this schema and assembles the XML deterministically.
	schema     map[string]any
	schemaName string
}

// Option configures a Pipeline during construction.
type Option func(*Pipeline)

// WithMaxAttempts sets the refactor retry ceiling.
func WithMaxAttempts(n int) Option {
	return func(p *Pipeline) { p.maxAttempts = n }
}

// WithCallTimeout bounds each generation call.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.callTimeout = d }
}

// WithInteractive enables suspension at the wait stage for human-in-the-loop
// editing. Without it the wait stage is a pass-through into validation.
func WithInteractive(enabled bool) Option {
	return func(p *Pipeline) { p.interactive = enabled }
}

// WithStructuredSchema switches the generate stage to schema-constrained JSON
// output assembled into XML by the deterministic builder.
func WithStructuredSchema(schema map[string]any, name string) Option {
	return func(p *Pipeline) {
		p.schema = schema
		p.schemaName = name
	}
}

// NewPipeline builds a pipeline with call configs resolved once from the
// prompt manager. The configs are immutable for the pipeline's lifetime.
func NewPipeline(client genai.ClientInterface, st store.Store, prompts *prompt.Manager, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:      client,
		store:       st,
		imagineCfg:  prompts.GetCallConfig(configImagine, nil),
		generateCfg: prompts.GetCallConfig(configGenerate, nil),
		refactorCfg: prompts.GetCallConfig(configRefactor, nil),
		maxAttempts: DefaultMaxAttempts,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	slog.Debug("agent.NewPipeline: pipeline built",
		"maxAttempts", p.maxAttempts, "interactive", p.interactive, "structured", p.schema != nil)
	return p
}

// Invoke runs the pipeline for a session. A fresh session is seeded at the
// imagine stage from the input; a session suspended at the wait stage is
// resumed in place with the input merged as the user edit prompt; any other
// non-terminal checkpoint continues from its recorded stage. Two different
// session ids never share state.
func (p *Pipeline) Invoke(ctx context.Context, sessionID, input string) (*models.SessionState, error) {
	existing, err := p.store.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	if existing != nil && existing.Stage == models.StageWait {
		slog.Info("Pipeline.Invoke: resuming suspended session", "sessionID", sessionID)
		state := *existing
		state.Apply(models.StatePatch{UserEditPrompt: models.Ptr(input)})
		return p.run(ctx, &state, true)
	}

	if existing != nil && !existing.Stage.IsTerminal() {
		// A non-suspended, non-terminal checkpoint means a previous run was
		// cut short after this stage's inputs were already persisted.
		// Continue from there so the retry reuses prior context instead of
		// re-paying earlier generation calls.
		slog.Info("Pipeline.Invoke: continuing checkpointed session", "sessionID", sessionID, "stage", existing.Stage)
		state := *existing
		return p.run(ctx, &state, false)
	}

	now := time.Now()
	state := models.SessionState{
		SessionID: sessionID,
		Stage:     models.StageImagine,
		UserInput: input,
		CreatedAt: now,
		UpdatedAt: now,
	}
	slog.Info("Pipeline.Invoke: starting fresh session", "sessionID", sessionID)
	return p.run(ctx, &state, false)
}

// Reset removes all state for a session. Intended for teardown and test
// isolation.
func (p *Pipeline) Reset(sessionID string) error {
	return p.store.DeleteSession(sessionID)
}

// run advances the state machine until a terminal stage or a suspension.
// resumeInjected marks that the wait stage already holds fresh human input
// and must pass through instead of suspending again.
func (p *Pipeline) run(ctx context.Context, state *models.SessionState, resumeInjected bool) (*models.SessionState, error) {
	for !state.Stage.IsTerminal() {
		if state.Stage == models.StageWait {
			if p.interactive && !resumeInjected {
				if err := p.store.SaveSession(*state); err != nil {
					return nil, fmt.Errorf("failed to checkpoint suspended session %s: %w", state.SessionID, err)
				}
				slog.Info("Pipeline.run: session suspended awaiting input", "sessionID", state.SessionID)
				return state, nil
			}
			resumeInjected = false
		} else {
			patch, err := p.executeStage(ctx, state)
			if err != nil {
				// Soft failure: state stays unmodified so a retry can reuse
				// prior context.
				slog.Error("Pipeline.run: stage failed", "sessionID", state.SessionID, "stage", state.Stage, "error", err)
				return nil, fmt.Errorf("stage %s failed: %w", state.Stage, err)
			}
			state.Apply(patch)
		}

		next, err := p.nextStage(state)
		if err != nil {
			return nil, err
		}
		state.Stage = next

		if err := p.store.SaveSession(*state); err != nil {
			return nil, fmt.Errorf("failed to checkpoint session %s: %w", state.SessionID, err)
		}
	}

	slog.Info("Pipeline.run: session reached terminal stage", "sessionID", state.SessionID, "stage", state.Stage, "attempts", state.Attempts)
	return state, nil
}

// executeStage dispatches to the stage function for the current stage.
func (p *Pipeline) executeStage(ctx context.Context, state *models.SessionState) (models.StatePatch, error) {
	switch state.Stage {
	case models.StageImagine:
		return p.imagine(ctx, state)
	case models.StageGenerate:
		return p.generate(ctx, state)
	case models.StageValidate:
		return p.validate(ctx, state)
	case models.StageRefactor:
		return p.refactor(ctx, state)
	default:
		return models.StatePatch{}, fmt.Errorf("no stage function for stage %s", state.Stage)
	}
}

// nextStage resolves the successor stage. The only conditional edge is the
// validation branch; every other transition is unconditional.
func (p *Pipeline) nextStage(state *models.SessionState) (models.Stage, error) {
	switch state.Stage {
	case models.StageImagine:
		return models.StageGenerate, nil
	case models.StageGenerate:
		return models.StageWait, nil
	case models.StageWait:
		return models.StageValidate, nil
	case models.StageValidate:
		if state.IsValid != nil && *state.IsValid {
			return models.StageDone, nil
		}
		if state.Attempts >= p.maxAttempts {
			slog.Warn("Pipeline.nextStage: refactor attempts exhausted", "sessionID", state.SessionID, "attempts", state.Attempts)
			return models.StageFailed, nil
		}
		return models.StageRefactor, nil
	case models.StageRefactor:
		return models.StageWait, nil
	default:
		return "", fmt.Errorf("no transition from stage %s", state.Stage)
	}
}
