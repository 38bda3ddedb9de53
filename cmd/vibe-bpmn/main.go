package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PigStep/Vibe-BPMN-studio/internal/agent"
	"github.com/PigStep/Vibe-BPMN-studio/internal/api"
	"github.com/PigStep/Vibe-BPMN-studio/internal/genai"
	"github.com/PigStep/Vibe-BPMN-studio/internal/prompt"
	"github.com/PigStep/Vibe-BPMN-studio/internal/store"
	"github.com/PigStep/Vibe-BPMN-studio/internal/util"
	"github.com/PigStep/Vibe-BPMN-studio/internal/validation"
)

// Default configuration constants
const (
	// DefaultAPIAddr is the default listen address for the API server
	DefaultAPIAddr = ":8080"
	// DefaultPromptsDir holds the versioned LLM call configurations
	DefaultPromptsDir = "data/prompts"
	// DefaultSchemasDir holds the structured-output JSON schemas
	DefaultSchemasDir = "data/schemas"
	// DefaultStaticDir holds the bpmn-js front end files
	DefaultStaticDir = "static"
	// DefaultExampleXMLPath is the static example diagram served by the API
	DefaultExampleXMLPath = "data/xml/example_bpmn_diagram.xml"
)

// Config holds environment configuration
type Config struct {
	APIAddr     string
	PromptsDir  string
	SchemasDir  string
	StaticDir   string
	ExampleXML  string
	MaxAttempts int
	CallTimeout time.Duration
	Interactive bool
	Structured  bool
}

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	parseCommandLineFlags(&config)

	slog.Info("Bootstrapping Vibe BPMN Studio")

	client, err := genai.NewClient()
	if err != nil {
		slog.Error("Failed to initialize generation client", "error", err)
		os.Exit(1)
	}

	inputValidator, err := validation.NewInputValidator()
	if err != nil {
		slog.Error("Failed to compile process input schema", "error", err)
		os.Exit(1)
	}

	prompts := prompt.NewManager(config.PromptsDir)
	sessions := store.NewInMemoryStore()

	pipelineOpts := []agent.Option{
		agent.WithMaxAttempts(config.MaxAttempts),
		agent.WithCallTimeout(config.CallTimeout),
		agent.WithInteractive(config.Interactive),
	}
	if config.Structured {
		schemas := prompt.NewSchemaManager(config.SchemasDir)
		schema, err := schemas.GetSchema("process_input")
		if err != nil {
			slog.Error("Failed to load structured output schema", "error", err)
			os.Exit(1)
		}
		pipelineOpts = append(pipelineOpts, agent.WithStructuredSchema(schema, "process_input"))
	}
	pipeline := agent.NewPipeline(client, sessions, prompts, pipelineOpts...)

	server := api.NewServer(pipeline, inputValidator, api.Opts{
		Addr:           config.APIAddr,
		StaticDir:      config.StaticDir,
		ExampleXMLPath: config.ExampleXML,
	})
	if err := server.Run(); err != nil {
		slog.Error("Vibe BPMN Studio failed to run", "error", err)
		os.Exit(1)
	}
}

// initializeLogger sets up structured logging with the level taken from LOG_LEVEL.
func initializeLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	return Config{
		APIAddr:     util.GetEnv("API_ADDR", DefaultAPIAddr),
		PromptsDir:  util.GetEnv("PROMPTS_DIR", DefaultPromptsDir),
		SchemasDir:  util.GetEnv("SCHEMAS_DIR", DefaultSchemasDir),
		StaticDir:   util.GetEnv("STATIC_DIR", DefaultStaticDir),
		ExampleXML:  util.GetEnv("EXAMPLE_XML_PATH", DefaultExampleXMLPath),
		MaxAttempts: util.ParseIntEnv("MAX_REFACTOR_ATTEMPTS", agent.DefaultMaxAttempts),
		CallTimeout: time.Duration(util.ParseIntEnv("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,
		Interactive: util.ParseBoolEnv("INTERACTIVE_EDITING", false),
		Structured:  util.ParseBoolEnv("STRUCTURED_GENERATION", false),
	}
}

// parseCommandLineFlags overrides environment configuration with flag values.
func parseCommandLineFlags(config *Config) {
	apiAddr := flag.String("addr", config.APIAddr, "API server listen address")
	promptsDir := flag.String("prompts", config.PromptsDir, "Directory with LLM call configurations")
	staticDir := flag.String("static", config.StaticDir, "Directory with front-end files")
	maxAttempts := flag.Int("max-attempts", config.MaxAttempts, "Refactor retry ceiling")
	interactive := flag.Bool("interactive", config.Interactive, "Suspend at the wait stage for human editing")
	structured := flag.Bool("structured", config.Structured, "Use schema-constrained generation with deterministic assembly")
	flag.Parse()

	config.APIAddr = *apiAddr
	config.PromptsDir = *promptsDir
	config.StaticDir = *staticDir
	config.MaxAttempts = *maxAttempts
	config.Interactive = *interactive
	config.Structured = *structured
}
