package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dietagent"
	"dietagent/coordinator"
	"dietagent/coordinator/bedrock"
	"dietagent/coordinator/mock"
	"dietagent/coordinator/ollama"
	"dietagent/report"
	"dietagent/slack"
	"dietagent/tools"
	"dietagent/tools/storage"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		slog.Debug("SETUP: No .env file loaded", "error", err)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	var modelConfig dietagent.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var agentConfig dietagent.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	stores := storage.NewFileStoreCatalogState(agentConfig.ArtifactsStoresPath)
	prices := storage.NewFilePriceTableState(agentConfig.ArtifactsPricesPath)

	llm, err := newLLMClient(ctx, modelConfig, agentConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create LLM client", "error", err)
		return
	}
	completer := coordinator.NewCompleter(llm)

	generator := report.NewGenerator(completer, report.LoadPriceTable(ctx, prices))
	registry, err := tools.NewRegistry(completer, stores, prices,
		report.NewReportTool(generator),
		report.NewShoppingListTool(generator),
		report.NewNutritionAnalysisTool(generator),
	)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return
	}
	slog.Info("SETUP: Tool registry initialized", "tools_count", len(registry.GetTools()))

	logger, cleanup, err := newTurnLogger(modelConfig.ModelID)
	if err != nil {
		slog.Error("SETUP: Failed to create turn logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush turn log", "error", err)
		}
	}()

	tracerProvider, meterProvider, otelShutdown, err := dietagent.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	tracer := tracerProvider.Tracer(dietagent.TracerNameCoordinator)
	meter := meterProvider.Meter(dietagent.TracerNameCoordinator)

	ctx, span := tracer.Start(ctx, dietagent.TracerNameCoordinator, trace.WithAttributes(
		attribute.String("model.id", modelConfig.ModelID),
		attribute.Int("model.max_tokens", int(modelConfig.MaxTokens)),
		attribute.Float64("model.temperature", float64(modelConfig.Temperature)),
		attribute.Float64("model.top_p", float64(modelConfig.TopP)),
	))
	defer span.End()

	input := argOr(1, "I want a vegetarian diet for next week, around 2000 calories a day, budget 50 euros. I live in Berlin.")

	c := coordinator.NewInstrumentedCoordinator(
		llm,
		registry,
		agentConfig.MaxRounds,
		time.Duration(agentConfig.ToolTimeoutSeconds)*time.Second,
		logger,
		tracer,
		meter,
	)
	session := coordinator.NewSession(registry)

	output, err := c.ProcessTurn(ctx, session, input)
	if err != nil {
		if !errors.Is(err, coordinator.ErrRoundLimit) {
			slog.Error("RESULT: Error handling turn", "error", err)
			return
		}
		slog.Warn("RESULT: Turn cut off at round limit, returning partial answer")
	}

	fmt.Println(output)

	if agentConfig.SlackWebhookURL != "" {
		slackClient := slack.NewClient(agentConfig.SlackWebhookURL, http.DefaultClient)
		if err := slackClient.PostMessage(ctx, agentConfig.SlackChannel, output); err != nil {
			slog.Error("Failed to post result to Slack", "error", err)
		}
	}
}

// newLLMClient selects the gateway by LLM_PROVIDER: bedrock (default),
// ollama, or mock.
func newLLMClient(ctx context.Context, modelConfig dietagent.ModelConfig, agentConfig dietagent.AgentConfig) (coordinator.LLMClient, error) {
	provider := strings.ToLower(os.Getenv("LLM_PROVIDER"))
	switch provider {
	case "", "bedrock":
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		}), nil

	case "ollama":
		return ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: agentConfig.BaseOllamaEndpoint,
			ModelID:      modelConfig.ModelID,
			HTTPClient:   http.DefaultClient,
		})

	case "mock":
		return mock.NewLLMClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
	}
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func newTurnLogger(modelID string) (dietagent.TurnLogger, func() error, error) {
	logFilePath := dietagent.NewTurnLogFilePath(modelID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := dietagent.NewFileTurnLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
