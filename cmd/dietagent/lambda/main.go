package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"dietagent"
	"dietagent/coordinator"
	"dietagent/coordinator/bedrock"
	"dietagent/report"
	"dietagent/slack"
	"dietagent/tools/storage"
)

type Params struct {
	Preferences dietagent.Preferences `json:"preferences"`
	Location    string                `json:"location"`
}

type Results struct {
	Report *dietagent.DietReport `json:"report"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var modelConfig dietagent.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		// S3 config from env
		s3Bucket := os.Getenv("ARTIFACTS_S3_BUCKET")
		pricesKey := os.Getenv("ARTIFACTS_PRICES_S3_KEY")
		if s3Bucket == "" || pricesKey == "" {
			return Results{}, fmt.Errorf("missing S3 config: ARTIFACTS_S3_BUCKET and ARTIFACTS_PRICES_S3_KEY must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3Client := s3.NewFromConfig(awsCfg)

		prices := storage.NewS3PriceTableState(s3Client, s3Bucket, pricesKey)
		slog.Info("SETUP: S3 price table state initialized", "bucket", s3Bucket, "key", pricesKey)

		llm := bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		})
		completer := coordinator.NewCompleter(llm)

		generator := report.NewGenerator(completer, report.LoadPriceTable(ctx, prices))

		rep, err := generator.GenerateDietReport(ctx, params.Preferences, params.Location)
		if err != nil {
			slog.Error("RESULT: Error generating report", "error", err)
			return Results{}, err
		}

		if webhookURL := os.Getenv("SLACK_WEBHOOK_URL"); webhookURL != "" {
			slackClient := slack.NewClient(webhookURL, http.DefaultClient)
			channel := os.Getenv("SLACK_CHANNEL")
			if channel == "" {
				channel = "#diet-reports"
			}
			if err := slackClient.PostReport(ctx, channel, rep); err != nil {
				slog.Error("RESULT: Failed to post report to Slack", "error", err)
			}
		}

		return Results{Report: rep}, nil
	}

	lambda.Start(fn)
}
