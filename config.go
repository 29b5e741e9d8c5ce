package dietagent

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=2048"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type AgentConfig struct {
	ArtifactsStoresPath string `env:"ARTIFACTS_STORES_PATH,default=artifacts/stores.json"`
	ArtifactsPricesPath string `env:"ARTIFACTS_PRICES_PATH,default=artifacts/prices.json"`
	BaseOllamaEndpoint  string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	MaxRounds           int    `env:"MAX_ROUNDS,default=10"`
	ToolTimeoutSeconds  int    `env:"TOOL_TIMEOUT_SECONDS,default=15"`
	SlackWebhookURL     string `env:"SLACK_WEBHOOK_URL,default="`
	SlackChannel        string `env:"SLACK_CHANNEL,default=#diet-reports"`
}
