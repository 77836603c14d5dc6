package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// LLM providers
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// LLM holds the chat model configuration used by the assistant
type LLM struct {
	Provider       string
	APIKey         string
	Model          string
	GeminiProject  string
	GeminiLocation string
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "Chat model provider (openai, claude, gemini)",
			Category:    "LLM",
			Value:       ProviderOpenAI,
			Sources:     cli.EnvVars("KUJO_LLM_PROVIDER"),
			Destination: &l.Provider,
		},
		&cli.StringFlag{
			Name:        "llm-api-key",
			Usage:       "API key for the openai or claude provider",
			Category:    "LLM",
			Sources:     cli.EnvVars("KUJO_LLM_API_KEY"),
			Destination: &l.APIKey,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model name, provider default when empty",
			Category:    "LLM",
			Sources:     cli.EnvVars("KUJO_LLM_MODEL"),
			Destination: &l.Model,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "GCP project ID for the gemini provider",
			Category:    "LLM",
			Sources:     cli.EnvVars("KUJO_GEMINI_PROJECT"),
			Destination: &l.GeminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI location for the gemini provider",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("KUJO_GEMINI_LOCATION"),
			Destination: &l.GeminiLocation,
		},
	}
}

// Configure creates the LLM client. It returns nil without error when no credentials are set;
// the assistant then reports that it is not configured.
func (l *LLM) Configure(ctx context.Context) (gollem.LLMClient, error) {
	logger := ctxlog.From(ctx)

	if !l.IsConfigured() {
		logger.Info("LLM not configured, assistant is disabled")
		return nil, nil
	}

	logger.Info("Configuring LLM",
		slog.String("provider", l.Provider),
		slog.String("model", l.Model),
	)

	switch l.Provider {
	case ProviderOpenAI:
		var options []openai.Option
		if l.Model != "" {
			options = append(options, openai.WithModel(l.Model))
		}
		client, err := openai.New(ctx, l.APIKey, options...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create openai client")
		}
		return client, nil

	case ProviderClaude:
		var options []claude.Option
		if l.Model != "" {
			options = append(options, claude.WithModel(l.Model))
		}
		client, err := claude.New(ctx, l.APIKey, options...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create claude client")
		}
		return client, nil

	case ProviderGemini:
		var options []gemini.Option
		if l.Model != "" {
			options = append(options, gemini.WithModel(l.Model))
		}
		client, err := gemini.New(ctx, l.GeminiProject, l.GeminiLocation, options...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gemini client",
				goerr.V("project", l.GeminiProject),
				goerr.V("location", l.GeminiLocation),
			)
		}
		return client, nil

	default:
		return nil, goerr.New("unknown llm provider", goerr.V("provider", l.Provider))
	}
}

// IsConfigured checks if the selected provider has credentials
func (l *LLM) IsConfigured() bool {
	switch l.Provider {
	case ProviderGemini:
		return l.GeminiProject != ""
	default:
		return l.APIKey != ""
	}
}

// LogValue returns structured log value
func (l LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", l.Provider),
		slog.String("model", l.Model),
		slog.Bool("has_api_key", l.APIKey != ""),
		slog.String("gemini_project", l.GeminiProject),
		slog.String("gemini_location", l.GeminiLocation),
	)
}
