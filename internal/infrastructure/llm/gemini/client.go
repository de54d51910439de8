package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

// Client wraps a single shared genai client. One Client is constructed at
// bootstrap with the configured API key and reused for every call; no retries
// are performed inside it.
type Client struct {
	genai   *genai.Client
	model   string
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

type BreakerConfig struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:  10,
		FailureRatio: 0.5,
		OpenTimeout:  30 * time.Second,
	}
}

func NewClient(ctx context.Context, apiKey, model string, breakerCfg BreakerConfig, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	inner, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	def := DefaultBreakerConfig()
	if breakerCfg.MinRequests == 0 {
		breakerCfg.MinRequests = def.MinRequests
	}
	if breakerCfg.FailureRatio <= 0 || breakerCfg.FailureRatio > 1 {
		breakerCfg.FailureRatio = def.FailureRatio
	}
	if breakerCfg.OpenTimeout <= 0 {
		breakerCfg.OpenTimeout = def.OpenTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "gemini_generate",
		Timeout: breakerCfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerCfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerCfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Caller cancellation is not a service failure.
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		genai:   inner,
		model:   model,
		breaker: breaker,
		logger:  logger,
	}, nil
}

// generateText returns the raw text of the model's top response. Every failure
// mode collapses into domain.ErrGenerationFailed; the cause is logged only.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	text, err := c.breaker.Execute(func() (string, error) {
		resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		if err != nil {
			return "", fmt.Errorf("gemini generate: %w", err)
		}
		out := strings.TrimSpace(resp.Text())
		if out == "" {
			return "", fmt.Errorf("gemini generate: empty response")
		}
		return out, nil
	})
	if err != nil {
		c.logger.Error("gemini_generate_failed", "model", c.model, "error", err)
		return "", domain.WrapError(domain.ErrGenerationFailed, "generate text", err)
	}
	return text, nil
}

// Estimator implements ports.LineItemGenerator over a shared Client with a
// fixed prompt builder.
type Estimator struct {
	client   *Client
	promptFn func(notes string) string
}

func NewEstimator(client *Client) *Estimator {
	return &Estimator{client: client, promptFn: BuildScopePrompt}
}

// NewDemoEstimator uses the shorter demo prompt with the same output contract.
func NewDemoEstimator(client *Client) *Estimator {
	return &Estimator{client: client, promptFn: BuildDemoPrompt}
}

func (e *Estimator) GenerateLineItems(ctx context.Context, notes string) ([]domain.LineItemDraft, error) {
	raw, err := e.client.generateText(ctx, e.promptFn(notes))
	if err != nil {
		return nil, err
	}
	return ParseLineItems(raw)
}
