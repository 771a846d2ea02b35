// Package llm is the boundary around the hosted completion API. It pins the
// Recipe Genie persona and sampling parameters and absorbs every upstream
// failure into a human-readable fallback reply, so chat callers never see an
// error from this package.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"recipe-genie/internal/domain"
	"recipe-genie/internal/integrations/openai"
)

const (
	// DefaultModel is used when no model override is configured.
	DefaultModel = "gpt-4o-mini"

	maxReplyTokens = 1200
	temperature    = 0.7
)

// Canned replies returned when the completion API fails. Selection follows
// the upstream error text: quota/billing problems, throttling, everything
// else.
const (
	quotaFallback = "I apologize, but there's currently an issue with my recipe service. " +
		"Please try again later. In the meantime, you might want to check reliable cooking websites for recipe information."
	rateLimitFallback = "I'm receiving too many requests right now. Please wait a moment and try again. " +
		"For immediate help, consider checking cooking websites or recipe apps."
	genericFallback = "I'm experiencing some technical difficulties at the moment. " +
		"Please try again in a few moments or check online cooking resources for immediate assistance."
)

// ChatClient is the completion transport the gateway drives.
type ChatClient interface {
	Chat(ctx context.Context, in openai.ChatRequest) (string, error)
}

// Gateway wraps one external chat-completion call.
type Gateway struct {
	client ChatClient
	model  string
	log    *slog.Logger
}

// New creates a Gateway. An empty model selects DefaultModel.
func New(client ChatClient, model string, log *slog.Logger) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("llm: chat client must not be nil")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{client: client, model: model, log: log}, nil
}

// Ask sends the user prompt under the fixed system prompt and returns the
// trimmed reply. Upstream failures are logged and converted to a fallback
// string; Ask never returns an error alongside an empty reply.
func (g *Gateway) Ask(ctx context.Context, prompt string) string {
	reply, err := g.client.Chat(ctx, openai.ChatRequest{
		Model: g.model,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: systemPrompt()},
			{Role: domain.RoleUser, Content: prompt},
		},
		MaxTokens:   maxReplyTokens,
		Temperature: temperature,
	})
	if err != nil {
		g.log.Warn("completion call failed", "err", err)
		return fallbackReply(err)
	}
	return strings.TrimSpace(reply)
}

// fallbackReply picks the canned reply for an upstream failure by matching
// substrings in the error text, with the HTTP status as a second signal for
// throttling.
func fallbackReply(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "billing"):
		return quotaFallback
	case strings.Contains(msg, "rate limit") || upstreamStatus(err) == http.StatusTooManyRequests:
		return rateLimitFallback
	default:
		return genericFallback
	}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func upstreamStatus(err error) int {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0
	}
	return statusErr.HTTPStatusCode()
}
