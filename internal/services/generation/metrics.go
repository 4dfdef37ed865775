package generation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/llm"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_requests_total",
		Help: "Generation requests by content type and outcome.",
	}, []string{"content_type", "status"})

	tokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_tokens_total",
		Help: "Tokens consumed by the generation provider.",
	}, []string{"kind"})
)

func observeGeneration(contentType, status string) {
	generationsTotal.WithLabelValues(contentType, status).Inc()
}

func observeTokens(c *llm.Completion) {
	if c == nil {
		return
	}
	tokensTotal.WithLabelValues("prompt").Add(float64(c.PromptTokens))
	tokensTotal.WithLabelValues("completion").Add(float64(c.CompletionTokens))
}
