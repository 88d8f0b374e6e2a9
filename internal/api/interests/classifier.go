package interests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// Classifier sends free text to a remote language model and returns its raw
// text answer.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// ClassifierStage asks a Classifier for a JSON array of vocabulary tags.
// Any error, timeout, malformed or empty answer makes the stage unavailable.
type ClassifierStage struct {
	classifier Classifier
	timeout    time.Duration
	logger     *slog.Logger
}

func NewClassifierStage(classifier Classifier, timeout time.Duration, logger *slog.Logger) *ClassifierStage {
	return &ClassifierStage{
		classifier: classifier,
		timeout:    timeout,
		logger:     logger,
	}
}

func (c *ClassifierStage) Name() string { return string(types.InterestSourceClassifier) }

func (c *ClassifierStage) Extract(ctx context.Context, query string) Extraction {
	ctx, span := otel.Tracer("InterestService").Start(ctx, "ClassifierStage.Extract")
	defer span.End()

	l := c.logger.With(slog.String("method", "ClassifierStage.Extract"))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response, err := c.classifier.Classify(ctx, classifierPrompt(query))
	if err != nil {
		l.WarnContext(ctx, "Classifier call failed, using fallback", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "classifier call failed")
		return Unavailable()
	}

	tags, err := parseTagArray(response)
	if err != nil {
		l.WarnContext(ctx, "Classifier response unusable, using fallback", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "classifier response malformed")
		return Unavailable()
	}

	span.SetAttributes(attribute.Int("tags.count", len(tags)))
	span.SetStatus(codes.Ok, "classified")
	return Extracted(tags, types.InterestSourceClassifier)
}

func classifierPrompt(query string) string {
	vocab := Vocabulary()
	names := make([]string, len(vocab))
	for i, t := range vocab {
		names[i] = string(t)
	}
	return fmt.Sprintf(`You classify what a person is looking for nearby.
Allowed tags: %s.
Return ONLY a JSON array with between 1 and 3 allowed tags that best describe the request, for example ["sushi","restaurant"].
Return [] if none apply.
Request: %q`, strings.Join(names, ", "), query)
}

// GeminiClassifier is a Classifier backed by the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier falls back to GOOGLE_GEMINI_API_KEY when apiKey is empty.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClassifier{client: client, model: model}, nil
}

func (g *GeminiClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "Classify", trace.WithAttributes(
		attribute.String("model", g.model),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		MaxOutputTokens: 64,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := result.Text()
	span.SetAttributes(attribute.Int("response.length", len(text)))
	return text, nil
}
