// Package llm implements a mood.Classifier backed by the OpenAI Responses
// API with a strict JSON schema.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/cognicore/jotlens/pkg/jotlens/internalerr"
	"github.com/cognicore/jotlens/pkg/jotlens/mood"
)

const instructions = `You rate the overall sentiment of a personal journal entry.
Return a polarity between -1 (very negative) and 1 (very positive); 0 is neutral.
Judge the writer's own feelings, not the events they describe.`

// Config configures a Classifier
type Config struct {
	APIKey          string
	BaseURL         string // empty uses the SDK default
	Model           string
	MaxOutputTokens int64
	Timeout         time.Duration

	HTTPClient *http.Client
}

// Classifier asks a model for the polarity of an entry
type Classifier struct {
	client    *openai.Client
	model     string
	maxOutput int64
	timeout   time.Duration
}

type polarityResponse struct {
	Polarity float64 `json:"polarity" jsonschema:"description=Sentiment from -1 (negative) to 1 (positive)"`
}

var polaritySchema = generateSchema[polarityResponse]()

// New creates a Classifier. Model and APIKey are required.
func New(cfg Config) (*Classifier, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model required: %w", internalerr.ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: api key required: %w", internalerr.ErrInvalidConfig)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := openai.NewClient(opts...)

	maxOut := cfg.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = 64
	}
	return &Classifier{
		client:    &client,
		model:     cfg.Model,
		maxOutput: maxOut,
		timeout:   cfg.Timeout,
	}, nil
}

// Classify implements mood.Classifier
func (c *Classifier) Classify(ctx context.Context, text string) (mood.Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(c.maxOutput),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "EntryPolarity",
					Schema:      polaritySchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Journal entry sentiment"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return mood.Result{}, fmt.Errorf("llm: classify: %v: %w", err, internalerr.ErrUnavailable)
	}

	out := strings.TrimSpace(resp.OutputText())
	if out == "" {
		return mood.Result{}, fmt.Errorf("llm: empty response: %w", internalerr.ErrUnavailable)
	}
	var pr polarityResponse
	if err := json.Unmarshal([]byte(out), &pr); err != nil {
		return mood.Result{}, fmt.Errorf("llm: decode polarity %q: %w", truncate(out, 200), err)
	}
	return mood.NewResult(clamp(pr.Polarity)), nil
}

var _ mood.Classifier = (*Classifier)(nil)

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureStrict(m)
	return m
}

// ensureStrict marks every object closed with all properties required,
// which strict structured output demands.
func ensureStrict(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				ensureStrict(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrict(items)
	}
}
