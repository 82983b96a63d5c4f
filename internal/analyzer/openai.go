package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

type OpenAIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	MaxOutputTokens int
	Timeout         time.Duration
	MaxRetries      int
}

// OpenAIClient calls the Responses API with a strict JSON schema for the
// mood/summary/reason triple.
type OpenAIClient struct {
	client          *openai.Client
	model           string
	maxOutputTokens int
}

// analysisReply mirrors the object the model is asked to return.
type analysisReply struct {
	Mood    string `json:"mood" jsonschema:"required,enum=happy,enum=sad,enum=anxious,enum=neutral,enum=excited,enum=angry,enum=peaceful,enum=grateful,enum=frustrated,enum=worried,enum=content,enum=tired"`
	Summary string `json:"summary" jsonschema:"required,description=One-line summary of the entry in 15 to 30 words"`
	Reason  string `json:"reason" jsonschema:"required,description=Signals in the entry that point to the mood"`
}

var analysisSchema = generateSchema[analysisReply]()

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not configured")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("OPENAI_MODEL is not configured")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	client := openai.NewClient(opts...)

	return &OpenAIClient{
		client:          &client,
		model:           model,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

func (c *OpenAIClient) Name() string {
	return "openai:" + c.model
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "JournalAnalysis",
					Schema:      analysisSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Mood, summary and reason for one journal entry"),
					Type:        "json_schema",
				},
			},
		},
	}
	if c.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(c.maxOutputTokens))
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}
	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		if resp.IncompleteDetails.Reason != "" {
			return "", fmt.Errorf("%w: incomplete (%s)", ErrEmptyReply, resp.IncompleteDetails.Reason)
		}
		return "", ErrEmptyReply
	}
	return text, nil
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	raw, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(err)
	}
	requireAllProperties(schema)
	return schema
}

// requireAllProperties applies the strict-mode rules: every object lists all
// of its properties as required and forbids additional ones.
func requireAllProperties(schema map[string]any) {
	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false
		if properties, ok := schema["properties"].(map[string]any); ok && len(properties) > 0 {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	if properties, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range properties {
			if nested, ok := prop.(map[string]any); ok {
				requireAllProperties(nested)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		requireAllProperties(items)
	}
}
