package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
// DeepSeek and other OpenAI-compatible gateways work through BaseURL.
type OpenAILLM struct {
	Model       string
	Temperature float64
	Opts        []option.RequestOption
	// JSONObjectMode 用于只支持 response_format=json_object 的兼容接口（如 DeepSeek），
	// schema 改为写进 system prompt。
	JSONObjectMode bool
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
		Opts:           opts,
		JSONObjectMode: cfg.Provider == "deepseek",
	}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(o.Opts...)

	system := prompt.System
	if prompt.Schema != nil && o.JSONObjectMode {
		hint, err := schemaInstruction(prompt.Schema)
		if err != nil {
			return "", err
		}
		system += "\n\n" + hint
	}
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt.User),
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.Model),
		Messages:    msgs,
		Temperature: openai.Float(o.Temperature),
	}
	switch {
	case prompt.Schema != nil && o.JSONObjectMode:
		jsonObject := shared.NewResponseFormatJSONObjectParam()
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &jsonObject}
	case prompt.Schema != nil:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        prompt.Schema.Name,
					Description: openai.String(prompt.Schema.Description),
					Schema:      prompt.Schema.Definition,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	if refusal := resp.Choices[0].Message.Refusal; refusal != "" {
		return "", errors.New("openai: refused: " + refusal)
	}
	return resp.Choices[0].Message.Content, nil
}

// schemaInstruction renders the schema as a system-prompt instruction for
// endpoints that cannot enforce it server-side. json_object mode also requires
// the word "json" to appear in the prompt.
func schemaInstruction(s *Schema) (string, error) {
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return "", fmt.Errorf("marshal schema %s: %w", s.Name, err)
	}
	return fmt.Sprintf("Respond with a single json object (%s) that conforms to this JSON Schema, with no extra keys and no markdown:\n%s", s.Name, def), nil
}
