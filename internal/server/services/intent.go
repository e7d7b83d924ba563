package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Intent is the structured reading of a user prompt: what to produce and how.
type Intent struct {
	// OutputType is "image" or "video".
	OutputType string `json:"output_type"`
	// Mode is "generate" (from scratch) or "transform" (edit the attached image).
	Mode string `json:"mode"`
	// Task is the cleaned-up creative instruction.
	Task string `json:"task"`
	// NumOutputs is how many variants to produce (1..4).
	NumOutputs int `json:"num_outputs"`
	// AspectRatio like "1:1", "16:9"; empty means default.
	AspectRatio string `json:"aspect_ratio"`
	// VideoSeconds applies only when OutputType is "video".
	VideoSeconds int `json:"video_seconds"`
	// Valid is false when the prompt is not a creative request;
	// ErrorMessage then explains what to fix, in user-facing words.
	Valid        bool   `json:"valid"`
	ErrorMessage string `json:"error_message"`
}

// Classifier reads a prompt (and whether an image is attached) into an Intent.
type Classifier interface {
	Classify(ctx context.Context, prompt string, hasImage bool) (*Intent, error)
}

const classifierSystemPrompt = `You classify prompts for a creative image/video generator.
Respond with a single JSON object:
{"output_type":"image"|"video","mode":"generate"|"transform","task":"...","num_outputs":1,"aspect_ratio":"","valid":true,"error_message":""}
Rules:
- mode is "transform" only when the user refers to an attached image.
- num_outputs is between 1 and 4.
- If the prompt is not a creative request (greeting, question, gibberish), set valid=false and put a short, polite explanation in error_message.`

// OpenAIClassifier asks a chat model for the intent, in JSON mode.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

var _ Classifier = (*OpenAIClassifier)(nil)

func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	return &OpenAIClassifier{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, prompt string, hasImage bool) (*Intent, error) {
	userContent := prompt
	if hasImage {
		userContent = "[image attached]\n" + prompt
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		Temperature: 0,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("intent classification failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("intent classification returned no choices")
	}

	var intent Intent
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &intent); err != nil {
		return nil, fmt.Errorf("intent classification returned invalid JSON: %w", err)
	}

	normalizeIntent(&intent, hasImage)
	return &intent, nil
}

// RuleClassifier is the keyless fallback: a few keyword heuristics standing
// in for the model.
type RuleClassifier struct{}

var _ Classifier = (*RuleClassifier)(nil)

func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

func (c *RuleClassifier) Classify(ctx context.Context, prompt string, hasImage bool) (*Intent, error) {
	p := strings.ToLower(strings.TrimSpace(prompt))

	intent := &Intent{OutputType: "image", Mode: "generate", Task: strings.TrimSpace(prompt), NumOutputs: 1, Valid: true}

	if p == "" && !hasImage {
		intent.Valid = false
		intent.ErrorMessage = "Please describe what you would like to create."
		normalizeIntent(intent, hasImage)
		return intent, nil
	}

	greetings := []string{"hi", "hello", "hey", "thanks", "thank you"}
	for _, g := range greetings {
		if p == g {
			intent.Valid = false
			intent.ErrorMessage = "Please write a creative prompt describing an image or video to make."
			normalizeIntent(intent, hasImage)
			return intent, nil
		}
	}

	for _, kw := range []string{"video", "animate", "animation", "clip"} {
		if strings.Contains(p, kw) {
			intent.OutputType = "video"
			break
		}
	}

	if hasImage {
		intent.Mode = "transform"
		if intent.Task == "" {
			intent.Task = "enhance the attached image"
		}
	}

	normalizeIntent(intent, hasImage)
	return intent, nil
}

// normalizeIntent clamps model output into the ranges the pipeline supports.
func normalizeIntent(intent *Intent, hasImage bool) {
	if intent.OutputType != "video" {
		intent.OutputType = "image"
	}
	if !hasImage {
		intent.Mode = "generate"
	} else if intent.Mode != "generate" && intent.Mode != "transform" {
		intent.Mode = "transform"
	}
	if intent.NumOutputs < 1 {
		intent.NumOutputs = 1
	}
	if intent.NumOutputs > 4 {
		intent.NumOutputs = 4
	}
	if intent.OutputType == "video" {
		if intent.VideoSeconds < 1 {
			intent.VideoSeconds = 5
		}
		if intent.VideoSeconds > 30 {
			intent.VideoSeconds = 30
		}
	} else {
		intent.VideoSeconds = 0
	}
	if intent.Valid && strings.TrimSpace(intent.Task) == "" {
		intent.Task = "untitled creative request"
	}
}
