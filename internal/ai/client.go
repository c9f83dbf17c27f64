package ai

import (
	"context"
	"fmt"

	"github.com/myrjola/triage/internal/errors"
	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
	}
}

const MaxTokens = 4096

// systemPrompt pins the generator to the current flat case schema. The
// normalizer still treats the response as untrusted: the model drifts from
// the requested shape often enough that every payload goes through intake.
const systemPrompt = `You are a senior physician writing medical case studies for students.
Create one realistic fictional patient case.

The output MUST be valid JSON with exactly this structure:
{
  "title": "Short, engaging case title that does NOT name the disease",
  "patient": {
    "name": "Patient name",
    "age": 30,
    "gender": "Male/Female",
    "history": "Short history of the presenting illness (1-2 sentences)"
  },
  "symptoms": ["Symptom 1", "Symptom 2", "Symptom 3"],
  "lab_results": ["BP: 120/80", "Temp: 38C", "Leukocytes: high"],
  "correct_diagnosis": "Name of the correct diagnosis",
  "differential_diagnosis": ["Wrong disease 1", "Wrong disease 2", "Wrong disease 3"],
  "explanation": "Short medical explanation of why the diagnosis is correct.",
  "difficulty": "%s"
}`

// GenerateCase asks the model for a new case payload on the given topic.
// The returned bytes are the raw model output; callers must run them through
// the intake normalizer before play.
func (c *Client) GenerateCase(ctx context.Context, topic, difficulty string) ([]byte, error) {
	if difficulty == "" || difficulty == "random" {
		difficulty = "Medium"
	}
	userPrompt := fmt.Sprintf("Create a case about a common disease. Difficulty: %s.", difficulty)
	if topic != "" {
		userPrompt = fmt.Sprintf("Create a case specifically about: %s. Difficulty: %s.", topic, difficulty)
	}

	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT3Dot5Turbo1106,
			MaxTokens: MaxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, difficulty)},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("no completion choices returned")
	}
	return []byte(completion.Choices[0].Message.Content), nil
}
