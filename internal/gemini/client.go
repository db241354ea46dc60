package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Generator produces a vocabulary entry for a word as raw JSON.
type Generator interface {
	Generate(ctx context.Context, word string) (json.RawMessage, error)
}

// Entry is the structured answer requested by ResponseSchema. The arrays
// are index-aligned: meaningKr[i], example[i] and antonymEn[i] describe the
// same sense.
type Entry struct {
	Name      string   `json:"name"`
	MeaningKr []string `json:"meaningKr"`
	Example   []string `json:"example"`
	AntonymEn []string `json:"antonymEn"`
	Tags      []string `json:"tags"`
}

// Aligned reports whether the sense arrays have the same length.
func (e Entry) Aligned() bool {
	return len(e.MeaningKr) == len(e.Example) && len(e.Example) == len(e.AntonymEn)
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, word string) (json.RawMessage, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(fmt.Sprintf(EntryPrompt, word)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemInstruction}}},
			Temperature:       genai.Ptr[float32](0),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    ResponseSchema(),
		},
	)
	if err != nil {
		return nil, err
	}
	return DecodeResponse(resp.Text())
}

// DecodeResponse checks that text is a single JSON object and returns it
// unchanged.
func DecodeResponse(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	return json.RawMessage(text), nil
}
