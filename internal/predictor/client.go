package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// HTTPError is returned when the inference endpoint answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("inference endpoint: %s: %s", e.Status, e.Body)
}

// ErrNoJSON means the model output contained no JSON object.
var ErrNoJSON = errors.New("model output has no JSON object")

// AIResult is the structured answer requested from the model.
type AIResult struct {
	Sentiment      string   `json:"sentiment"`
	PredictedPrice *float64 `json:"predicted_price"`
	Confidence     *float64 `json:"confidence"`
	Reason         string   `json:"reason"`
}

type generateParams struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters generateParams `json:"parameters"`
}

type generated struct {
	GeneratedText string `json:"generated_text"`
}

// Client calls a text-generation inference endpoint.
type Client struct {
	URL    string
	APIKey string
	Client *http.Client
	Logger *zap.Logger
}

// NewClient creates a Client.
func NewClient(url, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 60 * time.Second},
		Logger: logger.Named("predictor"),
	}
}

// Predict asks the model for tomorrow's target given the technical context.
func (c *Client) Predict(ctx context.Context, symbol, technical string) (*AIResult, error) {
	c.Logger.Debug("calling model", zap.String("symbol", symbol))

	body, err := json.Marshal(generateRequest{
		Inputs:     BuildPrompt(technical),
		Parameters: generateParams{MaxNewTokens: 150, Temperature: 0.1, ReturnFullText: false},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call endpoint: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(raw)}
	}

	text, err := generatedText(raw)
	if err != nil {
		return nil, err
	}
	return ParseResult(text)
}

// generatedText accepts either a list of generations or a single object.
func generatedText(raw []byte) (string, error) {
	var list []generated
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", nil
		}
		return list[0].GeneratedText, nil
	}
	var one generated
	if err := json.Unmarshal(raw, &one); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return one.GeneratedText, nil
}

var jsonBlock = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseResult extracts the outermost JSON object from free text and repairs
// common model formatting mistakes before decoding it.
func ParseResult(text string) (*AIResult, error) {
	block := jsonBlock.FindString(text)
	if block == "" {
		return nil, ErrNoJSON
	}
	fixed, err := jsonrepair.JSONRepair(block)
	if err != nil {
		return nil, fmt.Errorf("repair model JSON: %w", err)
	}
	var res AIResult
	if err := json.Unmarshal([]byte(fixed), &res); err != nil {
		return nil, fmt.Errorf("decode model JSON: %w", err)
	}
	return &res, nil
}
