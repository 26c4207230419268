// Package suggest asks a generative model which vehicle fits a booking.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"nomadx/internal/config"
	"nomadx/internal/models"
)

var (
	ErrSuggestionUnavailable = errors.New("vehicle suggestion unavailable")
	// ErrDisabled is returned when no model API key is configured.
	ErrDisabled = fmt.Errorf("%w: no model configured", ErrSuggestionUnavailable)
)

const systemPrompt = `You are a dispatcher for a ride-booking agency.
Given a booking, the vehicles currently available and the agency's past trips,
pick the single best vehicle for the booking. Answer only with the JSON object
described by the response schema. confidence_level is a number between 0 and 1.`

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggested_vehicle": {Type: genai.TypeString, Description: "The vehicle to assign."},
		"reasoning":         {Type: genai.TypeString, Description: "Why this vehicle fits."},
		"confidence_level":  {Type: genai.TypeNumber, Description: "Confidence between 0 and 1."},
	},
	Required: []string{"suggested_vehicle", "reasoning", "confidence_level"},
}

// generator produces the raw JSON answer for a prompt.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Client implements domain.VehicleSuggester.
type Client struct {
	gen     generator
	timeout time.Duration
	logger  *zerolog.Logger
}

// New builds a client for the configured model. Without an API key the client is
// disabled and every call returns ErrDisabled.
func New(ctx context.Context, cfg config.SuggestConfig, logger *zerolog.Logger) (*Client, error) {
	c := &Client{timeout: cfg.Timeout, logger: logger}
	if cfg.APIKey == "" {
		logger.Info().Msg("vehicle suggestions disabled: no api key")
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.gen = &genaiGenerator{client: client, model: cfg.Model}
	return c, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.gen != nil
}

// Suggest runs one model call. There is no retry; any failure is reported as
// ErrSuggestionUnavailable.
func (c *Client) Suggest(ctx context.Context, req models.SuggestionRequest) (*models.Suggestion, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.gen.generate(ctx, buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSuggestionUnavailable, err)
	}

	result, err := parse(raw)
	if err != nil {
		c.logger.Debug().Str("raw", raw).Msg("unparseable suggestion")
		return nil, fmt.Errorf("%w: %v", ErrSuggestionUnavailable, err)
	}
	return result, nil
}

func buildPrompt(req models.SuggestionRequest) string {
	var sb strings.Builder
	sb.WriteString("Booking details:\n")
	sb.WriteString(req.BookingDetails)
	sb.WriteString("\n\nVehicle availability:\n")
	sb.WriteString(req.VehicleAvailability)
	sb.WriteString("\n\nHistorical data:\n")
	sb.WriteString(req.HistoricalData)
	return sb.String()
}

// parse decodes the model answer. The confidence is passed through as returned.
func parse(raw string) (*models.Suggestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var result models.Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return nil, fmt.Errorf("decode model answer: %w", err)
	}
	if strings.TrimSpace(result.SuggestedVehicle) == "" {
		return nil, errors.New("model answer has no vehicle")
	}
	return &result, nil
}
