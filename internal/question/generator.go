package question

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContentGenerator produces curriculum questions for a set of OA codes. The
// AI service behind it is a black box; only the returned bank matters here.
type ContentGenerator interface {
	GenerateBank(ctx context.Context, req BankRequest) ([]Question, error)
	EnqueueBank(ctx context.Context, req BankRequest) error
}

// GeneratorConfig holds connection details for the generator service.
type GeneratorConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// HTTPGenerator implements ContentGenerator against the external service.
type HTTPGenerator struct {
	httpClient  *http.Client
	config      GeneratorConfig
	logger      zerolog.Logger
	generateURL string
	enqueueURL  string
}

var _ ContentGenerator = (*HTTPGenerator)(nil)

func NewHTTPGenerator(cfg GeneratorConfig, logger zerolog.Logger) *HTTPGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/")

	return &HTTPGenerator{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config:      cfg,
		logger:      logger.With().Str("component", "content_generator").Logger(),
		generateURL: base + "/generate",
		enqueueURL:  base + "/enqueue",
	}
}

// GenerateBank synchronously requests a question bank.
func (g *HTTPGenerator) GenerateBank(ctx context.Context, req BankRequest) ([]Question, error) {
	if g.config.URL == "" {
		return nil, fmt.Errorf("generator endpoint not configured")
	}

	body, err := json.Marshal(generatorRequest{
		OACodes:    req.OACodes,
		Count:      req.Count,
		Difficulty: req.Difficulty,
		Subject:    req.Subject,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.generateURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	var genResp generatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode generator payload: %w", err)
	}

	questions := make([]Question, 0, len(genResp.Questions))
	for _, q := range genResp.Questions {
		questions = append(questions, normalizeGenerated(q))
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("generator returned empty bank")
	}
	return questions, nil
}

// EnqueueBank notifies the generator service to prep a bank asynchronously.
func (g *HTTPGenerator) EnqueueBank(ctx context.Context, req BankRequest) error {
	if g.config.URL == "" {
		return nil
	}

	body, err := json.Marshal(generatorRequest{
		OACodes:    req.OACodes,
		Count:      req.Count,
		Difficulty: req.Difficulty,
		Subject:    req.Subject,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.enqueueURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("enqueue returned status %d", resp.StatusCode)
	}
	return nil
}

func normalizeGenerated(q generatedQuestion) Question {
	options := q.Options
	// Answer must appear among the options for choice questions.
	if q.Answer != "" && len(options) > 0 {
		found := false
		for _, opt := range options {
			if strings.EqualFold(opt, q.Answer) {
				found = true
				break
			}
		}
		if !found {
			options = append(options, q.Answer)
		}
	}

	id := q.ID
	if id == "" {
		id = uuid.NewString()
	}

	qType := q.Type
	if qType == "" {
		qType = TypeMultipleChoice
	}
	difficulty := q.Difficulty
	if difficulty == "" {
		difficulty = DifficultyEasy
	}
	points := q.Points
	if points <= 0 {
		points = 10
	}

	return Question{
		ID:            id,
		Stem:          q.Stem,
		Type:          qType,
		Options:       options,
		CorrectAnswer: q.Answer,
		Difficulty:    difficulty,
		BloomLevel:    q.BloomLevel,
		OACode:        q.OACode,
		Points:        points,
		NumericRange:  q.NumericRange,
	}
}

type generatorRequest struct {
	OACodes    []string `json:"oa_codes"`
	Count      int      `json:"count"`
	Difficulty string   `json:"difficulty"`
	Subject    string   `json:"subject"`
}

type generatedQuestion struct {
	ID           string        `json:"id"`
	Stem         string        `json:"stem"`
	Type         string        `json:"type"`
	Options      []string      `json:"options"`
	Answer       string        `json:"answer"`
	Difficulty   string        `json:"difficulty"`
	BloomLevel   string        `json:"bloom_level"`
	OACode       string        `json:"oa_code"`
	Points       int           `json:"points"`
	NumericRange *NumericRange `json:"numeric_range"`
}

type generatorResponse struct {
	Questions []generatedQuestion `json:"questions"`
}
