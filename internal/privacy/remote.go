package privacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pharmwatch/icsr-sentinel/internal/config"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"go.uber.org/zap"
)

// RemoteClassifier classifies fields through a remote chat-completions
// deployment. It is strictly an enhancement: on missing credentials, any
// transport error, a malformed response or timeout it silently falls back to
// the deterministic ladder, so the pipeline never depends on the network.
type RemoteClassifier struct {
	cfg    config.EnhanceConfig
	client *http.Client
	logger *logger.Logger
}

// NewRemoteClassifier creates a remote-backed field classifier.
func NewRemoteClassifier(cfg config.EnhanceConfig, log *logger.Logger) *RemoteClassifier {
	return &RemoteClassifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// remoteVerdict is the JSON shape the deployment is instructed to return.
type remoteVerdict struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Confidence  float64 `json:"confidence"`
	Code        string  `json:"code"`
}

const classifyPrompt = `You are a pharmacovigilance data-protection assistant.
Given an XML element name and its text content from an adverse event report,
decide whether the content is personally identifiable information. Respond
with a single JSON object {"category","description","priority","confidence","code"}
where category is one of: patient_initials, email_address, phone_number,
postal_code, date_of_birth, person_name, address, city_name,
generic_personal_data, or "none" if the field is not PII. priority is one of
high, medium, low. confidence is between 0 and 1.`

// ClassifyField classifies one field remotely, falling back to the
// deterministic ladder on any failure.
func (r *RemoteClassifier) ClassifyField(ctx context.Context, tag, text string) (Detection, bool) {
	if r.cfg.Endpoint == "" || r.cfg.APIKey == "" {
		return Deterministic(tag, text)
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	verdict, err := r.classify(ctx, tag, text)
	if err != nil {
		// Degraded classification is observable through the detection
		// method tag, never surfaced as an error.
		r.logger.Debug("enhanced classification unavailable, using deterministic rules",
			zap.String("tag", tag),
			zap.Error(err),
		)
		return Deterministic(tag, text)
	}

	if verdict.Category == "none" {
		return Detection{}, false
	}

	category := Category(verdict.Category)
	if !validCategory(category) || !validPriority(Priority(verdict.Priority)) {
		r.logger.Debug("enhanced classification returned unknown category, using deterministic rules",
			zap.String("tag", tag),
			zap.String("category", verdict.Category),
		)
		return Deterministic(tag, text)
	}

	confidence := verdict.Confidence
	if confidence < 0 || confidence > 1 {
		return Deterministic(tag, text)
	}

	code := verdict.Code
	if code == "" {
		code = CodePatternDetected
	}

	return Detection{
		Category:    category,
		Description: verdict.Description,
		Priority:    Priority(verdict.Priority),
		Confidence:  confidence,
		Code:        code,
		Method:      MethodEnhanced,
	}, true
}

func (r *RemoteClassifier) classify(ctx context.Context, tag, text string) (*remoteVerdict, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: fmt.Sprintf("element: %s\ncontent: %s", tag, text)},
		},
		Temperature: 0,
		MaxTokens:   200,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		r.cfg.Endpoint, r.cfg.Deployment, r.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	var verdict remoteVerdict
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse verdict: %w", err)
	}

	return &verdict, nil
}

func validCategory(c Category) bool {
	switch c {
	case CategoryPatientInitials, CategoryEmailAddress, CategoryPhoneNumber,
		CategoryPostalCode, CategoryDateOfBirth, CategoryPersonName,
		CategoryAddress, CategoryCityName, CategoryGeneric:
		return true
	}
	return false
}

func validPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}
