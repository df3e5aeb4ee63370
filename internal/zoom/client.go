// Package zoom calls the meeting platform's registrant approval API.
package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/keygate/pkg/logctx"
)

// DefaultBaseURL is the platform's REST API root.
const DefaultBaseURL = "https://api.zoom.us/v2"

// maxBodyLog caps how much of a response body is kept for logging.
const maxBodyLog = 4096

// TokenSource issues bearer tokens for outbound calls.
type TokenSource interface {
	Issue() (string, error)
}

// ApprovalResult is the outcome of one approval call. Approved is true only
// for a 204 response; everything else, errors included, is a failure.
type ApprovalResult struct {
	Approved   bool
	StatusCode int
	Body       string
	Err        error
}

type statusRequest struct {
	Action      string              `json:"action"`
	Registrants []registrantRequest `json:"registrants"`
}

type registrantRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client approves meeting registrants.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an approval client. A zero timeout leaves the HTTP client without one.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ApproveRegistrant marks registrantID as approved for meetingID.
func (c *Client) ApproveRegistrant(ctx context.Context, meetingID, registrantID, email string) ApprovalResult {
	logger := logctx.From(ctx, c.logger)

	res := c.approve(ctx, meetingID, registrantID, email)
	if res.Err != nil {
		logger.Warn("approval request failed",
			zap.String("meeting_id", meetingID),
			zap.String("registrant_id", registrantID),
			zap.Error(res.Err),
		)
		return res
	}
	logger.Info("approval API response",
		zap.String("meeting_id", meetingID),
		zap.String("registrant_id", registrantID),
		zap.Int("status_code", res.StatusCode),
		zap.String("body", res.Body),
	)
	return res
}

func (c *Client) approve(ctx context.Context, meetingID, registrantID, email string) ApprovalResult {
	token, err := c.tokens.Issue()
	if err != nil {
		return ApprovalResult{Err: fmt.Errorf("issue token: %w", err)}
	}
	body, err := json.Marshal(statusRequest{
		Action:      "approve",
		Registrants: []registrantRequest{{ID: registrantID, Email: email}},
	})
	if err != nil {
		return ApprovalResult{Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := c.baseURL + "/meetings/" + url.PathEscape(meetingID) + "/registrants/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return ApprovalResult{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ApprovalResult{Err: fmt.Errorf("put registrant status: %w", err)}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))

	return ApprovalResult{
		Approved:   resp.StatusCode == http.StatusNoContent,
		StatusCode: resp.StatusCode,
		Body:       string(raw),
	}
}
