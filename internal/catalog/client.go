package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/models"
)

// StatusError is returned when the quiz API answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Default().WithPrefix("catalog"),
	}
}

// FetchActivities loads the deck of cards for the current quiz.
func (c *Client) FetchActivities(ctx context.Context) ([]models.Activity, error) {
	var out []models.Activity
	if err := c.do(ctx, http.MethodGet, "/activities", nil, &out); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).WithPrefix("catalog").Info("fetched %d activities", len(out))
	return out, nil
}

// SubmitSwipes posts every decision of a finished deck in judgement order.
func (c *Client) SubmitSwipes(ctx context.Context, decisions []models.SwipeDecision) error {
	if decisions == nil {
		decisions = []models.SwipeDecision{}
	}
	if err := c.do(ctx, http.MethodPost, "/activities", decisions, nil); err != nil {
		return err
	}
	logger.FromContext(ctx).WithPrefix("catalog").Info("submitted %d swipe results", len(decisions))
	return nil
}

func (c *Client) QuizID(ctx context.Context) (int64, error) {
	var out struct {
		QuizID int64 `json:"quiz_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/quiz", nil, &out); err != nil {
		return 0, err
	}
	return out.QuizID, nil
}

func (c *Client) FetchRecap(ctx context.Context) ([]models.Recap, error) {
	var out []models.Recap
	if err := c.do(ctx, http.MethodGet, "/recap", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	log := logger.FromContext(ctx).WithPrefix("catalog").WithField("path", path)
	url := c.baseURL + path

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	log.Debug("%s %s", method, url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(raw))
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
