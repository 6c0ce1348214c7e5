package replicate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"LandmarkGolang/pkg/log"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

const DefaultBaseURL = "https://api.replicate.com/v1"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrPredictionFailed = errors.New("prediction did not succeed")

type Config struct {
	Token        string
	BaseURL      string
	PollInterval time.Duration
	Timeout      time.Duration
}

type Client struct {
	http         *resty.Client
	pollInterval time.Duration
}

type Prediction struct {
	ID     string              `json:"id"`
	Model  string              `json:"model"`
	Status string              `json:"status"`
	Output jsoniter.RawMessage `json:"output"`
	Error  any                 `json:"error"`
	URLs   struct {
		Get    string `json:"get"`
		Cancel string `json:"cancel"`
	} `json:"urls"`
}

func (p *Prediction) Done() bool {
	switch p.Status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

type predictionRequest struct {
	Version string         `json:"version,omitempty"`
	Input   map[string]any `json:"input"`
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.Token).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{
		http:         httpClient,
		pollInterval: cfg.PollInterval,
	}
}

// Predict creates a prediction for model and blocks until it reaches a
// terminal status or ctx is done. model is "owner/name" for official models
// or "owner/name:version" for a pinned version.
func (c *Client) Predict(ctx context.Context, model string, input map[string]any) (*Prediction, error) {
	path, body, err := predictionTarget(model, input)
	if err != nil {
		return nil, err
	}

	var pred Prediction
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "wait").
		SetBody(body).
		SetResult(&pred).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create prediction: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}

	log.Debug(log.Fields{
		"prediction_id": pred.ID,
		"model":         model,
		"status":        pred.Status,
	}, "[replicate.Predict] prediction created")

	for !pred.Done() {
		if pred.URLs.Get == "" {
			return nil, fmt.Errorf("prediction %s has no poll url", pred.ID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		if err := c.get(ctx, pred.URLs.Get, &pred); err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return &pred, fmt.Errorf("%w: %s %s: %v", ErrPredictionFailed, pred.ID, pred.Status, pred.Error)
	}
	return &pred, nil
}

func (c *Client) get(ctx context.Context, url string, pred *Prediction) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(pred).
		Get(url)
	if err != nil {
		return fmt.Errorf("poll prediction: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("poll prediction: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	return nil
}

func predictionTarget(model string, input map[string]any) (string, predictionRequest, error) {
	name, version, pinned := strings.Cut(model, ":")
	owner, repo, ok := strings.Cut(name, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", predictionRequest{}, fmt.Errorf("invalid model reference %q", model)
	}

	if pinned {
		if version == "" {
			return "", predictionRequest{}, fmt.Errorf("invalid model reference %q", model)
		}
		return "/predictions", predictionRequest{Version: version, Input: input}, nil
	}
	return fmt.Sprintf("/models/%s/%s/predictions", owner, repo), predictionRequest{Input: input}, nil
}
