package bankingapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnavailable = errors.New("banking api unavailable")
	ErrRejected    = errors.New("banking api rejected the request")
)

// IBankingAPI invokes a routed operation against the downstream banking
// service. The routing core never calls this itself; the service layer
// does, once a decision approves execution.
type IBankingAPI interface {
	Invoke(ctx context.Context, endpoint string, bearerToken string, payload map[string]interface{}) (map[string]interface{}, error)
}

type bankingAPIClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func New(log *logrus.Logger) (IBankingAPI, error) {
	baseURL := os.Getenv("BANKING_API_BASE_URL")
	if baseURL == "" {
		return nil, errors.New("banking API base URL is required")
	}

	return &bankingAPIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

func (c *bankingAPIClient) Invoke(
	ctx context.Context,
	endpoint string,
	bearerToken string,
	payload map[string]interface{},
) (map[string]interface{}, error) {
	body, err := jsoniter.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"error":    err.Error(),
		}).Error("Banking API call failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Warn("Banking API returned an error status")
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	result := make(map[string]interface{})
	if len(responseBody) > 0 {
		if err := jsoniter.Unmarshal(responseBody, &result); err != nil {
			return nil, fmt.Errorf("%w: invalid response body: %v", ErrRejected, err)
		}
	}

	return result, nil
}
