// Package workflow triggers background workflows (title and description
// generation) on the hosted workflow service.
package workflow

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/video-platform/internal/platform/httpclient"
)

type Client struct {
	http *httpclient.Client
}

func New(baseURL, token string, cfg httpclient.Config, opts ...httpclient.Option) *Client {
	opts = append([]httpclient.Option{httpclient.WithBearer(token)}, opts...)
	return &Client{http: httpclient.New("workflow", baseURL, cfg, opts...)}
}

type triggerResponse struct {
	WorkflowRunID string `json:"workflowRunId"`
}

// Trigger starts the workflow served at target with body as its input and
// returns the run id.
func (c *Client) Trigger(ctx context.Context, target string, body any) (string, error) {
	if target == "" {
		return "", errors.New("workflow: empty target url")
	}
	out, err := httpclient.Do[triggerResponse](ctx, c.http, http.MethodPost, "/v2/trigger/"+target, body)
	if err != nil {
		return "", err
	}
	if out.WorkflowRunID == "" {
		return "", errors.New("workflow: response without run id")
	}
	return out.WorkflowRunID, nil
}
