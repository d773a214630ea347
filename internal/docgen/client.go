// Package docgen talks to the external word-document renderer. The renderer
// fills a poem template with a recipient name and the generated text and
// returns the binary .docx artifact.
package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ContentTypeDocx is the MIME type of the rendered artifact.
const ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// RenderRequest carries the renderer's wire fields.
type RenderRequest struct {
	FirstName string `json:"voornaam"`
	SessionID string `json:"session_id"`
	Poem      string `json:"rijm"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Render posts the request to the renderer and returns the document bytes.
// The poem text is whitespace-normalized before sending.
func (c *Client) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	req.Poem = FormatPoem(req.Poem)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-word", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling renderer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("renderer rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("session_id", req.SessionID))
		return nil, fmt.Errorf("renderer returned %d: %s", resp.StatusCode, bytes.TrimSpace(excerpt))
	}

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading rendered document: %w", err)
	}
	return doc, nil
}
