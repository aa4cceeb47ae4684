package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
)

// maxResponseBytes caps how much of a backend reply is buffered.
const maxResponseBytes = 20 << 20

var _ Backend = (*BackendClient)(nil)

// Backend is the external trip-planning service.
type Backend interface {
	Send(ctx context.Context, message string) (*models.ChatResult, error)
	FetchPDF(ctx context.Context) ([]byte, error)
}

// BackendClient talks to the chat backend over HTTP. Calls are never retried.
type BackendClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	maxBody int64
}

func NewBackendClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BackendClient {
	return &BackendClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:  logger,
		maxBody: maxResponseBytes,
	}
}

func (b *BackendClient) Send(ctx context.Context, message string) (*models.ChatResult, error) {
	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, application/pdf")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending chat request: %w: %w", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.logger.Warn("Chat backend returned error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("chat backend status %d: %w", resp.StatusCode, models.ErrUnavailable)
	}

	body, err := b.readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chat response: %w", err)
	}

	if isPDF(resp.Header.Get("Content-Type")) {
		return &models.ChatResult{PDF: body}, nil
	}

	var reply models.ChatReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w: %w", models.ErrUnavailable, err)
	}
	return &models.ChatResult{Reply: &reply}, nil
}

// FetchPDF downloads the most recently generated itinerary. A 404 from the
// backend maps to models.ErrNotFound.
func (b *BackendClient) FetchPDF(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/get-pdf", nil)
	if err != nil {
		return nil, fmt.Errorf("creating pdf request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching pdf: %w: %w", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("no generated pdf: %w", models.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("pdf backend status %d: %w", resp.StatusCode, models.ErrUnavailable)
	case !isPDF(resp.Header.Get("Content-Type")):
		return nil, fmt.Errorf("pdf backend returned %q: %w", resp.Header.Get("Content-Type"), models.ErrUnavailable)
	}

	body, err := b.readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	return body, nil
}

// readBody buffers a reply, rejecting one larger than maxBody instead of truncating it.
func (b *BackendClient) readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, b.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnavailable, err)
	}
	if int64(len(body)) > b.maxBody {
		b.logger.Warn("Chat backend reply too large", zap.Int64("limit_bytes", b.maxBody))
		return nil, fmt.Errorf("reply exceeds %d bytes: %w", b.maxBody, models.ErrUnavailable)
	}
	return body, nil
}

func isPDF(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/pdf"
}
