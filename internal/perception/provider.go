package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/signal"
)

// #region provider-interface

// Provider abstracts the external perception service that turns a
// capture into extracted numeric signals. The engine never sees raw
// imagery.
type Provider interface {
	Capture(ctx context.Context, captureRef string) (signal.Snapshot, error)
}

// #endregion provider-interface

// #region http-provider

// HTTPProvider calls the perception service over HTTP JSON.
type HTTPProvider struct {
	baseURL string
	bounds  catalog.SignalBounds
	client  *http.Client
}

// NewHTTPProvider returns a provider for the given base URL.
func NewHTTPProvider(baseURL string, bounds catalog.SignalBounds) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		bounds:  bounds,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// NewHTTPProviderWithClient injects a client for testing.
func NewHTTPProviderWithClient(baseURL string, bounds catalog.SignalBounds, client *http.Client) *HTTPProvider {
	return &HTTPProvider{baseURL: baseURL, bounds: bounds, client: client}
}

type captureRequest struct {
	CaptureRef string `json:"capture_ref"`
}

// Capture requests signal extraction for a capture reference and
// resolves the response into a validated snapshot.
func (p *HTTPProvider) Capture(ctx context.Context, captureRef string) (signal.Snapshot, error) {
	body, err := json.Marshal(captureRequest{CaptureRef: captureRef})
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("marshal capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("build capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("perception call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return signal.Snapshot{}, fmt.Errorf("perception status %d: %s", resp.StatusCode, payload)
	}

	var in signal.SnapshotInput
	if err := json.NewDecoder(resp.Body).Decode(&in); err != nil {
		return signal.Snapshot{}, fmt.Errorf("decode perception response: %w", err)
	}
	snap, err := in.Resolve(p.bounds)
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("perception response: %w", err)
	}
	return snap, nil
}

// #endregion http-provider
