package notary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Notary anchors a content hash on an external tamper-evident ledger and
// returns the ledger's transaction identifier. The ledger may be absent or
// unavailable; callers degrade by recording the failure, never by rolling
// back the transition that requested notarization.
type Notary interface {
	Notarize(ctx context.Context, subjectID uuid.UUID, dataHash string) (string, error)
}

// Noop is selected at startup when no ledger endpoint is configured.
type Noop struct{}

func (Noop) Notarize(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	return "", nil
}

// HTTPNotary posts to a ledger gateway: POST {endpoint}/notarize
// {"subjectId": ..., "dataHash": ...} -> {"txId": ...}.
type HTTPNotary struct {
	endpoint string
	client   *http.Client
}

func NewHTTP(endpoint string, timeout time.Duration) *HTTPNotary {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotary{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *HTTPNotary) Notarize(ctx context.Context, subjectID uuid.UUID, dataHash string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"subjectId": subjectID.String(),
		"dataHash":  dataHash,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/notarize", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("notary submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("notary submit: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		TxID string `json:"txId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("notary response: %w", err)
	}
	return out.TxID, nil
}
