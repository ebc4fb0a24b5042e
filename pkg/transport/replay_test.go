package transport_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/cdp-sdk-go/pkg/cdptest"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

func TestClient_RetriedBodyIsReplayedAndResigned(t *testing.T) {
	srv := cdptest.NewServer(t)
	srv.HandleJSON(http.MethodPost, "/v2/evm/accounts", http.StatusCreated, map[string]any{
		"address": "0x0000000000000000000000000000000000000001",
		"name":    "treasury",
	})
	srv.FailNext(http.MethodPost, "/v2/evm/accounts", 2, http.StatusServiceUnavailable)

	c := srv.NewClient(t)
	ctx := transport.WithIdempotencyKey(context.Background(), "replay-key")

	var out struct {
		Name string `json:"name"`
	}
	in := map[string]any{"name": "treasury", "accountPolicy": "policy-1"}
	require.NoError(t, c.Do(ctx, http.MethodPost, "/v2/evm/accounts", nil, in, &out))
	assert.Equal(t, "treasury", out.Name)

	reqs := srv.Requests()
	require.Len(t, reqs, 3)
	for i, r := range reqs {
		assert.Equal(t, reqs[0].Body, r.Body, "attempt %d body", i+1)
		assert.NotEmpty(t, r.Body, "attempt %d body", i+1)
		assert.True(t, r.WalletAuth, "attempt %d wallet auth", i+1)
		assert.Empty(t, r.AuthError, "attempt %d auth", i+1)
		assert.Equal(t, "replay-key", r.Header.Get(transport.IdempotencyKeyHeader))
	}
}
