// Package enduser lists the end users of a project and validates their
// access tokens.
package enduser

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

const endUsersPath = "/v2/end-users"

// AuthenticationMethod is one way an end user can sign in.
type AuthenticationMethod struct {
	Type  string `json:"type" yaml:"type"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Sub   string `json:"sub,omitempty" yaml:"sub,omitempty"`
}

// EndUser is an end user of a project and the accounts it owns.
type EndUser struct {
	UserID                string                 `json:"userId" yaml:"userId"`
	AuthenticationMethods []AuthenticationMethod `json:"authenticationMethods" yaml:"authenticationMethods"`
	EVMAccounts           []string               `json:"evmAccounts,omitempty" yaml:"evmAccounts,omitempty"`
	EVMSmartAccounts      []string               `json:"evmSmartAccounts,omitempty" yaml:"evmSmartAccounts,omitempty"`
	SolanaAccounts        []string               `json:"solanaAccounts,omitempty" yaml:"solanaAccounts,omitempty"`
	CreatedAt             *time.Time             `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// ListOptions selects a page of end users. Sort entries look like
// "createdAt=desc"; the API sorts oldest first when unset.
type ListOptions struct {
	PageSize  int
	PageToken string
	Sort      []string
}

// ListResult is a page of end users.
type ListResult struct {
	EndUsers      []EndUser `json:"endUsers" yaml:"endUsers"`
	NextPageToken string    `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// Client calls the end user endpoints.
type Client struct {
	api transport.Doer
}

// New creates an end user client on top of api.
func New(api transport.Doer) *Client {
	return &Client{api: api}
}

// ListEndUsers returns a page of end users.
func (c *Client) ListEndUsers(ctx context.Context, opts ListOptions) (*ListResult, error) {
	q := url.Values{}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.PageToken != "" {
		q.Set("pageToken", opts.PageToken)
	}
	for _, s := range opts.Sort {
		if s = strings.TrimSpace(s); s != "" {
			q.Add("sort", s)
		}
	}

	var out ListResult
	if err := c.api.Do(ctx, http.MethodGet, endUsersPath, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateAccessToken checks an end user access token and returns the user
// it belongs to.
func (c *Client) ValidateAccessToken(ctx context.Context, accessToken string) (*EndUser, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, cdperrors.NewValidationError("accessToken", "is required")
	}
	var out EndUser
	body := map[string]string{"accessToken": accessToken}
	if err := c.api.Do(ctx, http.MethodPost, endUsersPath+"/auth/validate-token", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
