// Package policies manages policy engine policies, the rules CDP evaluates
// before signing with an account.
package policies

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/internal/validation"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

const policiesPath = "/v2/policy-engine/policies"

// Client calls the policy engine endpoints.
type Client struct {
	api    transport.Doer
	logger *zap.Logger
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a policies client on top of api.
func New(api transport.Doer, opts ...Option) *Client {
	c := &Client{api: api, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.Named("policies")
	return c
}

// CreatePolicy validates and creates a policy.
func (c *Client) CreatePolicy(ctx context.Context, req CreatePolicyRequest) (*Policy, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out Policy
	if err := c.api.Do(ctx, http.MethodPost, policiesPath, nil, req, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("created policy", zap.String("id", out.ID), zap.String("scope", string(out.Scope)))
	return &out, nil
}

// GetPolicy fetches a policy by id.
func (c *Client) GetPolicy(ctx context.Context, id string) (*Policy, error) {
	if id == "" {
		return nil, cdperrors.NewValidationError("id", "is required")
	}
	var out Policy
	if err := c.api.Do(ctx, http.MethodGet, policiesPath+"/"+transport.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPolicies returns a page of policies, optionally filtered by scope.
func (c *Client) ListPolicies(ctx context.Context, opts ListPoliciesOptions) (*ListPoliciesResult, error) {
	if err := validation.Struct(opts); err != nil {
		return nil, err
	}
	q := url.Values{}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.PageToken != "" {
		q.Set("pageToken", opts.PageToken)
	}
	if opts.Scope != "" {
		q.Set("scope", string(opts.Scope))
	}

	var out ListPoliciesResult
	if err := c.api.Do(ctx, http.MethodGet, policiesPath, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePolicy replaces the description and rules of a policy.
func (c *Client) UpdatePolicy(ctx context.Context, id string, req UpdatePolicyRequest) (*Policy, error) {
	if id == "" {
		return nil, cdperrors.NewValidationError("id", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out Policy
	if err := c.api.Do(ctx, http.MethodPut, policiesPath+"/"+transport.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePolicy deletes a policy. Policies still attached to an account
// cannot be deleted.
func (c *Client) DeletePolicy(ctx context.Context, id string) error {
	if id == "" {
		return cdperrors.NewValidationError("id", "is required")
	}
	if err := c.api.Do(ctx, http.MethodDelete, policiesPath+"/"+transport.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	c.logger.Debug("deleted policy", zap.String("id", id))
	return nil
}
