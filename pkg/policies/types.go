package policies

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chainsafe/cdp-sdk-go/internal/validation"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

// Scope is where a policy applies.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeAccount Scope = "account"
)

// Action is what a matching rule does.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// Operation is the signing operation a rule governs.
type Operation string

const (
	OpSignEvmTransaction   Operation = "signEvmTransaction"
	OpSendEvmTransaction   Operation = "sendEvmTransaction"
	OpSignEvmMessage       Operation = "signEvmMessage"
	OpSignEvmTypedData     Operation = "signEvmTypedData"
	OpSignEvmHash          Operation = "signEvmHash"
	OpSignSolTransaction   Operation = "signSolTransaction"
	OpSendSolTransaction   Operation = "sendSolTransaction"
	OpSignSolMessage       Operation = "signSolMessage"
	OpPrepareUserOperation Operation = "prepareUserOperation"
	OpSendUserOperation    Operation = "sendUserOperation"
)

const descriptionTag = "policy_description"

var descriptionPattern = regexp.MustCompile(`^[A-Za-z0-9 ,.]{1,50}$`)

func init() {
	err := validation.Register(descriptionTag, func(fl validator.FieldLevel) bool {
		return descriptionPattern.MatchString(fl.Field().String())
	}, "must be 1-50 characters of letters, digits, spaces, commas or periods")
	if err != nil {
		panic(err)
	}
}

// Policy is a stored policy.
type Policy struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Scope       Scope  `json:"scope" yaml:"scope"`
	Rules       []Rule `json:"rules" yaml:"rules"`
	CreatedAt   string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Rule accepts or rejects an operation when all of its criteria match.
type Rule struct {
	Action    Action      `json:"action" yaml:"action" validate:"required,oneof=accept reject"`
	Operation Operation   `json:"operation" yaml:"operation" validate:"required,oneof=signEvmTransaction sendEvmTransaction signEvmMessage signEvmTypedData signEvmHash signSolTransaction sendSolTransaction signSolMessage prepareUserOperation sendUserOperation"` //nolint:lll
	Criteria  []Criterion `json:"criteria,omitempty" yaml:"criteria,omitempty" validate:"dive"`
}

// Criterion is a single rule condition. Type selects the criterion kind and
// Fields holds the rest of its attributes, for example
// {"addresses": [...], "operator": "in"}.
type Criterion struct {
	Type   string         `json:"type" validate:"required"`
	Fields map[string]any `json:"-"`
}

func (c Criterion) flatten() map[string]any {
	m := make(map[string]any, len(c.Fields)+1)
	maps.Copy(m, c.Fields)
	m["type"] = c.Type
	return m
}

func (c *Criterion) split(m map[string]any) error {
	raw, ok := m["type"]
	t, isString := raw.(string)
	if ok && !isString {
		return fmt.Errorf("criterion type must be a string, got %T", raw)
	}
	delete(m, "type")
	c.Type = t
	c.Fields = m
	return nil
}

// MarshalJSON writes the criterion as a flat object.
func (c Criterion) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.flatten())
}

// UnmarshalJSON reads a flat criterion object.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return c.split(m)
}

// MarshalYAML writes the criterion as a flat mapping.
func (c Criterion) MarshalYAML() (any, error) {
	return c.flatten(), nil
}

// UnmarshalYAML reads a flat criterion mapping.
func (c *Criterion) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return err
	}
	return c.split(m)
}

// CreatePolicyRequest is the body of CreatePolicy.
type CreatePolicyRequest struct {
	Scope       Scope  `json:"scope" yaml:"scope" validate:"required,oneof=project account"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" validate:"omitempty,policy_description"`
	Rules       []Rule `json:"rules" yaml:"rules" validate:"required,min=1,max=10,dive"`
}

// Validate checks the request before it is sent.
func (r CreatePolicyRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	return validateCriteria(r.Rules)
}

// UpdatePolicyRequest is the body of UpdatePolicy. The scope of a policy
// cannot change.
type UpdatePolicyRequest struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty" validate:"omitempty,policy_description"`
	Rules       []Rule `json:"rules" yaml:"rules" validate:"required,min=1,max=10,dive"`
}

// Validate checks the request before it is sent.
func (r UpdatePolicyRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	return validateCriteria(r.Rules)
}

// validateCriteria requires criteria on every rule except signEvmHash, which
// has nothing to match on.
func validateCriteria(rules []Rule) error {
	for i, rule := range rules {
		if rule.Operation != OpSignEvmHash && len(rule.Criteria) == 0 {
			return cdperrors.NewValidationError(fmt.Sprintf("rules[%d].criteria", i), "must have at least 1 element(s)")
		}
	}
	return nil
}

// ListPoliciesOptions filters ListPolicies.
type ListPoliciesOptions struct {
	PageSize  int    `json:"pageSize" validate:"gte=0"`
	PageToken string `json:"pageToken"`
	Scope     Scope  `json:"scope" validate:"omitempty,oneof=project account"`
}

// ListPoliciesResult is a page of policies.
type ListPoliciesResult struct {
	Policies      []Policy `json:"policies" yaml:"policies"`
	NextPageToken string   `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}
