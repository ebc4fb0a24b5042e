package enduser

import (
	"context"
	"net/http"
	"testing"

	"github.com/chainsafe/cdp-sdk-go/pkg/cdptest"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

func TestListEndUsers(t *testing.T) {
	srv := cdptest.NewServer(t)
	c := New(srv.NewClient(t))
	srv.HandleJSON(http.MethodGet, "/v2/end-users", http.StatusOK, ListResult{
		EndUsers:      []EndUser{{UserID: "user-1", AuthenticationMethods: []AuthenticationMethod{{Type: "email", Email: "a@b.co"}}}},
		NextPageToken: "next",
	})

	res, err := c.ListEndUsers(context.Background(), ListOptions{PageSize: 20, Sort: []string{"createdAt=desc", " "}})
	if err != nil {
		t.Fatalf("ListEndUsers failed: %v", err)
	}
	if len(res.EndUsers) != 1 || res.EndUsers[0].UserID != "user-1" {
		t.Fatalf("unexpected end users: %+v", res.EndUsers)
	}
	if res.NextPageToken != "next" {
		t.Errorf("expected next page token 'next', got %q", res.NextPageToken)
	}

	q := srv.LastRequest(t).Query
	if q.Get("pageSize") != "20" {
		t.Errorf("expected pageSize 20, got %q", q.Get("pageSize"))
	}
	if sort := q["sort"]; len(sort) != 1 || sort[0] != "createdAt=desc" {
		t.Errorf("unexpected sort query: %v", sort)
	}
}

func TestValidateAccessToken(t *testing.T) {
	srv := cdptest.NewServer(t)
	c := New(srv.NewClient(t))
	srv.Handle(http.MethodPost, "/v2/end-users/auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if !cdptest.DecodeBody(w, r, &body) {
			return
		}
		if body["accessToken"] != "good-token" {
			cdptest.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token")
			return
		}
		cdptest.WriteJSON(w, http.StatusOK, EndUser{UserID: "user-1"})
	})
	ctx := context.Background()

	user, err := c.ValidateAccessToken(ctx, "good-token")
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if user.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", user.UserID)
	}

	_, err = c.ValidateAccessToken(ctx, "bad-token")
	if cdperrors.StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}

	before := len(srv.Requests())
	_, err = c.ValidateAccessToken(ctx, "  ")
	if !cdperrors.Is(err, cdperrors.CategoryDataError) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(srv.Requests()) != before {
		t.Error("empty token must not reach the API")
	}
}
