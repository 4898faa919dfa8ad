package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNonSuccessIsGenericError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": "INTERNAL", "message": "db down", "status_code": 500},
		})
	})

	_, err := c.GetTemplate(context.Background(), "t1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if err.Error() != "failed to fetch template" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "fetch template" {
		t.Fatalf("expected OperationError for fetch template, got %#v", err)
	}
}

func TestSessionCookieSentOnEveryRequest(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("session")
		if err != nil {
			seen = append(seen, "")
		} else {
			seen = append(seen, ck.Value)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID on %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{"organizations": []any{}})
	}, WithSessionCookie("", "abc123"))

	ctx := context.Background()
	if _, err := c.ListOrganizations(ctx); err != nil {
		t.Fatalf("ListOrganizations: %v", err)
	}
	if err := c.DeleteOrganization(ctx, "o1"); err != nil {
		t.Fatalf("DeleteOrganization: %v", err)
	}
	if len(seen) != 2 || seen[0] != "abc123" || seen[1] != "abc123" {
		t.Fatalf("expected session cookie on both requests, got %v", seen)
	}
}

func TestMissingEnvelopeFieldIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	})

	_, err := c.ListTemplates(context.Background(), ListTemplatesOptions{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if errors.Is(err, ErrOperationFailed) {
		t.Fatal("malformed response must not match ErrOperationFailed")
	}
}

func TestSchemaViolationIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"reviews": []map[string]any{{"id": "r1", "rating": 9}},
		})
	})

	_, err := c.ListTemplateReviews(context.Background(), "t1")
	if !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestTypeMismatchIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"templates": "nope"})
	})

	_, err := c.ListTemplates(context.Background(), ListTemplatesOptions{})
	if !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestNullEnvelopeFieldIsEmptyList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"members": null}`))
	})

	members, err := c.ListMembers(context.Background(), "o1")
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if members == nil || len(members) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", members)
	}
}

func TestTransportFailureIsOperationFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.ListOrganizations(context.Background())
	if !IsOperationFailed(err) {
		t.Fatalf("expected operation failed, got %v", err)
	}
}

func TestDefaultBaseURL(t *testing.T) {
	c := New("")
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
	c = New("https://api.example.com/")
	if c.LoginURL() != "https://api.example.com/auth/github" {
		t.Fatalf("LoginURL = %q", c.LoginURL())
	}
}

func TestClearSessionCookie(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("sid")
		if err != nil {
			got = append(got, "")
		} else {
			got = append(got, ck.Value)
		}
		w.WriteHeader(http.StatusOK)
	})

	ctx := context.Background()
	c.SetSessionCookie("sid", "v1")
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	c.ClearSessionCookie()
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(got) != 2 || got[0] != "v1" || got[1] != "" {
		t.Fatalf("unexpected cookies %v", got)
	}
}
