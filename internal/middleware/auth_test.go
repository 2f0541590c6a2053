package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vermapushpendra/FullBackend/internal/models"
)

type stubAuthenticator struct {
	token string
	user  models.PublicUser
}

func (s stubAuthenticator) Authenticate(_ context.Context, accessToken string) (models.PublicUser, error) {
	if accessToken != s.token {
		return models.PublicUser{}, errors.New("invalid token")
	}
	return s.user, nil
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	handler := RequireAuth(stubAuthenticator{token: "good"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	handler := RequireAuth(stubAuthenticator{token: "good"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthAttachesUserFromHeader(t *testing.T) {
	want := models.PublicUser{ID: "user-1", Username: "pushpendra"}

	var got models.PublicUser
	var ok bool
	handler := RequireAuth(stubAuthenticator{token: "good", user: want})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ok || got.ID != want.ID {
		t.Fatalf("expected user %q on context, got %+v", want.ID, got)
	}
}

func TestRequireAuthReadsAccessTokenCookie(t *testing.T) {
	want := models.PublicUser{ID: "user-1"}

	var ok bool
	handler := RequireAuth(stubAuthenticator{token: "good", user: want})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "good"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ok {
		t.Fatal("expected user on context from cookie token")
	}
}

func TestOptionalAuthContinuesAnonymously(t *testing.T) {
	var ok bool
	handler := OptionalAuth(stubAuthenticator{token: "good"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ok {
		t.Fatal("expected no user on context for invalid token")
	}
}

func TestOptionalAuthAttachesValidUser(t *testing.T) {
	want := models.PublicUser{ID: "user-1"}

	var got models.PublicUser
	var ok bool
	handler := OptionalAuth(stubAuthenticator{token: "good", user: want})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !ok || got.ID != want.ID {
		t.Fatalf("expected user %q on context, got %+v", want.ID, got)
	}
}
