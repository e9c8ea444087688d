package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fakhrymubarak/character-challenge-api/internal/config"
	"github.com/fakhrymubarak/character-challenge-api/internal/handler"
	"github.com/fakhrymubarak/character-challenge-api/internal/model"
)

type stubService struct {
	characters []model.Character
}

func (s stubService) GetCharacters(ctx context.Context) ([]model.Character, error) {
	return s.characters, nil
}

func TestEnvironmentVariables(t *testing.T) {
	// Test default port behavior
	port := config.GetServerPort()
	if port != "8080" {
		t.Errorf("Expected default port 8080, got %s", port)
	}
}

func TestNewServer(t *testing.T) {
	srv := newServer(http.NewServeMux())
	if srv.Addr != ":8080" {
		t.Errorf("Expected addr :8080, got %s", srv.Addr)
	}
	if srv.ReadHeaderTimeout != 15*time.Second {
		t.Errorf("Expected read header timeout 15s, got %v", srv.ReadHeaderTimeout)
	}
	if srv.WriteTimeout != 60*time.Second {
		t.Errorf("Expected write timeout 60s, got %v", srv.WriteTimeout)
	}
}

func TestRouter_ChallengeRoute(t *testing.T) {
	mux := newRouter(handler.NewCharacterHandler(stubService{}))
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/challengeapi")
	if err != nil {
		t.Fatalf("could not send GET request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), model.NoCharactersMessage) {
		t.Errorf("Expected no-match envelope, got %s", body)
	}
}

func TestRouter_MetricsRoute(t *testing.T) {
	mux := newRouter(handler.NewCharacterHandler(stubService{}))

	// Drive one request so the response counter has a sample
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/challengeapi", nil))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "challenge_responses_total") {
		t.Error("Expected challenge_responses_total in metrics output")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	mux := newRouter(handler.NewCharacterHandler(stubService{}))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/characters", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}
