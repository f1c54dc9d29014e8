package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taivu9x/bowling-score/internal/domain"
)

func TestGetGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/games/g1":
			w.Write([]byte(`{"data":{"gameId":"g1","status":"IN_PROGRESS","version":4,"playerStates":[]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"game not found"}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	g, err := c.GetGame(context.Background(), "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if g.GameID != "g1" || g.Status != domain.StatusInProgress || g.Version != 4 {
		t.Fatalf("game = %+v", g)
	}

	_, err = c.GetGame(context.Background(), "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 || apiErr.Message != "game not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestListGamesFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[{"gameId":"b"},{"gameId":"a"}]}`))
	}))
	defer srv.Close()

	games, err := New(srv.URL).ListGames(context.Background(), domain.StatusCompleted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "status=COMPLETED" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(games) != 2 || games[0].GameID != "b" {
		t.Fatalf("games = %+v", games)
	}
}

func TestTransportErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetGame(context.Background(), "g1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v", err)
	}
}
