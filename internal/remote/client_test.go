package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trip-board/backend/internal/auth"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   Point
}

func newTestServer(t *testing.T, status int, response any) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&rec.body)
		}
		requests = append(requests, rec)

		w.WriteHeader(status)
		if response != nil {
			json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestClientSendsStaticToken(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, []Point{{ID: "1", Type: "taxi"}})
	c := NewClient(Config{BaseURL: srv.URL, Token: "abc"})

	points, err := c.Points(context.Background())
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(points) != 1 || points[0].ID != "1" {
		t.Fatalf("unexpected points %+v", points)
	}
	got := (*requests)[0]
	if got.method != http.MethodGet || got.path != "/points" || got.auth != "Bearer abc" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestClientMintsTokenFromSecret(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, []Point{})
	c := NewClient(Config{BaseURL: srv.URL, Secret: "s3cret"})

	for i := 0; i < 2; i++ {
		if _, err := c.Points(context.Background()); err != nil {
			t.Fatalf("Points: %v", err)
		}
	}

	first, second := (*requests)[0].auth, (*requests)[1].auth
	if first != second {
		t.Fatal("token should be minted once and reused")
	}
	if _, err := auth.ParseToken([]byte("s3cret"), first[len("Bearer "):]); err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
}

func TestClientWithoutCredentials(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusNoContent, nil)
	c := NewClient(Config{BaseURL: srv.URL})

	if err := c.DeletePoint(context.Background(), "a b"); err != nil {
		t.Fatalf("DeletePoint: %v", err)
	}
	got := (*requests)[0]
	if got.auth != "" {
		t.Fatalf("unexpected Authorization header %q", got.auth)
	}
	if got.method != http.MethodDelete || got.path != "/points/a b" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestClientCreateAndUpdate(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, Point{ID: "42", Type: "bus"})
	c := NewClient(Config{BaseURL: srv.URL})

	created, err := c.CreatePoint(context.Background(), Point{Type: "bus", BasePrice: 5})
	if err != nil {
		t.Fatalf("CreatePoint: %v", err)
	}
	if created.ID != "42" {
		t.Fatalf("created = %+v", created)
	}
	if got := (*requests)[0]; got.method != http.MethodPost || got.body.BasePrice != 5 {
		t.Fatalf("unexpected request %+v", got)
	}

	// PUT must answer 200; 201 is not a valid update response.
	if _, err := c.UpdatePoint(context.Background(), Point{ID: "42"}); err == nil {
		t.Fatal("UpdatePoint accepted 201")
	}
}

func TestClientStatusError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest, map[string]string{"error": "validation_error"})
	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.Offers(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Status != http.StatusBadRequest || se.Body == "" {
		t.Fatalf("unexpected status error %+v", se)
	}
}
