package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/board"
	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/remote"
	"github.com/trip-board/backend/internal/storage"
	"github.com/trip-board/backend/internal/storage/models"
	"github.com/trip-board/backend/internal/trip"
	"github.com/trip-board/backend/internal/trip/triptest"
	"github.com/trip-board/backend/internal/websocket"
)

const testSecret = "test-secret"

const catalogYAML = `
destinations:
  - id: d1
    name: Amsterdam
  - id: d2
    name: Geneva
offers:
  - type: taxi
    offers:
      - {id: o1, title: Upgrade, price: 20}
  - type: flight
    offers:
      - {id: o1, title: Luggage, price: 30}
points:
  - type: taxi
    destination: d1
    basePrice: 100
    dateFrom: "2024-03-10T10:00:00Z"
    dateTo: "2024-03-10T11:00:00Z"
    offers: [o1]
`

func newTripAPI(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "trip.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.RunMigrations(db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	seed, err := storage.ParseSeed([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	if _, err := storage.ImportSeed(context.Background(), db, seed); err != nil {
		t.Fatalf("import seed: %v", err)
	}

	srv := httptest.NewServer(NewTripAPIRouter(TripAPIDeps{
		DB:      db,
		Secret:  []byte(testSecret),
		Origins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func statusOf(err error) int {
	var se *remote.StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func TestTripAPIRoundTrip(t *testing.T) {
	srv := newTripAPI(t)
	client := remote.NewClient(remote.Config{BaseURL: srv.URL + "/api", Secret: testSecret, Timeout: 5 * time.Second})
	ctx := context.Background()

	points, err := client.Points(ctx)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(points) != 1 || points[0].Type != "taxi" || points[0].BasePrice != 100 {
		t.Fatalf("unexpected points %+v", points)
	}

	destinations, err := client.Destinations(ctx)
	if err != nil || len(destinations) != 2 {
		t.Fatalf("Destinations = %+v, %v", destinations, err)
	}
	groups, err := client.Offers(ctx)
	if err != nil || len(groups) != len(models.WaypointTypes) {
		t.Fatalf("Offers = %d groups, %v", len(groups), err)
	}

	created, err := client.CreatePoint(ctx, remote.Point{
		Type:        "flight",
		Destination: "d2",
		BasePrice:   300,
		DateFrom:    "2024-03-11T10:00:00Z",
		DateTo:      "2024-03-11T12:00:00Z",
		Offers:      []string{"o1"},
	})
	if err != nil {
		t.Fatalf("CreatePoint: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created point has no id")
	}

	points, _ = client.Points(ctx)
	if len(points) != 2 || points[0].ID != created.ID {
		t.Fatalf("created point should list first, got %+v", points)
	}

	created.IsFavorite = true
	created.BasePrice = 350
	updated, err := client.UpdatePoint(ctx, created)
	if err != nil {
		t.Fatalf("UpdatePoint: %v", err)
	}
	if !updated.IsFavorite || updated.BasePrice != 350 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := client.DeletePoint(ctx, created.ID); err != nil {
		t.Fatalf("DeletePoint: %v", err)
	}
	if err := client.DeletePoint(ctx, created.ID); statusOf(err) != http.StatusNotFound {
		t.Fatalf("second delete = %v, want 404", err)
	}
}

func TestTripAPIRejectsInvalidPoints(t *testing.T) {
	srv := newTripAPI(t)
	client := remote.NewClient(remote.Config{BaseURL: srv.URL + "/api", Secret: testSecret})
	ctx := context.Background()

	tests := []struct {
		name  string
		point remote.Point
	}{
		{"unknown destination", remote.Point{Type: "taxi", Destination: "nowhere", BasePrice: 10, DateFrom: "2024-03-10T10:00:00Z", DateTo: "2024-03-10T11:00:00Z"}},
		{"foreign offer", remote.Point{Type: "bus", Destination: "d1", BasePrice: 10, DateFrom: "2024-03-10T10:00:00Z", DateTo: "2024-03-10T11:00:00Z", Offers: []string{"o1"}}},
		{"duplicate offer", remote.Point{Type: "taxi", Destination: "d1", BasePrice: 10, DateFrom: "2024-03-10T10:00:00Z", DateTo: "2024-03-10T11:00:00Z", Offers: []string{"o1", "o1"}}},
		{"zero price", remote.Point{Type: "taxi", Destination: "d1", BasePrice: 0, DateFrom: "2024-03-10T10:00:00Z", DateTo: "2024-03-10T11:00:00Z"}},
		{"reversed dates", remote.Point{Type: "taxi", Destination: "d1", BasePrice: 10, DateFrom: "2024-03-10T12:00:00Z", DateTo: "2024-03-10T11:00:00Z"}},
		{"bad date", remote.Point{Type: "taxi", Destination: "d1", BasePrice: 10, DateFrom: "tomorrow", DateTo: "2024-03-10T11:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.CreatePoint(ctx, tt.point); statusOf(err) != http.StatusBadRequest {
				t.Fatalf("CreatePoint = %v, want 400", err)
			}
		})
	}

	missing := remote.Point{ID: "missing", Type: "taxi", Destination: "d1", BasePrice: 10, DateFrom: "2024-03-10T10:00:00Z", DateTo: "2024-03-10T11:00:00Z"}
	if _, err := client.UpdatePoint(ctx, missing); statusOf(err) != http.StatusNotFound {
		t.Fatalf("UpdatePoint(missing) = %v, want 404", err)
	}
}

func TestTripAPIRequiresToken(t *testing.T) {
	srv := newTripAPI(t)

	resp, err := http.Get(srv.URL + "/api/points")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("GET without token = %d, want 401", resp.StatusCode)
	}

	bad := remote.NewClient(remote.Config{BaseURL: srv.URL + "/api", Secret: "wrong"})
	if _, err := bad.Points(context.Background()); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("Points with wrong secret = %v, want 401", err)
	}

	resp, err = http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d, want 200 without token", resp.StatusCode)
	}
}

// The board server tests run the board inline against an in-memory trip API.

type boardServer struct {
	srv   *httptest.Server
	board *board.Board
	hub   *websocket.Hub
}

func newBoardServer(t *testing.T) *boardServer {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	fake := triptest.NewRemote(
		[]remote.Point{
			{ID: "past", Type: "taxi", Destination: "d1", BasePrice: 100,
				DateFrom: now.Add(-48 * time.Hour).Format(time.RFC3339), DateTo: now.Add(-47 * time.Hour).Format(time.RFC3339), Offers: []string{}},
			{ID: "next", Type: "taxi", Destination: "d1", BasePrice: 200,
				DateFrom: now.Add(48 * time.Hour).Format(time.RFC3339), DateTo: now.Add(49 * time.Hour).Format(time.RFC3339), Offers: []string{}},
		},
		[]models.Destination{{ID: "d1", Name: "Amsterdam"}},
		nil,
	)

	hub := websocket.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	b := board.New(trip.NewStore(fake, nil), filter.NewModel(), websocket.NewEventBroadcaster(hub), zap.NewNop(),
		board.WithRunner(func(fn func()) { fn() }),
	)
	t.Cleanup(b.Close)
	b.Init(context.Background())

	srv := httptest.NewServer(NewBoardRouter(BoardDeps{
		Board:      b,
		Hub:        hub,
		Dispatcher: websocket.NewDispatcher(b, nil),
		Origins:    []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return &boardServer{srv: srv, board: b, hub: hub}
}

type boardJSON struct {
	State string `json:"state"`
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

func (s *boardServer) post(t *testing.T, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(s.srv.URL+"/api/board/commands", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestBoardHTTP(t *testing.T) {
	s := newBoardServer(t)

	resp, err := http.Get(s.srv.URL + "/api/board")
	if err != nil {
		t.Fatal(err)
	}
	var v boardJSON
	err = json.NewDecoder(resp.Body).Decode(&v)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if v.State != "ready" || len(v.Items) != 2 {
		t.Fatalf("unexpected board %+v", v)
	}

	if resp := s.post(t, `{"type":"filter.change","payload":{"filter":"future"}}`); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("filter.change = %d, want 202", resp.StatusCode)
	}
	if got := s.board.Snapshot().Items; len(got) != 1 || got[0].ID != "next" {
		t.Fatalf("future filter not applied: %+v", got)
	}

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"malformed", `{`, http.StatusBadRequest, "bad_request"},
		{"unknown command", `{"type":"item.explode"}`, http.StatusBadRequest, "unknown_command"},
		{"unknown filter", `{"type":"filter.change","payload":{"filter":"past"}}`, http.StatusBadRequest, "bad_request"},
		{"missing item", `{"type":"item.expand","payload":{"id":"nope"}}`, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.post(t, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var e struct {
				Error string `json:"error"`
			}
			json.NewDecoder(resp.Body).Decode(&e)
			if e.Error != tt.code {
				t.Fatalf("error code = %q, want %q", e.Error, tt.code)
			}
		})
	}
}

func TestBoardHealthAndStatus(t *testing.T) {
	s := newBoardServer(t)

	resp, err := http.Get(s.srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d", resp.StatusCode)
	}

	resp, err = http.Get(s.srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st struct {
		BoardState string `json:"board_state"`
		Waypoints  int    `json:"waypoints"`
		Clients    int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.BoardState != "ready" || st.Waypoints != 2 || st.Clients != 0 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func readMessage(t *testing.T, conn *gws.Conn) websocket.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg websocket.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestBoardWebSocket(t *testing.T) {
	s := newBoardServer(t)

	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readMessage(t, conn)
	if first.Type != websocket.TypeBoardRendered {
		t.Fatalf("first message = %s, want snapshot", first.Type)
	}

	deadline := time.Now().Add(time.Second)
	for s.hub.ClientCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	if err := conn.WriteJSON(map[string]any{"type": "item.expand", "payload": map[string]string{"id": "past"}}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != websocket.TypeItemRendered {
		t.Fatalf("message = %s, want item render", msg.Type)
	}

	if err := conn.WriteJSON(map[string]any{"type": "sort.change", "payload": map[string]string{"sort": "bogus"}}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != websocket.TypeError {
		t.Fatalf("message = %s, want error", msg.Type)
	}
}
