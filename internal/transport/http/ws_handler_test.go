package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"movies-battle/internal/domain"
)

func TestWebSocketRankingFeed(t *testing.T) {
	env := newTestServer(t)
	defer env.server.Close()

	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/ranking"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot: nobody has scored yet.
	entries := readRanking(t, conn)
	if len(entries) != 2 || entries[0].TotalScore != 0 {
		t.Fatalf("unexpected initial ranking %+v", entries)
	}

	view, _, err := env.games.StartGame(context.Background(), "bob")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res := env.answerCorrectly(t, view)
	if !res.Correct {
		t.Fatalf("expected correct answer")
	}

	entries = readRanking(t, conn)
	if entries[0].Username != "bob" || entries[0].TotalScore != 100 {
		t.Fatalf("expected bob leading with 100, got %+v", entries)
	}
}

func readRanking(t *testing.T, conn *websocket.Conn) []domain.RankingEntry {
	t.Helper()
	var msg struct {
		Type    string                `json:"type"`
		Payload []domain.RankingEntry `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "ranking" {
		t.Fatalf("expected ranking message, got %s", msg.Type)
	}
	return msg.Payload
}

func decodeEnvelope(t *testing.T, resp *http.Response, data any) domain.Envelope {
	t.Helper()
	defer resp.Body.Close()
	var raw struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return domain.Envelope{Status: raw.Status, Message: raw.Message}
}
