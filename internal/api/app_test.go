package api

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drawnet/drawboard/internal/database"
	"github.com/drawnet/drawboard/internal/relay"
	"github.com/drawnet/drawboard/internal/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func dialWs(t *testing.T, serverUrl, token string) *websocket.Conn {
	wsUrl := "ws" + strings.TrimPrefix(serverUrl, "http") + "/ws?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) (*relay.ServerFrame, bool) {
	conn.SetReadDeadline(time.Now().Add(timeout))

	var frame relay.ServerFrame
	if err := conn.ReadJSON(&frame); err != nil {
		return nil, false
	}

	return &frame, true
}

func TestWebsocketRelay(t *testing.T) {
	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)

	mockRepo.On("GetAccountById", 1).Return(database.User{Id: 1, Username: "alice"}, nil).Once()
	mockRepo.On("GetAccountById", 2).Return(database.User{Id: 2, Username: "bob"}, nil).Once()
	mockRepo.On("GetAccountById", 3).Return(database.User{Id: 3, Username: "carol"}, nil).Once()
	// room 42 has no backing record; events flow without persistence
	mockRepo.On("GetRoomByExternalId", "42").Return(database.Room{}, sql.ErrNoRows).Once()

	rs := newRunningRelay(t, mockRepo)
	s := newTestApp(t, mockRepo, rs)

	ts := httptest.NewServer(s.mux.Handler)
	defer ts.Close()

	tokenFor := func(id int) string {
		token, err := s.createJwtForSession(types.User{Id: id}, time.Hour)
		if err != nil {
			t.Fatalf("failed to create token: %v", err)
		}
		return token
	}

	alice := dialWs(t, ts.URL, tokenFor(1))
	bob := dialWs(t, ts.URL, tokenFor(2))
	carol := dialWs(t, ts.URL, tokenFor(3))

	// alice and bob share room 42, carol is in room 7
	assert.NoError(t, alice.WriteJSON(map[string]string{"type": "join_room", "roomId": "42"}))
	assert.NoError(t, bob.WriteJSON(map[string]string{"type": "join_room", "roomId": "42"}))
	assert.NoError(t, carol.WriteJSON(map[string]string{"type": "join_room", "roomId": "7"}))

	// give the joins time to pass through the relay loop
	time.Sleep(200 * time.Millisecond)

	assert.NoError(t, alice.WriteJSON(map[string]string{"type": "chat", "roomId": "42", "message": "hello"}))

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		frame, ok := readFrame(t, conn, time.Second)
		if !ok {
			t.Fatalf("expected %s to receive the chat frame", name)
		}
		assert.Equal(t, relay.TypeChat, frame.Type, "expected chat frame for %s", name)
		assert.Equal(t, "42", frame.RoomId, "expected frame for room 42")
		assert.Equal(t, "hello", frame.Message.Text, "expected chat text to match")
		assert.Equal(t, "alice", frame.Message.User.Name, "expected author name")
	}

	// a shape deletion reaches the whole room
	assert.NoError(t, alice.WriteJSON(map[string]any{
		"type":    "delete_shape",
		"payload": map[string]string{"id": "s1", "roomId": "42"},
	}))

	frame, ok := readFrame(t, bob, time.Second)
	if !ok {
		t.Fatal("expected bob to receive the delete frame")
	}
	assert.Equal(t, relay.TypeDeleteShape, frame.Type, "expected delete_shape frame")
	assert.Equal(t, "s1", frame.Payload.Id, "expected shape id to match")

	// carol is in a different room and sees nothing
	_, ok = readFrame(t, carol, 300*time.Millisecond)
	assert.False(t, ok, "expected no frames for a member of another room")

	// malformed frames are dropped and the connection stays usable
	assert.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.NoError(t, alice.WriteJSON(map[string]string{"type": "chat", "roomId": "42", "message": "still here"}))

	frame, ok = readFrame(t, bob, time.Second)
	if !ok {
		t.Fatal("expected bob to receive the chat after a malformed frame")
	}
	assert.Equal(t, "still here", frame.Message.Text, "expected chat text to match")
}

func TestWebsocketHandshakeRejected(t *testing.T) {
	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)

	rs := newRunningRelay(t, mockRepo)
	s := newTestApp(t, mockRepo, rs)

	ts := httptest.NewServer(s.mux.Handler)
	defer ts.Close()

	token, err := s.createJwtForSession(types.User{Id: 1}, -time.Hour)
	assert.NoError(t, err, "expected no error creating token")

	wsUrl := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	assert.Error(t, err, "expected handshake to fail with an expired token")
	assert.Nil(t, conn, "expected no connection")
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 before upgrade")
	}
}
