package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSub struct {
	id   string
	full bool

	mu   sync.Mutex
	msgs []Frame
}

func (f *fakeSub) ID() string { return f.id }

func (f *fakeSub) Deliver(msg []byte) bool {
	if f.full {
		return false
	}
	var fr Frame
	if err := json.Unmarshal(msg, &fr); err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, fr)
	return true
}

func (f *fakeSub) received() []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Frame(nil), f.msgs...)
}

func TestChannelKey(t *testing.T) {
	assert.Equal(t, "gramsevak:asha", ChannelKey("  Asha "))
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	h := NewHub()
	a, b := &fakeSub{id: "a"}, &fakeSub{id: "b"}
	h.Register(a)
	h.Register(b)

	h.Broadcast(EventIssueUpdate, map[string]string{"id": "1"})

	require.Len(t, a.received(), 1)
	require.Len(t, b.received(), 1)
	assert.Equal(t, EventIssueUpdate, a.received()[0].Event)
}

func TestHubDirectOnlyReachesRoom(t *testing.T) {
	h := NewHub()
	asha, ravi, citizen := &fakeSub{id: "asha"}, &fakeSub{id: "ravi"}, &fakeSub{id: "c"}
	for _, s := range []*fakeSub{asha, ravi, citizen} {
		h.Register(s)
	}
	key, err := h.Join(asha, "ASHA ")
	require.NoError(t, err)
	assert.Equal(t, "gramsevak:asha", key)
	_, err = h.Join(ravi, "Ravi")
	require.NoError(t, err)

	h.Direct("Asha", EventNewGramSevakIssue, "fork")

	assert.Len(t, asha.received(), 1)
	assert.Empty(t, ravi.received())
	assert.Empty(t, citizen.received())
}

func TestHubDirectWithoutSubscriberIsLost(t *testing.T) {
	h := NewHub()
	asha := &fakeSub{id: "asha"}
	h.Register(asha)

	h.Direct("Asha", EventNewGramSevakIssue, "first")

	_, err := h.Join(asha, "Asha")
	require.NoError(t, err)
	assert.Empty(t, asha.received(), "nothing is queued for late joiners")

	h.Direct("Asha", EventNewGramSevakIssue, "second")
	require.Len(t, asha.received(), 1)
	assert.Equal(t, "second", asha.received()[0].Data)
}

func TestHubJoinRejectsEmptyName(t *testing.T) {
	h := NewHub()
	_, err := h.Join(&fakeSub{id: "x"}, "   ")
	assert.ErrorIs(t, err, ErrEmptyWorker)
}

func TestHubUnregisterLeavesRooms(t *testing.T) {
	h := NewHub()
	asha := &fakeSub{id: "asha"}
	h.Register(asha)
	_, err := h.Join(asha, "Asha")
	require.NoError(t, err)
	_, err = h.Join(asha, "asha")
	require.NoError(t, err)
	assert.Equal(t, 1, h.RoomSize("gramsevak:asha"))

	h.Unregister(asha)
	assert.Equal(t, 0, h.RoomSize("gramsevak:asha"))
	assert.Equal(t, 0, h.Connected())

	h.Direct("Asha", EventNewGramSevakIssue, "fork")
	assert.Empty(t, asha.received())
}

func TestHubSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	h := NewHub()
	slow, fast := &fakeSub{id: "slow", full: true}, &fakeSub{id: "fast"}
	h.Register(slow)
	h.Register(fast)

	h.Broadcast(EventVoteUpdate, 1)
	assert.Len(t, fast.received(), 1)
}

func TestServeWSRoutesByRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHub()
	r := gin.New()
	r.GET("/socket", h.ServeWS(NewUpgrader(nil)))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket"
	dial := func() *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	worker := dial()
	other := dial()
	require.Eventually(t, func() bool { return h.Connected() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, worker.WriteJSON(Frame{Event: EventJoinGramSevak, Data: " Asha"}))
	require.Eventually(t, func() bool { return h.RoomSize("gramsevak:asha") == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Direct("asha", EventNewGramSevakIssue, map[string]string{"assignedTo": "Asha"})

	var got Frame
	require.NoError(t, worker.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, worker.ReadJSON(&got))
	assert.Equal(t, EventNewGramSevakIssue, got.Event)

	h.Broadcast(EventIssueUpdate, "all")
	require.NoError(t, other.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, other.ReadJSON(&got))
	assert.Equal(t, EventIssueUpdate, got.Event, "the other socket only sees the broadcast")
}
