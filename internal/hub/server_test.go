package hub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/wire"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *Store) {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "notifications.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewHub(store)
	server := NewServer(h, store, testSecret, "publish-token", nil)
	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, h, store
}

func dialChannel(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	token, err := GenerateToken(testSecret, user, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial channel: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wire.Inbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	in, err := wire.Decode(data)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return in
}

func TestChannelRejectsBadToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial with bad token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", resp)
	}

	url = "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications"
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("dial without token succeeded")
	}
}

func TestChannelSyncsCountOnConnect(t *testing.T) {
	srv, _, store := newTestServer(t)

	store.Save("alice", notify.Notification{ID: "n1", Title: "t"})
	store.Save("alice", notify.Notification{ID: "n2", Title: "t"})

	conn := dialChannel(t, srv, "alice")
	in := readFrame(t, conn)
	if in.Type != wire.TypeCountUpdate || in.Count != 2 {
		t.Errorf("first frame = %+v, want count_update 2", in)
	}
}

func TestPublishReachesChannel(t *testing.T) {
	srv, h, _ := newTestServer(t)

	conn := dialChannel(t, srv, "alice")
	if in := readFrame(t, conn); in.Type != wire.TypeCountUpdate || in.Count != 0 {
		t.Fatalf("initial frame = %+v, want count_update 0", in)
	}

	err := h.Publish("alice", notify.Notification{
		Kind:        notify.KindMaterial,
		Title:       "New material",
		Message:     "Week 4 is up",
		IsImportant: true,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	in := readFrame(t, conn)
	if in.Type != wire.TypeNotification {
		t.Fatalf("frame = %+v, want notification", in)
	}
	n := in.Notification
	if n.Title != "New material" || n.Kind != notify.KindMaterial || !n.IsImportant {
		t.Errorf("notification = %+v", n)
	}
	if n.ID == "" {
		t.Error("notification id not minted")
	}
	if n.CreatedAt != "just now" {
		t.Errorf("CreatedAt = %q, want \"just now\"", n.CreatedAt)
	}

	if in := readFrame(t, conn); in.Type != wire.TypeCountUpdate || in.Count != 1 {
		t.Errorf("follow-up frame = %+v, want count_update 1", in)
	}
}

func TestPublishDoesNotCrossUsers(t *testing.T) {
	srv, h, _ := newTestServer(t)

	alice := dialChannel(t, srv, "alice")
	bob := dialChannel(t, srv, "bob")
	readFrame(t, alice) // initial count
	readFrame(t, bob)

	if err := h.Publish("alice", notify.Notification{Title: "for alice"}); err != nil {
		t.Fatal(err)
	}

	if in := readFrame(t, alice); in.Type != wire.TypeNotification {
		t.Errorf("alice frame = %+v, want notification", in)
	}

	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, data, err := bob.ReadMessage(); err == nil {
		t.Errorf("bob received %s, want nothing", data)
	}
}

func TestMarkReadOverChannel(t *testing.T) {
	srv, h, store := newTestServer(t)

	conn := dialChannel(t, srv, "alice")
	readFrame(t, conn) // count_update 0

	if err := h.Publish("alice", notify.Notification{ID: "n1", Title: "t"}); err != nil {
		t.Fatal(err)
	}
	readFrame(t, conn) // notification
	if in := readFrame(t, conn); in.Count != 1 {
		t.Fatalf("count after publish = %d, want 1", in.Count)
	}

	out, err := wire.EncodeMarkRead("n1")
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
		t.Fatalf("write mark_read: %v", err)
	}

	if in := readFrame(t, conn); in.Type != wire.TypeCountUpdate || in.Count != 0 {
		t.Errorf("frame after mark_read = %+v, want count_update 0", in)
	}

	count, _ := store.UnreadCount("alice")
	if count != 0 {
		t.Errorf("stored unread = %d, want 0", count)
	}
}

func TestMalformedClientFrameIgnored(t *testing.T) {
	srv, h, _ := newTestServer(t)

	conn := dialChannel(t, srv, "alice")
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("garbage")); err != nil {
		t.Fatal(err)
	}

	// The channel must survive; a publish still arrives.
	if err := h.Publish("alice", notify.Notification{Title: "still alive"}); err != nil {
		t.Fatal(err)
	}
	if in := readFrame(t, conn); in.Type != wire.TypeNotification {
		t.Errorf("frame = %+v, want notification after garbage", in)
	}
}

func TestPublishAPI(t *testing.T) {
	srv, _, store := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"recipient": "alice",
		"type":      "announcement",
		"title":     "Maintenance",
		"message":   "Sunday 03:00 UTC",
	})

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/notifications", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer publish-token")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	items, err := store.Recent("alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Title != "Maintenance" {
		t.Errorf("stored items = %+v", items)
	}

	// Missing publish token.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/api/notifications", bytes.NewReader(body))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", resp.StatusCode)
	}
}

func TestListAPI(t *testing.T) {
	srv, _, store := newTestServer(t)

	store.Save("alice", notify.Notification{ID: "n1", Kind: notify.KindSystem, Title: "t1"})

	token, err := GenerateToken(testSecret, "alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var items []notify.Notification
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "n1" {
		t.Errorf("items = %+v", items)
	}
}

func TestReadAllAPI(t *testing.T) {
	srv, _, store := newTestServer(t)

	store.Save("alice", notify.Notification{ID: "n1", Title: "t"})
	store.Save("alice", notify.Notification{ID: "n2", Title: "t"})

	token, err := GenerateToken(testSecret, "alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/notifications/read-all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	count, _ := store.UnreadCount("alice")
	if count != 0 {
		t.Errorf("unread = %d after read-all, want 0", count)
	}
}

func TestClientCount(t *testing.T) {
	srv, h, _ := newTestServer(t)

	if got := h.ClientCount(); got != 0 {
		t.Fatalf("ClientCount = %d, want 0", got)
	}

	conn := dialChannel(t, srv, "alice")
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d after dial, want 1", got)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for h.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d after close, want 0", got)
	}
}
