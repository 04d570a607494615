package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

func dialTestConn(t *testing.T) (*Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- NewConn(raw)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	conn := <-serverSide
	t.Cleanup(func() { conn.Close() })
	return conn, client
}

// Two goroutines write to the same connection, like the exam stream's event
// pump racing a pong reply from the read loop. gorilla panics on concurrent
// writes, so this passes only if the write lock serializes them.
func TestConnSerializesConcurrentWriters(t *testing.T) {
	conn, client := dialTestConn(t)

	const perWriter = 200

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for i := 0; i < 2*perWriter; i++ {
			if _, _, err := client.ReadMessage(); err != nil {
				t.Errorf("client read: %v", err)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := conn.WriteTyped(PongResponse{Event: EventPong}); err != nil {
					t.Errorf("write: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	<-drained
}

func TestConnWriteErrorPayload(t *testing.T) {
	conn, client := dialTestConn(t)

	if err := conn.WriteError("unknown action: dance"); err != nil {
		t.Fatalf("WriteError: %v", err)
	}

	var payload ErrorResponse
	if err := client.ReadJSON(&payload); err != nil {
		t.Fatalf("client read: %v", err)
	}
	if payload.Event != EventError || payload.Error != "unknown action: dance" {
		t.Fatalf("payload = %+v", payload)
	}
}
