package websocket_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	ws "github.com/joshua-hq/warroom/pkg/controller/websocket"
	"github.com/m-mizutani/gt"
)

func dialHub(t *testing.T, hub *ws.Hub) (*gorilla.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(hub.Handler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	gt.NoError(t, err)
	return conn, func() {
		_ = conn.Close()
		srv.Close()
	}
}

func readEnvelope(t *testing.T, conn *gorilla.Conn) ws.Envelope {
	t.Helper()
	gt.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	gt.NoError(t, err)
	var env ws.Envelope
	gt.NoError(t, json.Unmarshal(frame, &env))
	return env
}

func TestHubBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(ctx)
	go hub.Run()
	defer hub.Stop()

	conn, closeFn := dialHub(t, hub)
	defer closeFn()

	gt.NoError(t, hub.Broadcast(ws.StreamChat, []string{"hello"}))

	env := readEnvelope(t, conn)
	gt.Equal(t, env.Stream, ws.StreamChat)

	var data []string
	gt.NoError(t, json.Unmarshal(env.Data, &data))
	gt.A(t, data).Length(1)
	gt.Equal(t, data[0], "hello")
}

func TestHubStopClosesConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(ctx)
	go hub.Run()

	conn, closeFn := dialHub(t, hub)
	defer closeFn()

	// Confirm the client is registered and receiving before stopping.
	gt.NoError(t, hub.Broadcast(ws.StreamChat, []string{"ping"}))
	readEnvelope(t, conn)

	hub.Stop()

	// The write pump must exit and close the connection; the peer sees
	// the close promptly rather than waiting out a read deadline.
	gt.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestHubReplaysLatestSnapshotToLateJoiner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(ctx)
	go hub.Run()
	defer hub.Stop()

	gt.NoError(t, hub.Broadcast(ws.StreamReports, []string{"first", "second"}))

	conn, closeFn := dialHub(t, hub)
	defer closeFn()

	env := readEnvelope(t, conn)
	gt.Equal(t, env.Stream, ws.StreamReports)

	var data []string
	gt.NoError(t, json.Unmarshal(env.Data, &data))
	gt.A(t, data).Length(2)
}
