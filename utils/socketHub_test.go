package utils

import (
	"net"
	"sync"
	"testing"
	"time"

	"lms/config"

	wsclient "github.com/fasthttp/websocket"
	fiberWs "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// Many goroutines push to the same user at once; every message must land on
// the single registered connection without interleaved frames.
func TestPushToUserConcurrentWrites(t *testing.T) {
	config.InitLogger()

	const userID = uint(7)

	app := fiber.New()
	app.Get("/ws", func(c *fiber.Ctx) error {
		if fiberWs.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, fiberWs.New(func(conn *fiberWs.Conn) {
		RegisterSocket(userID, conn)
		defer UnregisterSocket(userID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	defer func() { _ = app.Shutdown() }()

	client, _, err := wsclient.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer client.Close()

	// The handler registers the connection after the upgrade completes
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		registered := len(hub.conns[userID]) == 1
		hub.mu.RUnlock()
		if registered {
			break
		}
		require.True(t, time.Now().Before(deadline), "connection was never registered")
		time.Sleep(5 * time.Millisecond)
	}

	const pushes = 64
	var wg sync.WaitGroup
	for i := 0; i < pushes; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			PushToUser(userID, fiber.Map{"type": "QUIZ_RESULT", "seq": seq})
		}(i)
	}
	wg.Wait()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 0; i < pushes; i++ {
		_, _, err := client.ReadMessage()
		require.NoError(t, err)
	}
}
