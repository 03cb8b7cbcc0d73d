package http_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	bridgehttp "vitamend-data/internal/donation/adapter/http"
	"vitamend-data/internal/donation/adapter/persistence/mongostore/storetest"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/eventbus"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMedicines []model.Medicine

func (s staticMedicines) ListAvailableMedicines(ctx context.Context) ([]model.Medicine, error) {
	return s, nil
}

// dialFeed serves deps on a local listener and connects to the medicine feed.
func dialFeed(t *testing.T, deps bridgehttp.BridgeDeps) *websocket.Conn {
	t.Helper()
	handler := bridgehttp.NewBridgeHandler(deps)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.RegisterRoutes(app.Group("/api/db"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(listener) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	url := fmt.Sprintf("ws://%s/api/db/ws/medicines", listener.Addr().String())
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err = dialer.Dial(url, nil)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestMedicineFeed_PushesSnapshots(t *testing.T) {
	store := storetest.NewMemoryStore()
	bus := eventbus.NewEventBus(nil)
	conn := dialFeed(t, bridgehttp.BridgeDeps{Store: store, Bus: bus})

	var msg bridgehttp.FeedMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "medicines", msg.Type)
	assert.Empty(t, msg.Data)

	require.Eventually(t, func() bool {
		return bus.GetSubscriberCount(eventbus.EventTypeMedicineChanged) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := store.CreateMedicine(context.Background(), model.Medicine{Name: "Paracetamol", Available: true})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), eventbus.NewBasicEvent(eventbus.EventTypeMedicineChanged, nil)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Len(t, msg.Data, 1)
	assert.Equal(t, "Paracetamol", msg.Data[0].Name)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool {
		return bus.GetSubscriberCount(eventbus.EventTypeMedicineChanged) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMedicineFeed_ReadsConfiguredSource(t *testing.T) {
	store := storetest.NewMemoryStore()
	_, err := store.CreateMedicine(context.Background(), model.Medicine{Name: "FromStore", Available: true})
	require.NoError(t, err)

	conn := dialFeed(t, bridgehttp.BridgeDeps{
		Store:     store,
		Medicines: staticMedicines{{Name: "FromAdapter", Available: true}},
	})

	var msg bridgehttp.FeedMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Len(t, msg.Data, 1)
	assert.Equal(t, "FromAdapter", msg.Data[0].Name)
}
