package http

import (
	"context"
	"time"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/eventbus"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// FeedMessage is pushed to /ws/medicines clients.
type FeedMessage struct {
	Type  string           `json:"type"`
	Data  []model.Medicine `json:"data,omitempty"`
	Error string           `json:"error,omitempty"`
}

const feedReadTimeout = 60 * time.Second

// MedicineSource lists the medicines pushed by the feed.
type MedicineSource interface {
	ListAvailableMedicines(ctx context.Context) ([]model.Medicine, error)
}

func (h *BridgeHandler) registerFeed(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws/medicines", websocket.New(h.serveMedicineFeed))
}

// serveMedicineFeed sends the available medicines on connect and again after
// every medicine.changed event until the client goes away.
func (h *BridgeHandler) serveMedicineFeed(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriberID := uuid.NewString()
	log := h.log.WithFields(map[string]interface{}{"subscriberID": subscriberID})
	log.Debug("Medicine feed connected")

	changed := make(chan struct{}, 1)
	if h.bus != nil {
		id := h.bus.Subscribe(eventbus.EventTypeMedicineChanged, func(context.Context, eventbus.Event) error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		})
		defer h.bus.Cancel(id)
	}

	go func() {
		defer cancel()
		for {
			conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warnf("Medicine feed read error: %v", err)
				}
				return
			}
		}
	}()

	send := func() bool {
		msg := FeedMessage{Type: "medicines"}
		medicines, err := h.medicines.ListAvailableMedicines(ctx)
		if err != nil {
			msg = FeedMessage{Type: "error", Error: err.Error()}
		} else {
			msg.Data = medicines
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Debugf("Medicine feed write failed: %v", err)
			return false
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			log.Debug("Medicine feed closed")
			return
		case <-changed:
			if !send() {
				return
			}
		}
	}
}
