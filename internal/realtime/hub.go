package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"tienda/internal/domain/cart"
	"tienda/internal/domain/catalog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// CartService is the slice of the inventory coordinator the push channel
// drives. Defined here so the hub doesn't depend on the coordinator package.
type CartService interface {
	AddToCart(ctx context.Context, cartID string, productID int64, qty int) (*cart.View, error)
	ClearCart(ctx context.Context, cartID string) (*cart.View, error)
	DeleteProduct(ctx context.Context, productID int64) error
	CreateProduct(ctx context.Context, p *catalog.Product) error
	ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
}

// frame is the wire envelope in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func makeFrame(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Event: event, Data: payload})
}

// Hub fans committed state out to every connected client: no per-client
// filtering, fire-and-forget delivery, dead clients dropped silently.
type Hub struct {
	service CartService
	logger  *zap.SugaredLogger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub(service CartService, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		service:    service,
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the client set. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop it, no retry.
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

func (h *Hub) Close() {
	close(h.done)
}

// HandleEvent adapts bus events into wire frames. Wire it up with
// bus.Subscribe(hub.HandleEvent). It never blocks the publisher: when the
// broadcast queue is full the event is dropped and logged.
func (h *Hub) HandleEvent(e Event) {
	var (
		msg []byte
		err error
	)
	switch e.Kind {
	case EventCart:
		msg, err = makeFrame("cart", e.Cart)
	case EventProducts:
		msg, err = makeFrame("products", e.Products)
	default:
		return
	}
	if err != nil {
		h.logger.Errorw("encoding broadcast frame failed", "kind", e.Kind, "error", err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warnw("broadcast queue full, dropping event", "kind", e.Kind)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The demo serves browsers from arbitrary origins, same as the HTTP CORS
	// policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and attaches a client to the hub. Each
// socket gets its own cart, created lazily on the first add-to-cart.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()

	// Snapshot on connect so the client renders without waiting for the
	// next mutation.
	products, err := h.service.ListProducts(r.Context(), catalog.Filter{})
	if err != nil {
		h.logger.Errorw("initial product snapshot failed", "error", err)
		return
	}
	if msg, err := makeFrame("products", products); err == nil {
		c.trySend(msg)
	}
}
