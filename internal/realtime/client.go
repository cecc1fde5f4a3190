package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tienda/internal/domain/catalog"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	requestTimeout = 10 * time.Second
)

// Client is one websocket subscriber. cartID is assigned lazily on the first
// add-to-cart, giving each connection its own cart.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	cartID string
}

func (c *Client) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) emit(event string, data any) {
	msg, err := makeFrame(event, data)
	if err != nil {
		c.hub.logger.Errorw("encoding frame failed", "event", event, "error", err)
		return
	}
	c.trySend(msg)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Infow("websocket closed unexpectedly", "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.emit("error", "malformed frame")
			continue
		}
		c.dispatch(f)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(f frame) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch f.Event {
	case "add-to-cart":
		var productID int64
		if err := json.Unmarshal(f.Data, &productID); err != nil {
			c.emit("error", "invalid product id")
			return
		}
		view, err := c.hub.service.AddToCart(ctx, c.cartID, productID, 1)
		if err != nil {
			c.emit("error", userMessage(err))
			return
		}
		c.cartID = view.ID
		c.emit("success", "product added to cart")

	case "clear-cart":
		if c.cartID == "" {
			c.emit("error", "no cart for this session yet")
			return
		}
		if _, err := c.hub.service.ClearCart(ctx, c.cartID); err != nil {
			c.emit("error", userMessage(err))
			return
		}
		c.emit("success", "cart cleared")

	case "delete-product":
		var productID int64
		if err := json.Unmarshal(f.Data, &productID); err != nil {
			c.emit("error", "invalid product id")
			return
		}
		if err := c.hub.service.DeleteProduct(ctx, productID); err != nil {
			c.emit("error", userMessage(err))
			return
		}
		c.emit("success", "product deleted")

	case "new-product":
		var p catalog.Product
		if err := json.Unmarshal(f.Data, &p); err != nil {
			c.emit("error", "invalid product payload")
			return
		}
		if err := c.hub.service.CreateProduct(ctx, &p); err != nil {
			c.emit("error", userMessage(err))
			return
		}
		c.emit("success", "product created")

	default:
		c.emit("error", "unknown event: "+f.Event)
	}
}

// userMessage strips wrapped detail so the socket carries a stable,
// human-readable message.
func userMessage(err error) string {
	var base error = err
	for {
		next := errors.Unwrap(base)
		if next == nil {
			break
		}
		base = next
	}
	return base.Error()
}
