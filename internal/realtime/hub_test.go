package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tienda/internal/domain/cart"
	"tienda/internal/domain/catalog"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	mu    sync.Mutex
	adds  []int64
	carts map[string]int
}

func (f *fakeService) AddToCart(_ context.Context, cartID string, productID int64, qty int) (*cart.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, productID)
	if cartID == "" {
		cartID = "ws-cart"
	}
	return &cart.View{ID: cartID}, nil
}

func (f *fakeService) ClearCart(_ context.Context, cartID string) (*cart.View, error) {
	return &cart.View{ID: cartID}, nil
}

func (f *fakeService) DeleteProduct(context.Context, int64) error { return nil }

func (f *fakeService) CreateProduct(context.Context, *catalog.Product) error { return nil }

func (f *fakeService) ListProducts(context.Context, catalog.Filter) ([]catalog.Product, error) {
	return []catalog.Product{{ID: 1, Title: "camiseta", PriceCents: 1000, Stock: 5, Status: true}}, nil
}

func startHub(t *testing.T) (*Hub, *fakeService, *httptest.Server) {
	t.Helper()
	svc := &fakeService{carts: map[string]int{}}
	hub := NewHub(svc, zap.NewNop().Sugar())
	go hub.Run()
	t.Cleanup(hub.Close)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, svc, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestInitialProductSnapshot(t *testing.T) {
	_, _, srv := startHub(t)
	conn := dial(t, srv)

	f := readFrame(t, conn)
	assert.Equal(t, "products", f.Event)

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(f.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "camiseta", products[0].Title)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, _, srv := startHub(t)

	a := dial(t, srv)
	b := dial(t, srv)
	readFrame(t, a) // initial snapshots
	readFrame(t, b)

	hub.HandleEvent(Event{Kind: EventCart, Cart: &cart.View{ID: "c1", TotalCents: 42}})

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		assert.Equal(t, "cart", f.Event)

		var v cart.View
		require.NoError(t, json.Unmarshal(f.Data, &v))
		assert.Equal(t, int64(42), v.TotalCents)
	}
}

func TestAddToCartEventDispatches(t *testing.T) {
	_, svc, srv := startHub(t)
	conn := dial(t, srv)
	readFrame(t, conn) // initial snapshot

	msg, err := makeFrame("add-to-cart", int64(7))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	f := readFrame(t, conn)
	assert.Equal(t, "success", f.Event)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, []int64{7}, svc.adds)
}

func TestUnknownEventEmitsError(t *testing.T) {
	_, _, srv := startHub(t)
	conn := dial(t, srv)
	readFrame(t, conn)

	msg, err := makeFrame("warp-drive", nil)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Event)
}

func TestDisconnectedClientIsDropped(t *testing.T) {
	hub, _, srv := startHub(t)

	a := dial(t, srv)
	b := dial(t, srv)
	readFrame(t, a)
	readFrame(t, b)

	require.NoError(t, a.Close())
	time.Sleep(50 * time.Millisecond)

	hub.HandleEvent(Event{Kind: EventCart, Cart: &cart.View{ID: "c1"}})

	f := readFrame(t, b)
	assert.Equal(t, "cart", f.Event)
}
