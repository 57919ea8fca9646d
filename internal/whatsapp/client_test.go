package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopease/orderbot/internal/engine"
	"github.com/shopease/orderbot/internal/whatsapp"
)

// graphStub records requests to a fake messages endpoint.
type graphStub struct {
	srv      *httptest.Server
	requests []map[string]any
	paths    []string
	auths    []string
}

func newGraphStub(t *testing.T) *graphStub {
	t.Helper()
	g := &graphStub{}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		g.requests = append(g.requests, body)
		g.paths = append(g.paths, r.URL.Path)
		g.auths = append(g.auths, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func newTestClient(t *testing.T, g *graphStub) *whatsapp.Client {
	t.Helper()
	c, err := whatsapp.NewClient("v23.0", "phone-id-1", "token-1", whatsapp.WithBaseURL(g.srv.URL))
	require.NoError(t, err)
	return c
}

func TestClient_SendText(t *testing.T) {
	g := newGraphStub(t)
	c := newTestClient(t, g)

	require.NoError(t, c.SendText(context.Background(), "919876543210", "hello"))

	require.Len(t, g.requests, 1)
	assert.Equal(t, "/v23.0/phone-id-1/messages", g.paths[0])
	assert.Equal(t, "Bearer token-1", g.auths[0])

	req := g.requests[0]
	assert.Equal(t, "whatsapp", req["messaging_product"])
	assert.Equal(t, "919876543210", req["to"])
	assert.Equal(t, "text", req["type"])
	text, ok := req["text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", text["body"])
}

func TestClient_SendText_Validation(t *testing.T) {
	g := newGraphStub(t)
	c := newTestClient(t, g)

	assert.Error(t, c.SendText(context.Background(), "", "hello"))
	assert.Error(t, c.SendText(context.Background(), "919876543210", ""))
	assert.Empty(t, g.requests)
}

func TestClient_SendText_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := whatsapp.NewClient("v23.0", "pid", "tok", whatsapp.WithBaseURL(srv.URL))
	require.NoError(t, err)

	assert.Error(t, c.SendText(context.Background(), "919876543210", "hello"))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := whatsapp.NewClient("", "pid", "tok")
	assert.Error(t, err)
	_, err = whatsapp.NewClient("v23.0", "", "tok")
	assert.Error(t, err)
	_, err = whatsapp.NewClient("v23.0", "pid", "")
	assert.Error(t, err)
}

func TestMessenger_MenuRendersAsList(t *testing.T) {
	g := newGraphStub(t)
	m := whatsapp.NewMessenger(newTestClient(t, g))

	menu := engine.Menu{
		Header: "ShopEase",
		Body:   "Choose an option:",
		Button: "Options",
		Rows: []engine.MenuRow{
			{ID: "browse", Title: "Browse"},
			{ID: "view_cart", Title: "View Cart"},
			{ID: "edit_cart", Title: "Edit Cart"},
			{ID: "checkout", Title: "Checkout"},
		},
	}
	require.NoError(t, m.SendMenu(context.Background(), "919876543210", menu))

	require.Len(t, g.requests, 1)
	req := g.requests[0]
	assert.Equal(t, "interactive", req["type"])

	interactive, ok := req["interactive"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "list", interactive["type"])

	action, ok := interactive["action"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Options", action["button"])

	sections, ok := action["sections"].([]any)
	require.True(t, ok)
	require.Len(t, sections, 1)
	rows := sections[0].(map[string]any)["rows"].([]any)
	assert.Len(t, rows, 4)
	assert.Equal(t, "browse", rows[0].(map[string]any)["id"])
}

func TestMessenger_SmallMenuRendersAsButtons(t *testing.T) {
	g := newGraphStub(t)
	m := whatsapp.NewMessenger(newTestClient(t, g))

	menu := engine.Menu{
		Body: "Complete the purchase?",
		Rows: []engine.MenuRow{
			{ID: "confirm", Title: "Confirm"},
			{ID: "cancel", Title: "Cancel"},
		},
	}
	require.NoError(t, m.SendMenu(context.Background(), "919876543210", menu))

	require.Len(t, g.requests, 1)
	interactive := g.requests[0]["interactive"].(map[string]any)
	assert.Equal(t, "button", interactive["type"])

	buttons := interactive["action"].(map[string]any)["buttons"].([]any)
	require.Len(t, buttons, 2)
	reply := buttons[0].(map[string]any)["reply"].(map[string]any)
	assert.Equal(t, "confirm", reply["id"])
	assert.Equal(t, "Confirm", reply["title"])
}
