package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/config"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/database/dbtest"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/metrics"
	"github.com/yeremiapane/comanda-app/router"
	"github.com/yeremiapane/comanda-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("error")
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks a table through its whole life:
// open, add items, merge, close, and watch the events on the websocket.
func TestEndToEndIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	seed, err := database.Seed(db)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.JWT.Secret = "integration-secret"
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000
	cfg.Comanda.MergeMaxRetries = 3
	cfg.Comanda.MergeBaseDelay = time.Millisecond

	registry := prometheus.NewRegistry()
	hub := kds.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	r, err := router.SetupRouter(router.Deps{
		DB:       db,
		Config:   cfg,
		Hub:      hub,
		Metrics:  metrics.NewComandaMetrics(registry),
		Gatherer: registry,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	defer srv.Close()

	usuario := seed.Usuarios[0]
	token, err := utils.GenerateToken([]byte(cfg.JWT.Secret), usuario.ID.String(), seed.Empresa.ID.String(), usuario.Papel, time.Hour)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/comandas?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(seed.Empresa.ID) == 1 }, time.Second, 5*time.Millisecond)

	call := func(method, path string, body any) (int, map[string]any) {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequest(method, srv.URL+path, &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
		return res.StatusCode, out
	}
	nextEvent := func() string {
		t.Helper()
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, raw, err := ws.ReadMessage()
		require.NoError(t, err)
		var msg kds.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg.Event
	}

	// 1. Open the comanda
	code, body := call(http.MethodPost, "/api/comandas", map[string]any{"numero": "Mesa 4"})
	require.Equal(t, http.StatusCreated, code, body)
	comandaID := body["data"].(map[string]any)["id"].(string)
	assert.Equal(t, "comanda_update", nextEvent())

	// 2. Add, then merge the same produto
	produto := seed.Produtos[0].ID.String()
	code, _ = call(http.MethodPost, "/api/comandas/"+comandaID+"/itens", map[string]any{"produtoId": produto, "quantidade": 1})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pedido_item_update", nextEvent())

	code, _ = call(http.MethodPost, "/api/comandas/"+comandaID+"/itens", map[string]any{"produtoId": produto, "quantidade": 2})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pedido_item_update", nextEvent())

	// 3. Close it
	code, body = call(http.MethodPatch, "/api/comandas/"+comandaID+"/status", map[string]any{"status": "FECHADA"})
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "FECHADA", data["status"])
	require.Len(t, data["pedidos"], 1)
	assert.Equal(t, "comanda_update", nextEvent())

	// 4. Closed comandas reject new items
	code, _ = call(http.MethodPost, "/api/comandas/"+comandaID+"/itens", map[string]any{"produtoId": produto, "quantidade": 1})
	assert.Equal(t, http.StatusConflict, code)

	// 5. Metrics are exposed
	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `comanda_pedido_item_adds_total{resultado="merged"} 1`)
	assert.Contains(t, string(raw), `comanda_transitions_total{de="ABERTA",para="FECHADA"} 1`)
}
