package controllers_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/ws"
)

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	// Message chào khi kết nối
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)
	return conn
}

func TestMaterialStatusBroadcastOverWebSocket(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	materialID := uuid.NewString()
	conn := dialWS(t, srv, "/ws/material/"+materialID+"?token="+env.token)
	defer conn.Close()

	ws.SendStatusUpdate(materialID, models.ProcessingProcessing, "")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var update ws.MaterialStatusUpdate
	require.NoError(t, json.Unmarshal(msg, &update))
	assert.Equal(t, materialID, update.MaterialID)
	assert.Equal(t, models.ProcessingProcessing, update.Status)
	assert.Empty(t, update.Error)
}

func TestGlobalListChangedBroadcast(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/status?token="+env.token)
	defer conn.Close()

	ws.BroadcastMaterialListChanged()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "material_list_changed")
}
