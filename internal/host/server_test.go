package host

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lydakis/hostbridge/internal/wire"
)

func dispatch(t *testing.T, d *Dispatcher, raw string) wire.Response {
	t.Helper()
	resp, err := wire.DecodeResponse(d.Handle(context.Background(), []byte(raw)))
	require.NoError(t, err)
	return resp
}

func TestDispatcherSuccessAndFailure(t *testing.T) {
	d := NewDispatcher(startExecutor(t, corridorDoc(t)), nil)

	resp := dispatch(t, d, `{"CommandName":"GET_ALL_LEVELS","Parameters":{},"RequestId":"r1"}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "r1", resp.ID)
	assert.Contains(t, string(resp.Data), `"Count":3`)

	resp = dispatch(t, d, `{"CommandName":"create_floor","Parameters":{},"RequestId":"r2"}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "r2", resp.ID)
	assert.Equal(t, "unimplemented command: create_floor", resp.Error)

	resp = dispatch(t, d, `{"CommandName":"get_wall_info","Parameters":{"wallId":404},"RequestId":"r3"}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no wall with id 404")

	resp = dispatch(t, d, `{"Parameters":{},"RequestId":"r4"}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "r4", resp.ID, "malformed commands still answer their id")

	resp = dispatch(t, d, `garbage`)
	assert.False(t, resp.Success)
}

func startHost(t *testing.T) *Server {
	t.Helper()
	d := NewDispatcher(startExecutor(t, corridorDoc(t)), nil)
	srv := NewServer("127.0.0.1:0", "/", d.Handle, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv
}

func dialHost(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestServerAnswersEveryRequestByID(t *testing.T) {
	srv := startHost(t)
	ws := dialHost(t, srv)

	const n = 10
	for i := 0; i < n; i++ {
		env := fmt.Sprintf(`{"CommandName":"measure_distance","Parameters":{"point2X":%d},"RequestId":"m%d"}`, i*100, i)
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(env)))
	}

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	got := map[string]float64{}
	for len(got) < n {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		resp, err := wire.DecodeResponse(data)
		require.NoError(t, err)
		require.True(t, resp.Success, resp.Error)

		var out struct{ Distance float64 }
		require.NoError(t, json.Unmarshal(resp.Data, &out))
		got[resp.ID] = out.Distance
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, float64(i*100), got[fmt.Sprintf("m%d", i)])
	}
}

func TestServerStopClosesConnections(t *testing.T) {
	d := NewDispatcher(startExecutor(t, corridorDoc(t)), nil)
	srv := NewServer("127.0.0.1:0", "/bridge", d.Handle, nil)
	require.NoError(t, srv.Start())

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/bridge", nil)
	require.NoError(t, err)
	defer ws.Close()

	// Make sure the connection is registered before stopping.
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"CommandName":"get_project_info","RequestId":"p"}`)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"RequestId":"p"`))

	srv.Stop()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = ws.ReadMessage()
	assert.Error(t, err)
}

func TestServerStartFailsOnBusyAddress(t *testing.T) {
	srv := startHost(t)
	other := NewServer(srv.Addr(), "/", func(context.Context, []byte) []byte { return nil }, nil)
	assert.Error(t, other.Start())
}
