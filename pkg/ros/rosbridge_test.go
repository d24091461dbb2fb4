package ros

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/jetauto/pkg/motion"
)

// bridgeServer accepts one websocket client and forwards every decoded
// message to the returned channel.
func bridgeServer(t *testing.T) (string, <-chan Message) {
	t.Helper()
	msgs := make(chan Message, 16)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var m Message
			if err := conn.ReadJSON(&m); err != nil {
				close(msgs)
				return
			}
			msgs <- m
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), msgs
}

func next(t *testing.T, msgs <-chan Message) Message {
	t.Helper()
	select {
	case m, ok := <-msgs:
		require.True(t, ok, "connection closed early")
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestRosbridge_AdvertisePublishClose(t *testing.T) {
	url, msgs := bridgeServer(t)
	ctx := context.Background()

	rb, err := DialRosbridge(ctx, url, "/jetauto_controller/cmd_vel")
	require.NoError(t, err)
	assert.Equal(t, "/jetauto_controller/cmd_vel", rb.Topic())

	adv := next(t, msgs)
	assert.Equal(t, "advertise", adv.Op)
	assert.Equal(t, TwistType, adv.Type)
	assert.Equal(t, "/jetauto_controller/cmd_vel", adv.Topic)

	require.NoError(t, rb.Publish(ctx, motion.VelocityCommand{LinearX: 0.2, AngularZ: -0.5}))
	pub := next(t, msgs)
	assert.Equal(t, "publish", pub.Op)
	require.NotNil(t, pub.Msg)
	assert.Equal(t, Twist{Linear: Vector3{X: 0.2}, Angular: Vector3{Z: -0.5}}, *pub.Msg)

	require.NoError(t, rb.Close())
	assert.Equal(t, "unadvertise", next(t, msgs).Op)

	assert.Error(t, rb.Publish(ctx, motion.Stop()), "publish after close")
	assert.NoError(t, rb.Close(), "second close is a no-op")
}

func TestRosbridge_PublishCancelled(t *testing.T) {
	url, _ := bridgeServer(t)
	rb, err := DialRosbridge(context.Background(), url, "/cmd_vel")
	require.NoError(t, err)
	defer rb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rb.Publish(ctx, motion.Stop()), context.Canceled)
}

func TestRosbridge_CloseReportsUnadvertiseFailure(t *testing.T) {
	url, _ := bridgeServer(t)
	rb, err := DialRosbridge(context.Background(), url, "/cmd_vel")
	require.NoError(t, err)

	// Drop the socket underneath the publisher.
	require.NoError(t, rb.conn.UnderlyingConn().Close())

	err = rb.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unadvertise /cmd_vel")
	assert.NoError(t, rb.Close(), "second close is a no-op")
}

func TestDialRosbridge_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := DialRosbridge(ctx, "ws://127.0.0.1:1", "/cmd_vel")
	assert.Error(t, err)
}
