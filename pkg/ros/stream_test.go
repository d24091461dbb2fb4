package ros

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/jetauto/pkg/motion"
)

func TestStream_WritesOneLinePerCommand(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, "/jetauto_controller/cmd_vel")
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	cmds := []motion.VelocityCommand{{LinearX: 0.2}, {LinearY: -0.2}, motion.Stop()}
	for _, cmd := range cmds {
		require.NoError(t, s.Publish(context.Background(), cmd))
	}

	scanner := bufio.NewScanner(&buf)
	var got []motion.VelocityCommand
	for scanner.Scan() {
		var line StampedTwist
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		assert.Equal(t, "/jetauto_controller/cmd_vel", line.Topic)
		assert.Equal(t, int64(1700000000000), line.Stamp)
		got = append(got, line.Twist.Command())
	}
	assert.Equal(t, cmds, got)
}

func TestStream_PublishCancelled(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, "/cmd_vel")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Publish(ctx, motion.Stop()), context.Canceled)
	assert.Zero(t, buf.Len())
}
