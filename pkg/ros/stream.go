package ros

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gwillem/jetauto/pkg/motion"
)

// StampedTwist is one line of a Stream.
type StampedTwist struct {
	Topic string `json:"topic"`
	Stamp int64  `json:"stamp"` // unix milliseconds
	Twist Twist  `json:"twist"`
}

// Stream writes one JSON line per command, for piping into an external
// bridge process.
type Stream struct {
	mu    sync.Mutex
	enc   *json.Encoder
	topic string
	now   func() time.Time
}

// NewStream creates a Stream writing to w.
func NewStream(w io.Writer, topic string) *Stream {
	return &Stream{enc: json.NewEncoder(w), topic: topic, now: time.Now}
}

// Publish writes one command line.
func (s *Stream) Publish(ctx context.Context, cmd motion.VelocityCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := StampedTwist{Topic: s.topic, Stamp: s.now().UnixMilli(), Twist: TwistFrom(cmd)}
	if err := s.enc.Encode(line); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}
