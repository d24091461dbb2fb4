package ros

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gwillem/jetauto/pkg/motion"
)

// Message is a rosbridge v2 protocol operation.
type Message struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic"`
	Type  string `json:"type,omitempty"`
	Msg   *Twist `json:"msg,omitempty"`
}

// Rosbridge publishes Twist messages to a topic through a rosbridge
// websocket server. Publishing is fire-and-forget.
type Rosbridge struct {
	conn  *websocket.Conn
	topic string

	// serializes writes; gorilla connections allow one concurrent writer
	mu     sync.Mutex
	closed bool
}

// DialRosbridge connects to url and advertises topic as a Twist publisher.
func DialRosbridge(ctx context.Context, url, topic string) (*Rosbridge, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial rosbridge %s: %w", url, err)
	}

	rb := &Rosbridge{conn: conn, topic: topic}
	if err := rb.write(Message{Op: "advertise", ID: "jetauto", Topic: topic, Type: TwistType}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("advertise %s: %w", topic, err)
	}

	return rb, nil
}

// Topic returns the topic commands are published to.
func (r *Rosbridge) Topic() string {
	return r.topic
}

// Publish sends one command.
func (r *Rosbridge) Publish(ctx context.Context, cmd motion.VelocityCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	twist := TwistFrom(cmd)
	return r.write(Message{Op: "publish", Topic: r.topic, Msg: &twist})
}

func (r *Rosbridge) write(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("rosbridge connection closed")
	}
	return r.conn.WriteJSON(m)
}

// Close unadvertises the topic and closes the connection. Errors from both
// steps are returned together; a second Close is a no-op.
func (r *Rosbridge) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if err := r.conn.WriteJSON(Message{Op: "unadvertise", ID: "jetauto", Topic: r.topic}); err != nil {
		errs = append(errs, fmt.Errorf("unadvertise %s: %w", r.topic, err))
	}
	_ = r.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err := r.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
