package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const flushTimeout = 5 * time.Second

type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATS publishes events as JSON on a single subject.
type NATS struct {
	conn    conn
	subject string
}

// NewNATS connects to url and publishes on subject.
func NewNATS(url, subject string) (*NATS, error) {
	if subject == "" {
		return nil, errors.New("subject required")
	}
	nc, err := nats.Connect(url, nats.Name("doc-summary"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATS{conn: nc, subject: subject}, nil
}

// Publish returns once the server has acknowledged the flush, so a nil error
// means the event left the process.
func (n *NATS) Publish(_ context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, body); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}
	if err := n.conn.FlushTimeout(flushTimeout); err != nil {
		return fmt.Errorf("flush %s: %w", n.subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() error {
	err := n.conn.FlushTimeout(flushTimeout)
	n.conn.Close()
	if err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("flush on close: %w", err)
	}
	return nil
}
