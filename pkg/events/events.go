// Package events publishes analysis lifecycle notifications over a
// nanomsg pub socket so external tooling can react to completed passes
// without polling the HTTP API. Messages are topic-prefixed JSON:
// "<topic>|{...}".
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/ladderflow/ladderflow/pkg/logging"
	"github.com/ladderflow/ladderflow/pkg/metrics"
)

// Topics published by the analysis service
const (
	TopicAnalysisCompleted = "analysis.completed"
	TopicAnalysisFailed    = "analysis.failed"
)

// AnalysisCompleted is the payload for a successful pass
type AnalysisCompleted struct {
	PassID      string    `json:"pass_id"`
	Networks    int       `json:"networks"`
	Nodes       int       `json:"nodes"`
	Diagnostics int       `json:"diagnostics"`
	CompletedAt time.Time `json:"completed_at"`
}

// AnalysisFailed is the payload for an aborted pass
type AnalysisFailed struct {
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// Publisher owns the pub socket. A nil *Publisher is valid and publishes
// nothing, so callers need no guard when events are disabled.
type Publisher struct {
	sock     mangos.Socket
	logger   logging.Logger
	registry *metrics.Registry
}

// NewPublisher opens a pub socket listening on addr
func NewPublisher(addr string, logger logging.Logger, registry *metrics.Registry) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("creating pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{sock: sock, logger: logger, registry: registry}, nil
}

// Publish sends one topic-prefixed JSON message
func (p *Publisher) Publish(topic string, payload any) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", topic, err)
	}
	msg := append([]byte(topic+"|"), data...)
	if err := p.sock.Send(msg); err != nil {
		if p.registry != nil {
			p.registry.RecordEventPublishFailure()
		}
		p.logger.Warn("Event publish failed",
			logging.String("topic", topic), logging.Error(err))
		return fmt.Errorf("publishing %s event: %w", topic, err)
	}
	if p.registry != nil {
		p.registry.RecordEventPublished(topic)
	}
	return nil
}

// Close shuts the pub socket down
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.sock.Close()
}

// Subscriber receives topic-filtered events, used by tests and external
// consumers
type Subscriber struct {
	sock mangos.Socket
}

// NewSubscriber dials the publisher and subscribes to one topic prefix.
// An empty topic receives everything.
func NewSubscriber(addr, topic string) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("creating sub socket: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte(topic)); err != nil {
		sock.Close()
		return nil, fmt.Errorf("subscribing to %q: %w", topic, err)
	}
	return &Subscriber{sock: sock}, nil
}

// SetRecvDeadline bounds how long Recv blocks
func (s *Subscriber) SetRecvDeadline(d time.Duration) error {
	return s.sock.SetOption(mangos.OptionRecvDeadline, d)
}

// Recv blocks for the next event and splits it into topic and payload
func (s *Subscriber) Recv() (topic string, payload []byte, err error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return "", nil, err
	}
	for i, b := range msg {
		if b == '|' {
			return string(msg[:i]), msg[i+1:], nil
		}
	}
	return string(msg), nil, nil
}

// Close shuts the sub socket down
func (s *Subscriber) Close() error {
	return s.sock.Close()
}
