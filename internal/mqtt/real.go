package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	BufferSize int // messages kept while disconnected
	Logger     *slog.Logger
}

// RealPublisher publishes to an actual MQTT broker. Publish and
// PublishSystem only queue the message; a background goroutine sends it
// once the connection is up. Messages queued while the connection is down
// are replayed oldest first when it comes back. Close flushes what is left.
type RealPublisher struct {
	client      paho.Client
	logger      *slog.Logger
	commands    chan string
	sendTimeout time.Duration

	mu      sync.Mutex
	backlog *ringBuffer

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRealPublisher connects to the broker. If the broker is unreachable the
// publisher is still returned and keeps retrying in the background.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.Broker == "" {
		return nil, errors.New("mqtt: no broker")
	}
	if o.ClientID == "" {
		o.ClientID = "led-sequencer"
	}
	p := newRealPublisher(o)

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.logger.Warn("mqtt connection lost", "error", err)
		})

	p.client = paho.NewClient(opts)
	p.start()

	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		p.logger.Warn("mqtt broker not reachable yet, buffering", "broker", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		p.Close()
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// newRealPublisher fills in defaults. The caller sets client and calls start.
func newRealPublisher(o Options) *RealPublisher {
	if o.BufferSize <= 0 {
		o.BufferSize = 100
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &RealPublisher{
		logger:      o.Logger,
		commands:    make(chan string, 16),
		sendTimeout: 5 * time.Second,
		backlog:     newRingBuffer(o.BufferSize),
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (p *RealPublisher) start() {
	go p.sendLoop()
}

// onConnect runs on every (re)connection: subscribe to commands, then
// replay whatever was buffered.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.logger.Info("mqtt connected")
	token := c.Subscribe(TopicCommand, 1, func(_ paho.Client, m paho.Message) {
		p.command(m.Payload())
	})
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		p.logger.Warn("mqtt subscribe failed", "topic", TopicCommand, "error", token.Error())
	}
	p.notify()
}

func (p *RealPublisher) command(payload []byte) {
	name, err := ParseCommand(payload)
	if err != nil {
		p.logger.Warn("mqtt bad command", "payload", string(payload), "error", err)
		return
	}
	select {
	case p.commands <- name:
	default:
		p.logger.Warn("mqtt command dropped, loop busy", "event", name)
	}
}

func (p *RealPublisher) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *RealPublisher) sendLoop() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
			p.flush()
		}
	}
}

// flush sends everything queued, if the connection is up. Only one flush
// runs at a time: the send loop, or Close after the loop has stopped.
func (p *RealPublisher) flush() {
	if !p.client.IsConnectionOpen() {
		return
	}
	p.mu.Lock()
	msgs, dropped := p.backlog.drainAll()
	p.mu.Unlock()
	if dropped > 0 {
		p.logger.Warn("mqtt queue overflowed, oldest messages dropped", "dropped", dropped)
	}
	for _, m := range msgs {
		if err := p.send(m); err != nil {
			p.logger.Warn("mqtt publish failed", "topic", m.topic, "error", err)
		}
	}
}

func (p *RealPublisher) send(m bufferedMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(p.sendTimeout) {
		return errors.New("publish timeout")
	}
	return token.Error()
}

// publish queues m for the send loop. It never waits on the broker.
func (p *RealPublisher) publish(m bufferedMsg) {
	p.mu.Lock()
	if p.backlog.push(m) && p.backlog.dropped == 1 {
		p.logger.Warn("mqtt queue full, dropping oldest")
	}
	p.mu.Unlock()
	p.notify()
}

// Publish queues a transition for TopicEvents (QoS 0).
func (p *RealPublisher) Publish(event TransitionEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	p.publish(bufferedMsg{topic: TopicEvents, payload: payload})
	return nil
}

// PublishSystem queues a lifecycle event for TopicSystem (QoS 1).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// Commands returns the channel of received trigger commands.
func (p *RealPublisher) Commands() <-chan string {
	return p.commands
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages not yet handed to the broker.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backlog.len()
}

// Close stops the send loop, sends whatever is still queued (the final
// SHUTDOWN event among it), waiting for each acknowledgement, and
// disconnects.
func (p *RealPublisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done
		p.flush()
		p.client.Disconnect(1000)
	})
	return nil
}
