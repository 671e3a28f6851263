package bridge

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"devicerest-go/services/logging"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 500 // milliseconds
	defaultKeepAlive         = 60 * time.Second
	maxQoS                   = 2
)

// MessageHandler processes one inbound MQTT message.
type MessageHandler func(topic string, payload []byte) error

// Link is the broker session the bridge drives.
type Link interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, h MessageHandler) error
	SetOnConnectionChange(fn func(up bool, err error))
	Close() error
}

// Client wraps a paho client with resubscription on reconnect and an
// online/offline status topic.
type Client struct {
	client pahomqtt.Client
	cfg    Config
	log    *logging.Logger

	subMu sync.RWMutex
	subs  map[string]subscription

	cbMu     sync.RWMutex
	onChange func(up bool, err error)
}

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Connect dials the broker in cfg and waits for the first connection.
func Connect(cfg Config, log *logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.Discard()
	}
	c := &Client{cfg: cfg, log: log, subs: map[string]subscription{}}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.notify(false, err) })

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

func buildClientOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker.URL)
	opts.SetClientID(cfg.Broker.ClientID)
	if cfg.Broker.Username != "" {
		opts.SetUsername(cfg.Broker.Username)
		opts.SetPassword(cfg.Broker.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(cfg.Reconnect.maxDelay())
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetWill(cfg.statusTopic(), "offline", 1, true)
	return opts
}

func (c *Client) handleConnect() {
	c.subMu.RLock()
	for topic, s := range c.subs {
		c.client.Subscribe(topic, s.qos, c.wrapHandler(s.handler))
	}
	c.subMu.RUnlock()
	c.client.Publish(c.cfg.statusTopic(), 1, true, "online")
	c.notify(true, nil)
}

func (c *Client) notify(up bool, err error) {
	c.cbMu.RLock()
	fn := c.onChange
	c.cbMu.RUnlock()
	if fn != nil {
		fn(up, err)
	}
}

func (c *Client) SetOnConnectionChange(fn func(up bool, err error)) {
	c.cbMu.Lock()
	c.onChange = fn
	c.cbMu.Unlock()
}

// Publish sends payload and waits for the broker acknowledgement.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if !c.client.IsConnected() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Subscribe registers h for topic; it is restored after reconnects.
func (c *Client) Subscribe(topic string, qos byte, h MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if h == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.client.IsConnected() {
		return ErrNotConnected
	}
	c.subMu.Lock()
	c.subs[topic] = subscription{qos: qos, handler: h}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(h))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.subMu.Lock()
		delete(c.subs, topic)
		c.subMu.Unlock()
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// Close publishes offline and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.client.IsConnected() {
		c.client.Publish(c.cfg.statusTopic(), 1, true, "offline").WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

func (c *Client) wrapHandler(h MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := h(msg.Topic(), msg.Payload()); err != nil {
			c.log.Warn("MQTT handler returned error", "topic", msg.Topic(), "error", err)
		}
	}
}
