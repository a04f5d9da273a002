// Package mqtt publishes lock telemetry to an MQTT broker.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Config holds MQTT connection settings. An empty Host disables MQTT.
type Config struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"` // 1883, or 8883 with TLS
	CACert        string `yaml:"ca_cert"`
	ClientCert    string `yaml:"client_cert"`
	ClientKey     string `yaml:"client_key"`
	QoS           byte   `yaml:"qos"`
	KeepAliveSecs int    `yaml:"keepalive_secs"`
}

// Handlers are called from paho's goroutines when the connection
// comes up or drops.
type Handlers struct {
	OnConnect    func()
	OnDisconnect func()
}

// Client is a publish-only broker connection. A disabled Client drops
// every message.
type Client struct {
	client   paho.Client
	clientID string
	qos      byte
	handlers Handlers
}

// New builds the client without connecting. It returns a disabled
// client when no host is configured.
func New(cfg Config, clientID string, handlers Handlers) (*Client, error) {
	c := &Client{clientID: clientID, qos: cfg.QoS, handlers: handlers}
	if cfg.Host == "" {
		log.Println("mqtt: no host, telemetry disabled")
		return c, nil
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("qos %d out of range", cfg.QoS)
	}

	broker, secure := brokerURL(cfg)
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetWill(StatusTopic(clientID), statusOffline, cfg.QoS, true).
		SetConnectionLostHandler(c.lost).
		SetOnConnectHandler(c.connected)
	keepAlive := 60 * time.Second
	if cfg.KeepAliveSecs > 0 {
		keepAlive = time.Duration(cfg.KeepAliveSecs) * time.Second
	}
	opts.SetKeepAlive(keepAlive)
	if secure {
		tc, err := tlsConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("tls: %w", err)
		}
		opts.SetTLSConfig(tc)
	}

	paho.ERROR = log.WithField("paho", "error")
	paho.CRITICAL = log.WithField("paho", "critical")
	paho.WARN = log.WithField("paho", "warn")

	c.client = paho.NewClient(opts)
	log.WithFields(log.Fields{"broker": broker, "client_id": clientID}).Info("mqtt: configured")
	return c, nil
}

// brokerURL picks the scheme and default port. Any certificate
// setting selects TLS.
func brokerURL(cfg Config) (string, bool) {
	secure := cfg.CACert != "" || cfg.ClientCert != ""
	scheme, port := "tcp", 1883
	if secure {
		scheme, port = "ssl", 8883
	}
	if cfg.Port != 0 {
		port = cfg.Port
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, port), secure
}

func tlsConfig(cfg Config) (*tls.Config, error) {
	tc := &tls.Config{}
	if cfg.CACert != "" {
		pem, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CACert)
		}
		tc.RootCAs = pool
	}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

// Connect blocks until the first connection attempt completes. For a
// disabled client it reports a connection so the indicator does not
// show a lost broker that was never configured.
func (c *Client) Connect() error {
	if c.client == nil {
		if c.handlers.OnConnect != nil {
			c.handlers.OnConnect()
		}
		return nil
	}
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect: %w", token.Error())
	}
	return nil
}

// Disconnect publishes the offline status and closes the connection.
func (c *Client) Disconnect() {
	if c.client == nil || !c.client.IsConnected() {
		return
	}
	c.publish(StatusTopic(c.clientID), statusOffline, true)
	c.client.Disconnect(250)
}

// Publish sends a message. No-op if disabled.
func (c *Client) Publish(topic string, payload string) {
	c.publish(topic, payload, false)
}

// PublishRetained sends a message the broker keeps for new
// subscribers. No-op if disabled.
func (c *Client) PublishRetained(topic string, payload string) {
	c.publish(topic, payload, true)
}

// IsEnabled reports whether a broker is configured.
func (c *Client) IsEnabled() bool { return c.client != nil }

func (c *Client) publish(topic, payload string, retained bool) {
	if c.client == nil {
		return
	}
	token := c.client.Publish(topic, c.qos, retained, payload)
	// QoS 0 completes at once; higher levels wait off the caller.
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			log.Warnf("mqtt: publish %s timed out", topic)
		} else if err := token.Error(); err != nil {
			log.Warnf("mqtt: publish %s: %v", topic, err)
		}
	}()
}

func (c *Client) connected(client paho.Client) {
	log.Println("mqtt: connected")
	client.Publish(StatusTopic(c.clientID), c.qos, true, statusOnline)
	if c.handlers.OnConnect != nil {
		c.handlers.OnConnect()
	}
}

func (c *Client) lost(client paho.Client, err error) {
	log.Warnf("mqtt: connection lost: %v", err)
	if c.handlers.OnDisconnect != nil {
		c.handlers.OnDisconnect()
	}
}
