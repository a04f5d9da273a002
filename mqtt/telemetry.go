package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"doorlock/lock"
)

const (
	statusOnline  = `{"status":"online"}`
	statusOffline = `{"status":"offline"}`
)

// PingInterval is how often Run publishes a ping.
const PingInterval = 120 * time.Second

func topic(clientID, leaf string) string {
	return fmt.Sprintf("doorlock/status/node/%s/%s", clientID, leaf)
}

// StatusTopic carries the retained online/offline state of a node.
func StatusTopic(clientID string) string { return topic(clientID, "status") }

// Publisher is the part of Client used for telemetry.
type Publisher interface {
	Publish(topic string, payload string)
	PublishRetained(topic string, payload string)
}

// Telemetry publishes controller events for one node.
type Telemetry struct {
	pub      Publisher
	clientID string
}

// NewTelemetry creates a publisher for clientID.
func NewTelemetry(pub Publisher, clientID string) *Telemetry {
	return &Telemetry{pub: pub, clientID: clientID}
}

type lengthsMessage struct {
	Open    int `json:"open"`
	Close   int `json:"close"`
	Release int `json:"release"`
}

type eventMessage struct {
	Event       string          `json:"event"`
	Operation   string          `json:"operation,omitempty"`
	Position    string          `json:"position"`
	Previous    string          `json:"previous,omitempty"`
	Requested   int             `json:"requested,omitempty"`
	Pulses      int             `json:"pulses,omitempty"`
	Calibration string          `json:"calibration"`
	Lengths     *lengthsMessage `json:"lengths,omitempty"`
}

func encodeEvent(ev lock.Event) ([]byte, error) {
	m := eventMessage{
		Event:       ev.Type.String(),
		Position:    ev.Position.String(),
		Requested:   ev.Requested,
		Pulses:      ev.Pulses,
		Calibration: ev.Calibration.String(),
	}
	if ev.Operation != lock.OpNone {
		m.Operation = ev.Operation.String()
	}
	switch ev.Type {
	case lock.EventMotorStop:
		m.Previous = ev.Previous.String()
	case lock.EventCalibration:
		m.Lengths = &lengthsMessage{Open: ev.Lengths.Open, Close: ev.Lengths.Close, Release: ev.Lengths.Release}
	}
	return json.Marshal(m)
}

// Event publishes ev, and the retained position when a run ends.
func (t *Telemetry) Event(ev lock.Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		log.Errorf("MQTT encode %s: %v", ev.Type, err)
		return
	}
	t.pub.Publish(topic(t.clientID, "event"), string(data))
	if ev.Type == lock.EventMotorStop {
		t.Position(ev.Position)
	}
}

// Position publishes p as the retained position.
func (t *Telemetry) Position(p lock.Position) {
	t.pub.PublishRetained(topic(t.clientID, "position"), fmt.Sprintf(`{"position":%q}`, p.String()))
}

// Ping publishes a liveness message.
func (t *Telemetry) Ping() {
	t.pub.Publish(topic(t.clientID, "ping"), `{"status":"ok"}`)
}

// Run pings every PingInterval until done is closed.
func (t *Telemetry) Run(done <-chan struct{}) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.Ping()
		}
	}
}
