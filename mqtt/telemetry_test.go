package mqtt

import (
	"encoding/json"
	"testing"

	"doorlock/lock"
)

type message struct {
	topic, payload string
	retained       bool
}

type fakePublisher struct {
	msgs []message
}

func (f *fakePublisher) Publish(topic, payload string) {
	f.msgs = append(f.msgs, message{topic, payload, false})
}

func (f *fakePublisher) PublishRetained(topic, payload string) {
	f.msgs = append(f.msgs, message{topic, payload, true})
}

func TestMotorStopPublishesPosition(t *testing.T) {
	pub := &fakePublisher{}
	tel := NewTelemetry(pub, "front")
	tel.Event(lock.Event{Type: lock.EventMotorStop, Operation: lock.OpLock, Position: lock.Locked, Previous: lock.Released, Pulses: 80})

	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.msgs))
	}
	ev := pub.msgs[0]
	if ev.topic != "doorlock/status/node/front/event" || ev.retained {
		t.Errorf("event on %q retained=%v", ev.topic, ev.retained)
	}
	var got eventMessage
	if err := json.Unmarshal([]byte(ev.payload), &got); err != nil {
		t.Fatalf("decode %q: %v", ev.payload, err)
	}
	want := eventMessage{Event: "motor-stop", Operation: "lock", Position: "locked", Previous: "released", Pulses: 80, Calibration: "none"}
	if got != want {
		t.Errorf("event %+v, want %+v", got, want)
	}

	pos := pub.msgs[1]
	if pos.topic != "doorlock/status/node/front/position" || !pos.retained || pos.payload != `{"position":"locked"}` {
		t.Errorf("position message %+v", pos)
	}
}

func TestCalibrationCarriesLengths(t *testing.T) {
	data, err := encodeEvent(lock.Event{Type: lock.EventCalibration, Lengths: lock.Lengths{Close: 90, Release: 120}})
	if err != nil {
		t.Fatal(err)
	}
	var got eventMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Lengths == nil || *got.Lengths != (lengthsMessage{Close: 90, Release: 120}) {
		t.Errorf("lengths %+v in %s", got.Lengths, data)
	}
	if got.Operation != "" {
		t.Errorf("operation %q for an event without one", got.Operation)
	}
}

func TestPing(t *testing.T) {
	pub := &fakePublisher{}
	NewTelemetry(pub, "n1").Ping()
	if len(pub.msgs) != 1 || pub.msgs[0].topic != "doorlock/status/node/n1/ping" {
		t.Errorf("ping %+v", pub.msgs)
	}
}

func TestDisabledClient(t *testing.T) {
	connected := false
	c, err := New(Config{}, "n1", Handlers{OnConnect: func() { connected = true }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.IsEnabled() {
		t.Error("client enabled without a host")
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !connected {
		t.Error("disabled client did not report a connection")
	}
	c.Publish("x", "y")
	c.PublishRetained("x", "y")
	c.Disconnect()
}
