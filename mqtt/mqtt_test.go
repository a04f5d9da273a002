package mqtt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		cfg    Config
		url    string
		secure bool
	}{
		{Config{Host: "broker"}, "tcp://broker:1883", false},
		{Config{Host: "broker", Port: 1884}, "tcp://broker:1884", false},
		{Config{Host: "broker", CACert: "ca.pem"}, "ssl://broker:8883", true},
		{Config{Host: "broker", ClientCert: "c.pem", Port: 9000}, "ssl://broker:9000", true},
	}
	for _, tt := range tests {
		url, secure := brokerURL(tt.cfg)
		if url != tt.url || secure != tt.secure {
			t.Errorf("brokerURL(%+v) = %s, %v, want %s, %v", tt.cfg, url, secure, tt.url, tt.secure)
		}
	}
}

func TestNewRejectsQoS(t *testing.T) {
	if _, err := New(Config{Host: "broker", QoS: 3}, "n1", Handlers{}); err == nil {
		t.Fatal("qos 3 accepted")
	}
}

func TestNewBadCA(t *testing.T) {
	ca := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(ca, []byte("not a certificate"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Host: "broker", CACert: ca}, "n1", Handlers{}); err == nil {
		t.Fatal("garbage CA accepted")
	}
}

func TestNewEnabled(t *testing.T) {
	c, err := New(Config{Host: "broker"}, "n1", Handlers{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.IsEnabled() {
		t.Error("client with host is disabled")
	}
}
