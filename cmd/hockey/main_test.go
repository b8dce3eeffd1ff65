package main

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
)

func TestPortOf(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":23234", "23234"},
		{"0.0.0.0:2222", "2222"},
		{"[::1]:9000", "9000"},
		{"noport", "noport"},
	}
	for _, tt := range tests {
		if got := portOf(tt.addr); got != tt.want {
			t.Errorf("portOf(%q) = %q, expected %q", tt.addr, got, tt.want)
		}
	}
}

func TestNewNetwork(t *testing.T) {
	logger := log.New(io.Discard)

	if _, ok := newNetwork("", config.NetworkConfig{}, logger).(multiplayer.Offline); !ok {
		t.Error("no relay URL should give an offline network")
	}
	if _, ok := newNetwork("", config.NetworkConfig{RelayURL: "ws://relay.test/play"}, logger).(*multiplayer.WSClient); !ok {
		t.Error("a configured relay should give a WebSocket client")
	}
	if _, ok := newNetwork("ws://flag.test/play", config.NetworkConfig{}, logger).(*multiplayer.WSClient); !ok {
		t.Error("the --relay flag should give a WebSocket client")
	}
}
