package stream

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewStreamConsumer_ConfigErrors(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name string
		cfg  *StreamConfig
	}{
		{"missing redis config", &StreamConfig{}},
		{"unsupported provider", &StreamConfig{Provider: "kafka"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer, err := NewStreamConsumer(context.Background(), tt.cfg, nil, &logger)
			if err == nil {
				t.Fatal("expected an error")
			}
			if consumer != nil {
				t.Error("expected no consumer")
			}
		})
	}
}
