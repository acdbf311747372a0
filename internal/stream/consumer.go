package stream

import "context"

const (
	DefaultRequestStream = "arc-rewrite-requests"
	DefaultResultStream  = "arc-rewrite-results"
	DefaultGroup         = "arc-group"
)

type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
