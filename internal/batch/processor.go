package batch

import (
	"context"
	"errors"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Rewriter runs one request through the pipeline.
type Rewriter interface {
	Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error)
}

// OutputRecord is the result of one input line.
type OutputRecord struct {
	LineNumber int                     `json:"line"`
	RequestID  string                  `json:"request_id,omitempty"`
	Envelope   *models.RewriteEnvelope `json:"envelope,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Kind       string                  `json:"kind,omitempty"`
}

func (r OutputRecord) Failed() bool {
	return r.Error != ""
}

type Processor struct {
	rewriter Rewriter
	workers  int
	logger   *zerolog.Logger
}

func NewProcessor(rewriter Rewriter, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{rewriter: rewriter, workers: workers, logger: logger}
}

// Process rewrites records on a bounded pool of workers. Results arrive in
// completion order; the channel closes once every started record is done.
// Records not yet started when ctx ends are dropped.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan OutputRecord {
	out := make(chan OutputRecord, p.workers)

	go func() {
		defer close(out)

		var g errgroup.Group
		g.SetLimit(p.workers)

		for _, record := range records {
			if ctx.Err() != nil {
				p.logger.Warn().Int("line", record.LineNumber).Msg("Stopping batch, context done")
				break
			}

			g.Go(func() error {
				out <- p.processOne(ctx, record)
				return nil
			})
		}

		_ = g.Wait()
	}()

	return out
}

func (p *Processor) processOne(ctx context.Context, record InputRecord) OutputRecord {
	result := OutputRecord{LineNumber: record.LineNumber, RequestID: record.Request.RequestID}

	if record.Error != nil {
		result.Error = record.Error.Error()
		result.Kind = executor.KindInvalidRequest
		return result
	}

	envelope, err := p.rewriter.Rewrite(ctx, record.Request)
	if err != nil {
		result.Error = err.Error()
		var pe *executor.PipelineError
		if errors.As(err, &pe) {
			result.RequestID = pe.RequestID
			result.Kind = pe.Kind
		}
		p.logger.Error().Err(err).Int("line", record.LineNumber).Msg("Rewrite failed")
		return result
	}

	result.RequestID = envelope.RequestID
	result.Envelope = envelope
	return result
}
