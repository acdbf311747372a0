package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/rs/zerolog"
)

const maxLineBytes = 1024 * 1024

// InputRecord is one line of a JSONL input file.
type InputRecord struct {
	LineNumber int
	Request    models.RewriteRequest
	Error      error
}

type Reader struct {
	r      io.Reader
	logger *zerolog.Logger
}

func NewReader(r io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{r: r, logger: logger}
}

// ReadAll streams records until EOF or ctx ends. Blank lines are skipped;
// lines that fail to decode are delivered with Error set.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.r)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			record := InputRecord{LineNumber: line}
			if err := json.Unmarshal([]byte(text), &record.Request); err != nil {
				record.Error = fmt.Errorf("line %d: %w", line, err)
				r.logger.Warn().Err(err).Int("line", line).Msg("Failed to parse record")
			}

			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Int("line", line).Msg("Failed to read input")
			select {
			case out <- InputRecord{LineNumber: line + 1, Error: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}
