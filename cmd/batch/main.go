package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/batch"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	input           string
	output          string
	format          string
	workers         int
	continueOnError bool
	dryRun          bool
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var opts options
	flag.StringVar(&opts.input, "input", "", "Input JSONL file, - for stdin")
	flag.StringVar(&opts.output, "output", "", "Output file (default stdout)")
	flag.StringVar(&opts.format, "format", batch.FormatJSONL, "Output format. Supported formats: 'jsonl', 'summary'")
	flag.IntVar(&opts.workers, "workers", 5, "Concurrent rewrite workers")
	flag.BoolVar(&opts.continueOnError, "continue-on-error", true, "Keep going after a result cannot be written")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Parse and validate input without calling the pipeline")
	flag.Parse()

	if opts.input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cancel, opts); err != nil {
		log.Error().Err(err).Msg("Batch failed")
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, opts options) error {
	start := time.Now()

	in, closeIn, err := openInput(opts.input)
	if err != nil {
		return err
	}
	defer closeIn()

	var records []batch.InputRecord
	for record := range batch.NewReader(in, &log.Logger).ReadAll(ctx) {
		records = append(records, record)
	}
	log.Info().Int("total", len(records)).Msg("Input file parsed")

	if opts.dryRun {
		return checkRecords(records)
	}

	deps, err := setup.Wire(ctx, setup.LoadConfig(), &log.Logger)
	if err != nil {
		return fmt.Errorf("wire dependencies: %w", err)
	}

	out, closeOut, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer closeOut()

	writer, err := batch.NewWriter(out, opts.format, deps.Logger)
	if err != nil {
		return err
	}

	writeErrors := 0
	for result := range batch.NewProcessor(deps.Pipeline, opts.workers, deps.Logger).Process(ctx, records) {
		if err := writer.Write(result); err != nil {
			log.Error().Err(err).Int("line", result.LineNumber).Msg("Failed to write result")
			writeErrors++
			if !opts.continueOnError {
				cancel()
			}
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish output: %w", err)
	}

	summary := writer.Summary()
	log.Info().
		Int("total", summary.Total).
		Int("rewritten", summary.Rewritten).
		Int("clean", summary.Clean).
		Int("fallback", summary.Fallback).
		Int("failed", summary.Failed).
		Int("write_errors", writeErrors).
		Dur("duration", time.Since(start)).
		Msg("Batch processing complete")

	if writeErrors > 0 && !opts.continueOnError {
		return fmt.Errorf("%d result(s) could not be written", writeErrors)
	}
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		log.Info().Msg("Reading from stdin")
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input %s: %w", path, err)
	}
	log.Info().Str("file", path).Msg("Reading input file")
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output %s: %w", path, err)
	}
	log.Info().Str("file", path).Msg("Writing to output file")
	return f, func() { _ = f.Close() }, nil
}

// checkRecords reports every line that failed to parse or validate.
func checkRecords(records []batch.InputRecord) error {
	invalid := 0
	for _, record := range records {
		if record.Error != nil {
			log.Error().
				Int("line", record.LineNumber).
				Err(record.Error).
				Msg("Validation error")
			invalid++
		}
	}
	if invalid > 0 {
		return errors.New(fmt.Sprint(invalid, " invalid record(s)"))
	}
	log.Info().Msg("Validation successful")
	return nil
}
