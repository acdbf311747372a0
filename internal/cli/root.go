package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/spf13/cobra"
)

// Service is the pipeline as seen by the CLI.
type Service interface {
	Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error)
	Validate(ctx context.Context, req models.ValidationRequest) (*models.ValidationReport, error)
}

// ServiceFactory builds the service lazily so that --help never touches AWS.
type ServiceFactory func(ctx context.Context) (Service, error)

func NewRootCommand(factory ServiceFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "arcctl",
		Short:         "Validate and rewrite responses with automated reasoning guardrails",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newValidateCommand(factory))
	root.AddCommand(newRewriteCommand(factory))
	return root
}

func newValidateCommand(factory ServiceFactory) *cobra.Command {
	var req models.ValidationRequest
	var contentFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate content against a guardrail and print the findings",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readText(cmd.InOrStdin(), req.Content, contentFile)
			if err != nil {
				return err
			}
			req.Content = content

			service, err := factory(cmd.Context())
			if err != nil {
				return err
			}

			report, err := service.Validate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&req.GuardrailID, "guardrail-id", "", "guardrail identifier (required)")
	cmd.Flags().StringVar(&req.GuardrailVersion, "guardrail-version", "", "guardrail version (default DRAFT)")
	cmd.Flags().StringVar(&req.Content, "content", "", "content to validate")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read content from a file, - for stdin")
	cmd.Flags().StringVar(&req.Query, "query", "", "question the content answers")
	cmd.Flags().StringVar(&req.Source, "source", "OUTPUT", "INPUT or OUTPUT")
	_ = cmd.MarkFlagRequired("guardrail-id")

	return cmd
}

func newRewriteCommand(factory ServiceFactory) *cobra.Command {
	var req models.RewriteRequest
	var responseFile string
	var textOnly bool

	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Validate a response and rewrite it when the findings call for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := readText(cmd.InOrStdin(), req.OriginalResponse, responseFile)
			if err != nil {
				return err
			}
			req.OriginalResponse = response

			service, err := factory(cmd.Context())
			if err != nil {
				return err
			}

			envelope, err := service.Rewrite(cmd.Context(), req)
			if err != nil {
				return err
			}

			if textOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), envelope.RewrittenResponse)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), envelope)
		},
	}

	cmd.Flags().StringVar(&req.GuardrailID, "guardrail-id", "", "guardrail identifier (required)")
	cmd.Flags().StringVar(&req.GuardrailVersion, "guardrail-version", "", "guardrail version (default DRAFT)")
	cmd.Flags().StringVar(&req.UserQuery, "query", "", "user question (required)")
	cmd.Flags().StringVar(&req.OriginalResponse, "response", "", "response to validate")
	cmd.Flags().StringVar(&responseFile, "response-file", "", "read the response from a file, - for stdin")
	cmd.Flags().StringVar(&req.Domain, "domain", "", "assistant domain, e.g. HR")
	cmd.Flags().StringVar(&req.ModelID, "model-id", "", "generation model override")
	cmd.Flags().StringVar(&req.PolicyContext, "policy-context", "", "policy text for the rewrite prompt")
	cmd.Flags().StringVar(&req.RequestID, "request-id", "", "request identifier (generated when empty)")
	cmd.Flags().BoolVar(&textOnly, "text", false, "print only the final response text")
	_ = cmd.MarkFlagRequired("guardrail-id")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

// readText returns inline when set, otherwise the contents of path.
func readText(stdin io.Reader, inline, path string) (string, error) {
	if inline != "" && path != "" {
		return "", fmt.Errorf("pass the text inline or as a file, not both")
	}
	if path == "" {
		return inline, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
