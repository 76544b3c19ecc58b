package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/labelscan/backend/internal/infrastructure/logging"
	"github.com/labelscan/backend/internal/usecase"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newExtractor builds the extractor used by the command
var newExtractor = usecase.NewLabelExtractor

type options struct {
	format   string
	logLevel string
	fields   bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "labelparse [file]",
		Short: "Extract nutrition fields from label text",
		Long: "Read OCR text from a file (or stdin when no file or \"-\" is given) " +
			"and print the extracted nutrition record.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, stdin, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&opts.fields, "fields", false, "Print the field table instead of parsing")

	return cmd
}

func run(ctx context.Context, opts *options, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unsupported format %q (want json or yaml)", opts.format)
	}
	if !logging.ValidLevel(opts.logLevel) {
		return fmt.Errorf("invalid log level %q", opts.logLevel)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.New(stderr, opts.logLevel)
	service := usecase.NewLabelService(newExtractor(logger), nil, logger, usecase.LabelServiceConfig{})

	if opts.fields {
		return write(stdout, opts.format, service.Fields())
	}

	text, err := readInput(args, stdin)
	if err != nil {
		return err
	}

	result, err := service.Parse(ctx, text)
	if err != nil {
		return err
	}
	if err := write(stdout, opts.format, result.Record); err != nil {
		return err
	}
	if result.Record.Error != "" {
		// the record already reads "extraction failed: ..."
		return errors.New(result.Record.Error)
	}
	return nil
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

func write(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
