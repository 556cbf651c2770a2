package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"submission-backend/internal/bootstrap"
	"submission-backend/internal/recommendations"
	"submission-backend/internal/shared/config"
	"submission-backend/internal/shared/telemetry"
)

type options struct {
	id      string
	file    string
	out     string
	dryRun  bool
	summary bool
}

func main() {
	if err := newRootCmd(loadService).Execute(); err != nil {
		os.Exit(1)
	}
}

func loadService() (*recommendations.Service, error) {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return nil, err
	}
	return app.RecommendationsService, nil
}

func newRootCmd(load func() (*recommendations.Service, error)) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Generate format recommendations for a submission",
		Long: `Runs the format recommendation pipeline against a stored submission (--id)
or a JSON file (--file) and prints the model's result. Stored submissions are
updated with the result, exactly as the HTTP endpoint does.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer telemetry.Sync()
			svc, err := load()
			if err != nil {
				return err
			}
			return run(cmd.Context(), svc, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "submission id to enrich")
	cmd.Flags().StringVar(&opts.file, "file", "", "path to a submission JSON file")
	cmd.Flags().StringVar(&opts.out, "out", "", "also write the result to this path")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the prompt without calling the model")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a ranked summary to stderr")
	cmd.MarkFlagsOneRequired("id", "file")
	return cmd
}

func run(ctx context.Context, svc *recommendations.Service, opts options, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req := recommendations.Request{SubmissionID: strings.TrimSpace(opts.id)}
	if req.SubmissionID == "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("read submission file: %w", err)
		}
		req.SubmissionData = data
	}

	if opts.dryRun {
		prompt, err := svc.BuildPrompt(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "# system\n%s\n\n# user\n%s\n", prompt.System, prompt.User)
		fmt.Fprintf(stdout, "\n# web search: %t\n", prompt.WebSearch)
		return nil
	}

	raw, err := svc.Enrich(ctx, req)
	if err != nil {
		var parse *recommendations.ParseError
		if errors.As(err, &parse) {
			fmt.Fprintf(stderr, "raw model output:\n%s\n", parse.Raw)
		}
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	pretty.WriteByte('\n')

	if opts.out != "" {
		if err := os.WriteFile(opts.out, pretty.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if _, err := stdout.Write(pretty.Bytes()); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}

	if opts.summary {
		printSummary(stderr, raw)
	}
	return nil
}

func printSummary(w io.Writer, raw json.RawMessage) {
	result, err := recommendations.DecodeResult(raw)
	if err != nil {
		fmt.Fprintf(w, "summary unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", result.CompanyName, result.AnalysisContext.Category)
	for _, rec := range result.Recommendations {
		m := rec.ViabilityMatrix
		fmt.Fprintf(w, "  %d. %s  ops=%.1f strategy=%.1f culture=%.1f\n",
			rec.Rank, rec.FormatName,
			m.OperationalScalability.Score, m.StrategicPositioning.Score, m.CulturalAdaptability.Score)
	}
}
