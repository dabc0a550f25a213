package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nyaya-backend/internal/bench"
	"nyaya-backend/internal/extract"
	"nyaya-backend/internal/procurement"
)

func (c *cli) analyzeCmd() *cobra.Command {
	var (
		stream  bool
		asJSON  bool
		thought bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <case.json>",
		Short: "Review a procurement case and print the verdict",
		Long: `Reads a case as JSON from a file, or from stdin when the path is "-",
runs every review dimension and the synthesis, and prints the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kase, err := readCase(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			b, err := c.bench(bench.WithThoughts(thought))
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var result bench.AnalysisResult
			if stream {
				result, err = c.follow(b.Stream(ctx, kase))
			} else {
				result, err = b.Analyze(ctx, kase)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.out, result)
			}
			return printResult(c.out, b.Prompts(), result)
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "print progress while the bench deliberates")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&thought, "thoughts", false, "with --stream, print each dimension's recommendation as it arrives")
	return cmd
}

// follow prints progress events to stderr and returns the final result.
func (c *cli) follow(events <-chan bench.Event) (bench.AnalysisResult, error) {
	var (
		result bench.AnalysisResult
		err    error
		done   bool
	)
	for ev := range events {
		switch ev.Status {
		case bench.StatusInfo:
			fmt.Fprintln(c.errOut, ev.Message)
		case bench.StatusProgress:
			fmt.Fprintf(c.errOut, "  %-16s %s\n", ev.Agent, ev.State)
		case bench.StatusThought:
			fmt.Fprintf(c.errOut, "  %s: %s\n", ev.Agent, ev.Message)
		case bench.StatusComplete:
			result, done = ev.Result.(bench.AnalysisResult)
		case bench.StatusError:
			err = errors.New(ev.Message)
		}
	}
	if err == nil && !done {
		err = errors.New("stream ended without a result")
	}
	return result, err
}

func (c *cli) parseTenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-tender <file>",
		Short: "Extract a draft case from a tender document",
		Long:  `Reads a PDF, DOCX or plain text tender and asks the model to recover the case fields.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			text, err := extract.FromBytes(ctx, data, "", filepath.Base(args[0]))
			if err != nil {
				return err
			}
			b, err := c.bench()
			if err != nil {
				return err
			}
			draft, res, err := b.ParseTender(ctx, text)
			if err != nil {
				return err
			}
			if !res.OK() {
				return writeJSON(c.out, res)
			}
			return writeJSON(c.out, draft)
		},
	}
}

func (c *cli) modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models installed on the Ollama server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			models, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
			found := false
			for _, m := range models {
				mark := ""
				if m.Name == c.model {
					mark, found = " *", true
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%s\n", m.Name, mark, humanSize(m.Size), m.ModifiedAt.Format("2006-01-02 15:04"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if !found {
				fmt.Fprintf(c.errOut, "configured model %q is not installed; run: ollama pull %s\n", c.model, c.model)
			}
			return nil
		},
	}
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the Ollama server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			if err := client.Ping(cmd.Context()); err != nil {
				fmt.Fprintf(c.out, "llm: disconnected (%s)\n", c.url)
				return err
			}
			fmt.Fprintf(c.out, "llm: connected (%s, model %s)\n", c.url, c.model)
			return nil
		},
	}
}

func (c *cli) sampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sample [violation|compliant]",
		Short:     "Print a built-in sample case as JSON",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"violation", "compliant"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kase := procurement.SampleViolation()
			if len(args) == 1 && args[0] == "compliant" {
				kase = procurement.SampleCompliant()
			}
			return writeJSON(c.out, kase)
		},
	}
}

func readCase(stdin io.Reader, path string) (procurement.Case, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return procurement.Case{}, err
	}
	var kase procurement.Case
	if err := json.Unmarshal(data, &kase); err != nil {
		return procurement.Case{}, fmt.Errorf("decode case: %w", err)
	}
	return kase, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, p *bench.Prompts, r bench.AnalysisResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Case %s\n\n", r.CaseID)
	fmt.Fprintln(tw, "DIMENSION\tSTANCE\tSCORE")
	for _, name := range p.DimensionNames() {
		op, ok := r.Opinion(name)
		if !ok {
			fmt.Fprintf(tw, "%s\tunparsed\t-\n", name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f\n", name, op.Stance, op.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if v, ok := r.TypedVerdict(); ok {
		fmt.Fprintf(w, "\nVerdict: %s (score %.0f)\n", v.Verdict, v.ConstitutionalScore)
		for _, issue := range v.CriticalIssues {
			fmt.Fprintf(w, "  ! %s\n", issue)
		}
		if v.CitizenSummary != "" {
			fmt.Fprintf(w, "\n%s\n", v.CitizenSummary)
		}
	} else {
		fmt.Fprintln(w, "\nVerdict: unavailable (model reply could not be parsed)")
	}

	if len(r.RuleChecks) > 0 {
		fmt.Fprintln(w, "\nRule checks:")
		for _, f := range r.RuleChecks {
			fmt.Fprintf(w, "  [%s] %s %s: %s\n", f.Severity, f.Rule, f.Check, f.Message)
		}
	}
	return nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
