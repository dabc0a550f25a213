package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"nyaya-backend/internal/bench"
	"nyaya-backend/internal/llm"
	"nyaya-backend/internal/llm/ollama"
	"nyaya-backend/internal/shared/config"
	"nyaya-backend/internal/shared/telemetry"
)

// cli carries resolved settings shared by every subcommand.
type cli struct {
	cfg     config.Config
	out     io.Writer
	errOut  io.Writer
	url     string
	model   string
	timeout time.Duration
	verbose bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{cfg: config.Load(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "benchctl",
		Short: "Review procurement cases with the Nyaya AI bench",
		Long: `benchctl sends a procurement case through the five review dimensions and the
final synthesis using a local Ollama model, and prints the verdict.

Example:
  benchctl sample violation > case.json
  benchctl analyze case.json`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := c.cfg.LogLevel
			if !c.verbose {
				level = "error"
			}
			telemetry.Init(level)
			telemetry.SetOutput(errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.url, "ollama-url", c.cfg.OllamaURL, "Ollama server URL")
	flags.StringVar(&c.model, "model", c.cfg.ModelName, "model name")
	flags.DurationVar(&c.timeout, "timeout", c.cfg.LLMTimeout, "per-call model timeout")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log model calls to stderr")

	root.AddCommand(
		c.analyzeCmd(),
		c.parseTenderCmd(),
		c.modelsCmd(),
		c.healthCmd(),
		c.sampleCmd(),
	)
	return root
}

func (c *cli) client() (*ollama.Client, error) {
	client, err := ollama.NewClient(c.url, c.model, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}
	return client, nil
}

func (c *cli) bench(opts ...bench.Option) (*bench.Orchestrator, error) {
	client, err := c.client()
	if err != nil {
		return nil, err
	}
	return bench.New(llm.Observed(client, c.model), opts...), nil
}
