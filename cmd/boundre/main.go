// Command boundre classifies regular expressions and runs guarded matches
// over candidate strings, one per line.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boundre"
	"boundre/internal/config"
)

type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "boundre",
		Short: "Bounded-cost regular expression matching",
		Long: `boundre runs regular expressions the way a JSON filter evaluator does:
risky patterns are metered by counting character reads, and a pattern that
keeps blowing its budget is disabled.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Logging.Level = "debug"
			}
			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.classifyCmd(), a.matchCmd())
	return root
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <pattern>",
		Short: "Report whether a pattern is metered on every call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := boundre.Classify(args[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "eligible: %v\n", c.Eligible)
			if reason := c.Reason(); reason != "" {
				fmt.Fprintf(out, "reason: %s\n", reason)
			}
			fmt.Fprintf(out, "repetitions: %d\n", c.Repetitions)
			for _, tok := range c.Quantifiers {
				fmt.Fprintf(out, "  %s at %d\n", tok.Type, tok.Start)
			}
			return nil
		},
	}
}

func (a *app) matchCmd() *cobra.Command {
	var (
		op        string
		flags     string
		maxErrors int
		ratio     int
	)
	cmd := &cobra.Command{
		Use:   "match <pattern> [text...]",
		Short: "Run a guarded operation against each text (or each stdin line)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := boundre.ParseFlags(flags)
			if err != nil {
				return err
			}
			opts := a.cfg.GuardOptions(a.logger)
			if cmd.Flags().Changed("max-errors") {
				opts = append(opts, boundre.WithMaxErrors(maxErrors))
			}
			if cmd.Flags().Changed("ratio") {
				opts = append(opts, boundre.WithRatio(ratio))
			}
			p, err := boundre.NewPattern(args[0], f, opts...)
			if err != nil {
				return err
			}
			run, err := operation(p, op)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			each := func(text string) {
				verdict, value := run(text)
				fmt.Fprintf(out, "%s\t%s\t%s\n", verdict, value, text)
			}
			if len(args) > 1 {
				for _, text := range args[1:] {
					each(text)
				}
			} else if err := eachLine(cmd.InOrStdin(), each); err != nil {
				return err
			}

			fmt.Fprintf(out, "errors=%d max_errors=%d circuit_open=%v\n",
				p.ErrorCount(), p.MaxErrors(), p.IsCircuitOpen())
			return nil
		},
	}
	cmd.Flags().StringVar(&op, "op", "matches", "operation: matches, capture or count")
	cmd.Flags().StringVar(&flags, "flags", "", "regex flags, any of i, m, s")
	cmd.Flags().IntVar(&maxErrors, "max-errors", boundre.DefaultMaxErrors, "reported budget failures before the pattern is disabled")
	cmd.Flags().IntVar(&ratio, "ratio", boundre.DefaultRatio, "character reads allowed per input byte")
	return cmd
}

// operation returns a function running the named guarded operation and
// formatting its verdict and value.
func operation(p *boundre.Pattern, name string) (func(string) (boundre.Verdict, string), error) {
	switch name {
	case "matches":
		return func(text string) (boundre.Verdict, string) {
			o := p.Matches(text)
			return o.Verdict, fmt.Sprint(o.Value)
		}, nil
	case "capture":
		return func(text string) (boundre.Verdict, string) {
			o := p.FirstCapture(text)
			return o.Verdict, fmt.Sprintf("%q", o.Value)
		}, nil
	case "count":
		return func(text string) (boundre.Verdict, string) {
			o := p.Count(text)
			return o.Verdict, fmt.Sprint(o.Value)
		}, nil
	}
	return nil, fmt.Errorf("unknown operation %q (want matches, capture or count)", name)
}

func eachLine(r io.Reader, fn func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		fn(strings.TrimSuffix(sc.Text(), "\r"))
	}
	return sc.Err()
}
