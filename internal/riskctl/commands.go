package riskctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/climarisk/internal/domain/aggregate"
	"github.com/okian/climarisk/internal/domain/scoring"
	"github.com/okian/climarisk/pkg/logger"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type rootOptions struct {
	output  string
	verbose bool
}

// NewRootCommand builds the riskctl command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Score climate risk items and aggregate scenario series",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithLevel(level))
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", FormatTable, "output format: table or json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newScoreCommand(opts),
		newAggregateCommand(opts),
		newSubmitCommand(opts),
	)
	return root
}

func newScoreCommand(opts *rootOptions) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "score [file|-]",
		Short: "Score, rank and summarize the items of an input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := LoadInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if profile == "" {
				profile = in.Profile
			}
			a, err := scoring.NewScorer().Assess(profile, in.Items)
			if err != nil {
				return err
			}
			if opts.output == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), a)
			}
			return writeAssessment(cmd.OutOrStdout(), a)
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "scoring profile (defaults to the file's, then risk)")
	return cmd
}

func newAggregateCommand(opts *rootOptions) *cobra.Command {
	var source, metric string
	cmd := &cobra.Command{
		Use:   "aggregate [file|-]",
		Short: "Average each metric's observations across sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := LoadInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			results, err := aggregateInput(in, metric, source)
			if err != nil {
				return err
			}
			if opts.output == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeResults(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "show one source's series instead of the mean")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "only this metric")
	return cmd
}

func newSubmitCommand(opts *rootOptions) *cobra.Command {
	var (
		server  string
		wait    bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit [file|-]",
		Short: "Submit an assessment to a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := LoadInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := NewClient(server, timeout)
			sub, err := client.Submit(ctx, in)
			if err != nil {
				return err
			}
			logger.Get().Debug(ctx, "assessment submitted",
				logger.String("id", sub.ID),
				logger.Bool("duplicate", sub.Duplicate),
			)
			if !wait {
				if opts.output == FormatJSON {
					return writeJSON(cmd.OutOrStdout(), sub)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sub.ID, sub.Status)
				return err
			}

			st, err := client.Wait(ctx, sub.ID, pollInterval)
			if err != nil {
				return err
			}
			if opts.output == FormatJSON || st.Report == nil {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			return writeAssessment(cmd.OutOrStdout(), scoring.Assessment{
				Profile:    st.Report.Profile,
				Items:      st.Report.Items,
				Summary:    st.Report.Summary,
				Categories: st.Report.Categories,
			})
		},
	}
	cmd.Flags().StringVar(&server, "server", envOr("CLIMARISK_SERVER", "http://localhost:9080"), "server base URL")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the assessment and print the report")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	return cmd
}

const pollInterval = 200 * time.Millisecond

// aggregateInput runs the aggregator once per metric, in sorted metric order.
func aggregateInput(in Input, metric, source string) ([]aggregate.Result, error) {
	byMetric := aggregate.SplitByMetric(in.Observations)
	if metric != "" {
		series, ok := byMetric[metric]
		if !ok {
			return nil, fmt.Errorf("metric %q: %w", metric, aggregate.ErrEmptySeries)
		}
		byMetric = map[string]aggregate.Series{metric: series}
	}
	if len(byMetric) == 0 {
		return nil, aggregate.ErrEmptySeries
	}

	names := make([]string, 0, len(byMetric))
	for name := range byMetric {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]aggregate.Result, 0, len(names))
	for _, name := range names {
		res, err := aggregate.Run(byMetric[name], source)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", name, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeAssessment(w io.Writer, a scoring.Assessment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tCATEGORY\tSCORE\tSEVERITY\tBADGE\tOVERALL RANK\n")
	for _, it := range a.Items {
		rank := "-"
		if r, ok := it.PeerRankings[scoring.OverallDimension]; ok {
			rank = fmt.Sprint(r)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\t%s\t%s\n", it.ID, it.Category, it.DisplayScore, it.Severity, it.Badge, rank)
	}
	fmt.Fprintf(tw, "\nprofile %s: %d items, average %.1f (%s), %d high, %d critical\n",
		a.Profile, a.Summary.Count, scoring.Round1(a.Summary.AverageOverall),
		scoring.Classify(a.Summary.AverageOverall), a.Summary.HighSeverityCount, a.Summary.CriticalCount)
	return tw.Flush()
}

func writeResults(w io.Writer, results []aggregate.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "METRIC\tSOURCE\tKEY\tVALUE\tSOURCES\n")
	for _, res := range results {
		for _, p := range res.Points {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%d\n", res.Metric, res.SourceID, p.GroupKey, p.Value, p.ContributorCount)
		}
		for _, o := range res.Observations {
			value := "null"
			if o.Value != nil {
				value = fmt.Sprintf("%g", *o.Value)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t-\n", res.Metric, res.SourceID, o.GroupKey, value)
		}
	}
	return tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
