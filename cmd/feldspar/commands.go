package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RCoanda/feldspar/pkg/pipeline"
	"github.com/RCoanda/feldspar/pkg/trace"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print log metadata (classifiers, extensions, globals)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imp, err := loadLog(args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(imp.Attributes())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Stream a log and report trace/event counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imp, err := loadLog(args[0])
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("scanning traces"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
		)

		start := time.Now()
		traces, events := 0, 0
		minLen, maxLen := -1, 0
		for tr, err := range imp.Iterate() {
			if err != nil {
				return err
			}
			traces++
			events += tr.Len()
			if minLen < 0 || tr.Len() < minLen {
				minLen = tr.Len()
			}
			if tr.Len() > maxLen {
				maxLen = tr.Len()
			}
			bar.Add(1)
		}
		bar.Finish()
		fmt.Fprintln(cmd.OutOrStdout())

		elapsed := time.Since(start)
		if minLen < 0 {
			minLen = 0
		}
		fmt.Fprintf(cmd.OutOrStdout(), "traces:        %d\n", traces)
		fmt.Fprintf(cmd.OutOrStdout(), "events:        %d\n", events)
		fmt.Fprintf(cmd.OutOrStdout(), "trace length:  min %d, max %d\n", minLen, maxLen)
		fmt.Fprintf(cmd.OutOrStdout(), "elapsed:       %s\n", elapsed.Round(time.Millisecond))
		return nil
	},
}

var cacheOutput string

var cacheCmd = &cobra.Command{
	Use:   "cache <file>",
	Short: "Materialize a log into a cache file",
	Long:  `Cache streams every trace of the source into an append-only cache file. If the target already holds data it is left untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imp, err := loadLog(args[0])
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("caching traces"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
		)
		counted := pipeline.Map[*trace.Trace, *trace.Trace](imp, func(tr *trace.Trace) *trace.Trace {
			bar.Add(1)
			return tr
		})

		if _, err := pipeline.FileCache(counted, cacheOutput); err != nil {
			return err
		}
		bar.Finish()
		fmt.Fprintln(cmd.OutOrStdout())

		info, err := os.Stat(cacheOutput)
		if err != nil {
			return err
		}
		log.Info().Str("target", cacheOutput).Int64("bytes", info.Size()).Msg("cache ready")
		return nil
	},
}

func init() {
	cacheCmd.Flags().StringVarP(&cacheOutput, "output", "o", "", "cache file target (required)")
	cacheCmd.MarkFlagRequired("output")
}
