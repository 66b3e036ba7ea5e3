// Feldspar - lazy event log pipelines
// Streams XES event logs through composable map/filter/cache stages.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/RCoanda/feldspar/internal/config"
	"github.com/RCoanda/feldspar/internal/logger"
	"github.com/RCoanda/feldspar/pkg/xes"
)

var version = "0.1.0"

// CLI flags
var (
	compressionFlag string
	configFlag      string
	verbose         bool
)

var (
	cfg Config
	log zerolog.Logger
)

// Config is the resolved runtime configuration: file values overridden
// by flags.
type Config struct {
	config.Config
	Compression xes.Compression
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "feldspar",
	Short:   "Feldspar - lazy event log pipelines",
	Long:    `Feldspar streams XES event logs through lazy, composable pipeline stages without loading the whole log into memory.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		fileCfg, err := config.Load(configFlag)
		if err != nil {
			return err
		}
		cfg.Config = fileCfg

		if compressionFlag == "" {
			compressionFlag = fileCfg.Compression
		}
		cfg.Compression, err = xes.ParseCompression(compressionFlag)
		if err != nil {
			return err
		}

		level := fileCfg.LogLevel
		if verbose {
			level = "debug"
		}
		log = logger.New(os.Stderr, level)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&compressionFlag, "compression", "c", "",
		"source compression: none, infer, gz, zip")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", defaultConfigPath(),
		"path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".feldspar.yaml"
	}
	return home + "/.feldspar.yaml"
}

// loadLog opens the source with the resolved settings and logs any
// construction warnings.
func loadLog(path string) (*xes.Importer, error) {
	imp, err := xes.Load(path, xes.Config{
		Compression: cfg.Compression,
		BufferSize:  cfg.BufferSize,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range imp.Warnings() {
		log.Warn().Str("file", path).Msg(w)
	}
	return imp, nil
}
