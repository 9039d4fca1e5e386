package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"planning-bee/internal/config"
	"planning-bee/internal/document"
	"planning-bee/internal/imagefetch"
	"planning-bee/internal/logging"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "planningbee",
	Short: "Planning Bee will-writing intake service",
	Long: `Planning Bee captures will, lasting power of attorney and family
protection instructions during an adviser appointment, renders them as a
PDF and emails the PDF to the client.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default planningbee.yaml if present)")
	rootCmd.AddCommand(serveCmd, renderCmd, sendCmd, seedCmd)
}

// newAssembler builds the document assembler from the loaded config.
func newAssembler() *document.Assembler {
	timeout := time.Duration(cfg.Document.ImageFetchTimeoutSec) * time.Second
	return document.New(
		imagefetch.New(nil, timeout, logger),
		document.Options{Compress: cfg.Document.Compress, Concurrency: cfg.Document.ImageConcurrency},
		logger,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
