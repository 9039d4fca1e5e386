package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"planning-bee/internal/delivery"
	"planning-bee/internal/engine"
	"planning-bee/internal/formstate"
	"planning-bee/internal/handler"
	"planning-bee/internal/seed"
	"planning-bee/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var (
	renderIn  string
	renderOut string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a session snapshot file to PDF",
	Long: `Reads a session snapshot (the JSON served at GET /sessions/{id}) and
writes the client instructions PDF.

Example:
  planningbee render --in snapshot.json --out instructions.pdf`,
	RunE: runRender,
}

var (
	sendPDF string
	sendTo  string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Email a rendered PDF through the configured email function",
	RunE:  runSend,
}

var (
	seedOut     string
	seedSession string
	seedOpts    = seed.DefaultOptions()
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a demo session snapshot with fake people",
	Long: `Writes a filled-in demo snapshot to --out, or to stdout when --out is
not given. With --session the snapshot is also saved to the configured store
under that session id.`,
	RunE: runSeed,
}

func init() {
	renderCmd.Flags().StringVar(&renderIn, "in", "", "snapshot JSON file")
	renderCmd.Flags().StringVar(&renderOut, "out", "instructions.pdf", "PDF output file")
	_ = renderCmd.MarkFlagRequired("in")

	sendCmd.Flags().StringVar(&sendPDF, "pdf", "", "PDF file to send")
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient email address")
	_ = sendCmd.MarkFlagRequired("pdf")
	_ = sendCmd.MarkFlagRequired("to")

	seedCmd.Flags().StringVar(&seedOut, "out", "", "snapshot output file")
	seedCmd.Flags().StringVar(&seedSession, "session", "", "also save the snapshot under this session id")
	seedCmd.Flags().IntVar(&seedOpts.Children, "children", seedOpts.Children, "number of children")
	seedCmd.Flags().BoolVar(&seedOpts.Couple, "couple", seedOpts.Couple, "generate a second client")
}

func runServe(cmd *cobra.Command, args []string) error {
	backend, err := store.New(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	sessions := formstate.NewManager(backend, logger)
	defer sessions.Close()

	var mailer handler.Mailer
	if cfg.Delivery.URL != "" {
		mailer = delivery.New(cfg.Delivery, nil, logger)
	} else {
		logger.Warn("delivery.url is not set; document email is disabled")
	}

	srv := &fasthttp.Server{
		Handler:      handler.New(sessions, engine.New(logger), newAssembler(), mailer, logger).Handler(),
		Name:         "planning-bee",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("planning bee starting", zap.String("port", cfg.Port), zap.String("store", cfg.Store.Driver))
		errCh <- srv.ListenAndServe(":" + cfg.Port)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
		return srv.ShutdownWithContext(context.Background())
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(renderIn)
	if err != nil {
		return err
	}
	res, err := newAssembler().Assemble(cmd.Context(), raw)
	if err != nil {
		return fmt.Errorf("%s: %w", renderIn, err)
	}
	if err := os.WriteFile(renderOut, res.PDF, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", renderOut, res.Pages)
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	pdf, err := os.ReadFile(sendPDF)
	if err != nil {
		return err
	}
	res, err := delivery.New(cfg.Delivery, nil, logger).Send(cmd.Context(), pdf, sendTo)
	if err != nil {
		return err
	}
	if res.Success {
		fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s\n", sendPDF, sendTo)
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	sections, err := seed.Sections(seed.Intake(seedOpts))
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return err
	}

	if seedSession != "" {
		backend, err := store.New(cfg.Store, logger)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer backend.Close()
		if err := backend.Save(cmd.Context(), seedSession, sections); err != nil {
			return fmt.Errorf("saving session %s: %w", seedSession, err)
		}
		logger.Info("demo session saved", zap.String("session", seedSession))
	}

	if seedOut == "" {
		_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
		return err
	}
	return os.WriteFile(seedOut, raw, 0o644)
}
