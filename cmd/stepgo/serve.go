package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepgo/stepgo/internal/debug"
	"github.com/stepgo/stepgo/internal/hw/gpio"
	"github.com/stepgo/stepgo/internal/logic/motor"
	"github.com/stepgo/stepgo/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control API",
	Long: `Run the motor and expose it over an HTTP API:

  GET  /api/status     current position, target and motion state
  POST /api/move       {"target_step": 400, "max_velocity": 500}
  POST /api/reset      {"step": 0}
  POST /api/stepmode   {"microsteps": 16}
  GET  /status/stream  server-sent events with log and position updates

The server runs until interrupted and shuts down gracefully.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, usually :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Web.Listen
	if serveListen != "" {
		addr = serveListen
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		return fmt.Errorf("init GPIO: %w", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	svc, _, err := buildMotor(gpioDriver, cfg)
	if err != nil {
		return err
	}

	broadcaster := web.NewStatusBroadcaster()
	// Debug output also feeds the SSE status stream.
	if cfg.Defaults.DebugLevel > 0 {
		debugTee(broadcaster)
	}

	go func() {
		if err := svc.Run(ctx); err != nil {
			log.Printf("motor loop: %v", err)
		}
	}()
	go publishPosition(ctx, svc, broadcaster)

	srv := web.NewServer(addr, broadcaster, svc)
	return srv.Run(ctx)
}

// debugTee mirrors debug output to both stdout and the SSE clients.
func debugTee(b *web.StatusBroadcaster) {
	debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(b)))
}

// publishPosition broadcasts the motor position whenever it changes, plus a
// final at-rest event when a motion completes.
func publishPosition(ctx context.Context, svc *motor.Service, b *web.StatusBroadcaster) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	last := svc.Status()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := svc.Status()
			if st.Step != last.Step || st.Moving != last.Moving {
				b.BroadcastPosition(st.Step, st.Moving)
				last = st
			}
		}
	}
}
