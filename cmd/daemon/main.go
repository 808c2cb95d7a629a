// Command daemon is the thin external CLI surface named in spec.md §6. It
// owns flag parsing and process detachment only; every operational
// decision (startup order, signal handling, tick scheduling) lives in the
// daemon package.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/petabytecl/godaemon/daemon"
	"github.com/petabytecl/godaemon/logger"
	"github.com/petabytecl/godaemon/procmgr"
	"github.com/petabytecl/godaemon/transport"
)

const detachMarkerEnv = "GODAEMON_DETACHED_CHILD"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		detach       bool
		pidFile      string
		loopInterval time.Duration
		recover_     bool
		installTpl   string
		printNotes   bool
		debugWorkers bool
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run a supervised worker pool as a background process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printNotes {
				fmt.Println("install: place the generated unit/init file under your service manager's config directory and enable it.")
				return nil
			}
			if installTpl != "" {
				return writeInstallScript(installTpl)
			}

			if detach {
				isParent, err := daemon.Detach(detachMarkerEnv)
				if err != nil {
					return fmt.Errorf("detach: %w", err)
				}
				if isParent {
					return nil
				}
			}

			return runDaemon(pidFile, loopInterval, recover_)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&detach, "detach", "d", false, "detach from the controlling terminal")
	flags.StringVarP(&pidFile, "pid-file", "p", "", "path to write the daemon's pid")
	flags.DurationVarP(&loopInterval, "interval", "I", time.Second, "tick loop interval")
	flags.BoolVar(&recover_, "recover", false, "reattach to an existing shared store instead of starting fresh")
	flags.StringVar(&installTpl, "install", "", "write an init script from the named template and exit")
	flags.BoolVarP(&printNotes, "notes", "i", false, "print install notes and exit")
	flags.BoolP("help-extended", "H", false, "show extended help")
	flags.BoolVar(&debugWorkers, "debug-workers", false, "reserved; not implemented")
	_ = debugWorkers

	return cmd
}

func runDaemon(pidFile string, loopInterval time.Duration, recoverMode bool) error {
	log := logger.NewLogger(&logger.Config{Level: slog.LevelInfo, Format: "json"})

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	cfg := daemon.Config{
		LoopInterval: loopInterval,
		PIDFile:      pidFile,
		Detached:     os.Getenv(detachMarkerEnv) == "1",
		Recover:      recoverMode,
	}

	// A ManualReader is enough to exercise the SDK without standing up a
	// real collector; swap in a periodic OTLP reader in production.
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := meterProvider.Meter("github.com/petabytecl/godaemon/daemon")

	procs := procmgr.New(log, procmgr.Hooks{})
	d := daemon.New(cfg, procs, log, daemon.WithMeter(meter))

	alias := "default"
	addr := transport.PoolAddress(execPath, alias)
	log.Info("pool address resolved", "alias", alias, "address", addr, "recover", recoverMode)

	// Shutdown is driven by the daemon's own SIGINT/SIGTERM handling
	// (daemon/signal_unix.go), not by cancelling this context.
	return d.Run(context.Background())
}

func writeInstallScript(template string) error {
	switch template {
	case "systemd":
		fmt.Println("# systemd unit template — customize ExecStart before installing.")
		return nil
	default:
		return fmt.Errorf("unknown install template %q", template)
	}
}
