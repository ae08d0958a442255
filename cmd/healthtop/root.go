package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/prabalesh/healthtop/internal/collector"
	"github.com/prabalesh/healthtop/internal/config"
	"github.com/prabalesh/healthtop/internal/logger"
	"github.com/prabalesh/healthtop/internal/monitor"
	"github.com/prabalesh/healthtop/internal/ui"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "healthtop",
		Short: "Device health dashboard",
		Long: `healthtop samples battery, CPU, memory, storage, thermal state and uptime
every couple of seconds and shows a health score with recommendations.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDashboard,
	}
	config.RegisterFlags(cmd.PersistentFlags())
	cmd.AddCommand(newSnapshotCmd())
	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	// stdout belongs to the terminal UI, so logs only go to a file.
	closeLog, err := initLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mon := newMonitor(cfg)
	updates, unsubscribe := mon.Store().Subscribe()
	defer unsubscribe()

	mon.Start(ctx)
	defer mon.Stop()

	app := ui.NewApp(mon.Store().Load(), updates, cancel)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func newMonitor(cfg *config.Config) *monitor.Monitor {
	var thermal collector.ThermalProbe
	switch cfg.ThermalSource {
	case config.ThermalDumpsys:
		thermal = collector.NewDumpsysThermalProbe()
	default:
		thermal = collector.NewSysfsThermalProbe()
	}

	var battery collector.BatterySource
	switch cfg.BatterySource {
	case config.BatteryDumpsys:
		battery = collector.NewDumpsysBatterySource(cfg.BatteryPoll)
	case config.BatterySysfs:
		battery = collector.NewSysfsBatterySource(cfg.BatteryPoll)
	}

	sampler := collector.NewStatsCollector(cfg.StoragePath, collector.NewCPUEstimator(cfg.CPUWindow), thermal)
	return monitor.New(sampler, battery, cfg.Interval)
}

// initLogger sends logs to cfg.LogFile, or to fallback when no file is
// configured. A nil fallback discards them.
func initLogger(cfg *config.Config, fallback io.Writer) (func(), error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.LogFile == "" {
		logger.Init(level, fallback)
		return func() {}, nil
	}
	f, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	logger.Init(level, f)
	return func() { _ = f.Close() }, nil
}

// sampleOnce runs a single tick with the battery read synchronously, for
// commands that exit right after printing.
func sampleOnce(ctx context.Context, cfg *config.Config) *monitor.Monitor {
	mon := newMonitor(cfg)
	switch cfg.BatterySource {
	case config.BatterySysfs:
		if in, err := collector.NewSysfsBatterySource(cfg.BatteryPoll).Read(); err == nil {
			mon.OnBatteryChanged(in)
		}
	case config.BatteryDumpsys:
		if in, err := collector.NewDumpsysBatterySource(cfg.BatteryPoll).Read(ctx); err == nil {
			mon.OnBatteryChanged(in)
		}
	}
	mon.Tick(ctx)
	return mon
}
