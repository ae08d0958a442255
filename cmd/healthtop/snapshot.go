package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/prabalesh/healthtop/internal/config"
	"github.com/prabalesh/healthtop/internal/models"
	"github.com/prabalesh/healthtop/internal/ui"
)

func newSnapshotCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Sample once and print the device health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			closeLog, err := initLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			snap := sampleOnce(cmd.Context(), cfg).Store().Load()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			writeText(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func writeJSON(w io.Writer, s models.DeviceHealthState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

func writeText(w io.Writer, s models.DeviceHealthState) {
	charging := "not charging"
	if s.IsCharging {
		charging = "charging"
	}
	fmt.Fprintf(w, "Battery:      %.0f%% (%s, %s)\n", s.BatteryPct, charging, s.BatteryHealth)
	fmt.Fprintf(w, "Temperature:  %.1f°C (%s)\n", s.BatteryTemp, s.ThermalState)
	fmt.Fprintf(w, "CPU:          %.1f%%\n", s.CPUUsage)
	fmt.Fprintf(w, "Memory:       %s / %s\n", ui.FormatBytes(s.UsedRAM), ui.FormatBytes(s.TotalRAM))
	fmt.Fprintf(w, "Storage:      %s / %s\n", ui.FormatBytes(s.UsedStorage), ui.FormatBytes(s.TotalStorage))
	fmt.Fprintf(w, "Uptime:       %s\n", s.Uptime)
	fmt.Fprintf(w, "Health score: %d/100\n", s.HealthScore)
	fmt.Fprintf(w, "Sampled:      %s\n", humanize.Time(s.SampledAt))
	fmt.Fprintln(w, "Recommendations:")
	for _, rec := range s.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}
