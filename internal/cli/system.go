package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
	"github.com/GriffinCanCode/simdriver/internal/infrastructure/monitoring"
)

type deviceSummary struct {
	UDID       string `json:"udid"`
	Name       string `json:"name"`
	State      string `json:"state"`
	Runtime    string `json:"runtime"`
	DataPath   string `json:"data_path,omitempty"`
	OSVersion  string `json:"os_version"`
	Generation string `json:"generation"`

	Metrics *monitoring.MetricsSnapshot `json:"metrics,omitempty"`
}

func newSystemCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Inspect the simulator system",
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Print the device entry and resolved OS generation",
		Args:  cobra.NoArgs,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			entry, err := dev.Info(cmd.Context())
			if err != nil {
				return err
			}
			summary := deviceSummary{
				UDID:       dev.UDID(),
				Name:       entry.Name,
				State:      string(entry.State),
				Runtime:    entry.Runtime,
				DataPath:   entry.DataPath,
				OSVersion:  dev.OSVersion().String(),
				Generation: dev.Generation().String(),
			}
			if s.metrics != nil {
				snapshot := s.metrics.Snapshot()
				summary.Metrics = &snapshot
			}
			return printJSON(cmd.OutOrStdout(), summary)
		}),
	}

	ps := &cobra.Command{
		Use:   "ps",
		Short: "List processes running in the simulator",
		Args:  cobra.NoArgs,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			procs, err := dev.PS(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), procs)
		}),
	}

	daemons := &cobra.Command{
		Use:   "daemons-root",
		Short: "Print the LaunchDaemons folder of the simulator system root",
		Args:  cobra.NoArgs,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			root, err := dev.GetLaunchDaemonsRoot(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), root)
			return err
		}),
	}

	apps := &cobra.Command{
		Use:   "apps",
		Short: "List bundle ids of apps shipped with the OS",
		Args:  cobra.NoArgs,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			ids, err := dev.SystemAppBundleIDs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ids)
		}),
	}

	cmd.AddCommand(info, ps, daemons, apps)
	return cmd
}
