package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
)

func newSafariCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safari",
		Short: "Control Mobile Safari",
	}

	open := &cobra.Command{
		Use:   "open <url>",
		Short: "Open a URL and wait for Safari to start",
		Args:  cobra.ExactArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.OpenURL(cmd.Context(), args[0])
		}),
	}

	var dropPrefs bool
	scrub := &cobra.Command{
		Use:   "scrub",
		Short: "Delete Safari caches, cookies and local storage",
		Args:  cobra.NoArgs,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.ScrubSafari(cmd.Context(), !dropPrefs)
		}),
	}
	scrub.Flags().BoolVar(&dropPrefs, "drop-prefs", false, "also delete Safari preference files")

	settings := &cobra.Command{
		Use:   "settings <file>",
		Short: "Apply Safari preferences from a yaml, toml, json or plist file",
		Args:  cobra.ExactArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			updates, err := loadUpdates(args[0])
			if err != nil {
				return err
			}
			changed, err := dev.UpdateSafariSettings(cmd.Context(), updates)
			if err != nil {
				return err
			}
			return printBool(cmd.OutOrStdout(), changed)
		}),
	}

	socket := &cobra.Command{
		Use:   "socket",
		Short: "Print the Web Inspector socket path",
		Args:  cobra.NoArgs,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			path, err := dev.GetWebInspectorSocket(cmd.Context())
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("no unique web inspector socket found")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		}),
	}

	cmd.AddCommand(open, scrub, settings, socket)
	return cmd
}
