package cli

import (
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/shared/utils"
)

func newAppsCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Manage applications on the simulator",
	}

	install := &cobra.Command{
		Use:   "install <path.app>",
		Short: "Install an application package",
		Args:  cobra.ExactArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.InstallApp(cmd.Context(), args[0])
		}),
	}

	remove := &cobra.Command{
		Use:     "remove <bundle-id>",
		Aliases: []string{"uninstall"},
		Short:   "Uninstall an application",
		Args:    bundleIDArg,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.RemoveApp(cmd.Context(), args[0])
		}),
	}

	installed := &cobra.Command{
		Use:   "installed <bundle-id>",
		Short: "Print whether an application is installed",
		Args:  bundleIDArg,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return printBool(cmd.OutOrStdout(), dev.IsAppInstalled(cmd.Context(), args[0]))
		}),
	}

	byName := &cobra.Command{
		Use:   "by-name <bundle-name>",
		Short: "List bundle ids of user apps with the given CFBundleName",
		Args:  cobra.ExactArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			ids, err := dev.GetUserInstalledBundleIDsByBundleName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ids)
		}),
	}

	var launchOpts types.LaunchOptions
	launch := &cobra.Command{
		Use:   "launch <bundle-id>",
		Short: "Launch an application",
		Args:  bundleIDArg,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.LaunchApp(cmd.Context(), args[0], launchOpts)
		}),
	}
	launch.Flags().BoolVar(&launchOpts.Wait, "wait", false, "wait until the app process is running")
	launch.Flags().DurationVar(&launchOpts.Timeout, "timeout", 0, "how long to wait (default $SIMDRIVER_LAUNCH_TIMEOUT)")

	terminate := &cobra.Command{
		Use:   "terminate <bundle-id>",
		Short: "Terminate an application",
		Args:  bundleIDArg,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.TerminateApp(cmd.Context(), args[0])
		}),
	}

	running := &cobra.Command{
		Use:   "running <bundle-id>",
		Short: "Print whether an application process is running",
		Args:  bundleIDArg,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			ok, err := dev.IsAppRunning(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printBool(cmd.OutOrStdout(), ok)
		}),
	}

	scrub := &cobra.Command{
		Use:   "scrub <bundle-id>",
		Short: "Remove an application together with its data",
		Args:  bundleIDArg,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.ScrubApp(cmd.Context(), args[0])
		}),
	}

	cmd.AddCommand(install, remove, installed, byName, launch, terminate, running, scrub)
	return cmd
}

// bundleIDArg requires exactly one well-formed bundle identifier
func bundleIDArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	return utils.ValidateBundleID(args[0])
}
