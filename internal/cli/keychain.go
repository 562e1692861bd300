package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
	"github.com/GriffinCanCode/simdriver/internal/shared/utils"
)

func newKeychainCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keychain",
		Short: "Reset or preserve simulator keychains",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Wipe the simulator keychains",
		Args:  cobra.NoArgs,
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			return dev.ClearKeychains(cmd.Context())
		}),
	}

	// Backups do not outlive the process, so backup and restore are offered
	// as one command wrapped around another.
	var exclude []string
	preserve := &cobra.Command{
		Use:   "preserve [--exclude pattern] -- <command> [args...]",
		Short: "Run a command and restore the keychains afterwards",
		Args:  cobra.MinimumNArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			if err := utils.ValidatePatterns(utils.NormalizePatterns(exclude...)); err != nil {
				return err
			}

			ctx := cmd.Context()
			ok, err := dev.BackupKeychains(ctx)
			if err != nil {
				return err
			}
			if !ok {
				s.logger.Warn("keychains were not backed up, they will not be restored")
			}

			child := exec.CommandContext(ctx, args[0], args[1:]...)
			child.Stdin = os.Stdin
			child.Stdout = cmd.OutOrStdout()
			child.Stderr = cmd.ErrOrStderr()
			runErr := child.Run()

			if ok {
				if _, err := dev.RestoreKeychains(ctx, exclude...); err != nil {
					return errors.Join(runErr, err)
				}
			}
			if runErr != nil {
				s.logger.Debug("wrapped command failed", zap.Strings("command", args), zap.Error(runErr))
				return fmt.Errorf("%s: %w", args[0], runErr)
			}
			return nil
		}),
	}
	preserve.Flags().StringSliceVar(&exclude, "exclude", nil, "patterns of keychain files not to restore, e.g. '*.db*'")

	cmd.AddCommand(clearCmd, preserve)
	return cmd
}
