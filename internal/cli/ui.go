package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
)

func newUICommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Read or change accessibility appearance (booted devices only)",
	}

	contrast := &cobra.Command{
		Use:   "contrast [enabled|disabled]",
		Short: "Get or set increase contrast",
		Args:  cobra.MaximumNArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			if len(args) == 1 {
				return dev.SetIncreaseContrast(cmd.Context(), args[0])
			}
			value, err := dev.GetIncreaseContrast(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		}),
	}

	contentSize := &cobra.Command{
		Use:   "content-size [category]",
		Short: "Get or set the preferred content size category",
		Args:  cobra.MaximumNArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			if len(args) == 1 {
				return dev.SetContentSize(cmd.Context(), args[0])
			}
			value, err := dev.GetContentSize(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		}),
	}

	cmd.AddCommand(contrast, contentSize)
	return cmd
}
