package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"howett.net/plist"

	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
)

func newSettingsCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Patch preference files",
	}

	update := &cobra.Command{
		Use:   "update <plist> <updates-file>",
		Short: "Merge updates from a yaml, toml, json or plist file into a plist",
		Args:  cobra.ExactArgs(2),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			updates, err := loadUpdates(args[1])
			if err != nil {
				return err
			}
			changed, err := dev.UpdateSettings(cmd.Context(), args[0], updates)
			if err != nil {
				return err
			}
			return printBool(cmd.OutOrStdout(), changed)
		}),
	}

	read := &cobra.Command{
		Use:   "read <plist>",
		Short: "Print the content of a plist as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: s.withDevice(func(cmd *cobra.Command, dev simulator.Device, args []string) error {
			content, err := dev.ReadSettings(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), content)
		}),
	}

	cmd.AddCommand(update, read)
	return cmd
}

// jsonAPI keeps integers integral so they are stored as plist integers
var jsonAPI = sonic.Config{UseInt64: true}.Froze()

// loadUpdates decodes a settings mapping, picking the codec from the file
// extension
func loadUpdates(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	updates := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &updates)
	case ".toml":
		err = toml.Unmarshal(data, &updates)
	case ".json":
		err = jsonAPI.Unmarshal(data, &updates)
	case ".plist":
		_, err = plist.Unmarshal(data, &updates)
	default:
		return nil, fmt.Errorf("unsupported settings file type '%s'", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return updates, nil
}
