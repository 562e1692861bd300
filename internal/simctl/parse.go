package simctl

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/bytedance/sonic"
	"howett.net/plist"
)

// parseAppList decodes `simctl listapps` output, an OpenStep plist keyed by bundle id
func parseAppList(raw string) (map[string]types.AppRecord, error) {
	apps := make(map[string]types.AppRecord)
	if strings.TrimSpace(raw) == "" {
		return apps, nil
	}
	if _, err := plist.Unmarshal([]byte(raw), &apps); err != nil {
		return nil, fmt.Errorf("failed to parse app list: %w", err)
	}
	for id, app := range apps {
		if app.BundleID == "" {
			app.BundleID = id
			apps[id] = app
		}
	}
	return apps, nil
}

// parseAppInfo decodes `simctl appinfo` output
func parseAppInfo(raw string) (types.AppRecord, error) {
	var record types.AppRecord
	if _, err := plist.Unmarshal([]byte(raw), &record); err != nil {
		return types.AppRecord{}, fmt.Errorf("failed to parse app info: %w", err)
	}
	return record, nil
}

// parseOpenFiles decodes `lsof -Ftn` field output. Every line is one field
// tagged by its first character: p (pid), f (descriptor), t (type), n (name).
// A file starts at its f line; names are taken verbatim so paths may contain
// spaces.
func parseOpenFiles(raw string) []types.OpenFile {
	var (
		files   []types.OpenFile
		current *types.OpenFile
	)
	flush := func() {
		if current != nil && current.Path != "" {
			files = append(files, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		tag, value := line[0], line[1:]
		switch tag {
		case 'p':
			flush()
		case 'f':
			flush()
			current = &types.OpenFile{}
		case 't':
			if current != nil {
				current.Kind = strings.ToLower(value)
			}
		case 'n':
			if current != nil {
				current.Path = value
			}
		}
	}
	flush()
	return files
}

type deviceList struct {
	Devices map[string][]types.Device `json:"devices"`
}

// parseDevice finds udid in `simctl list devices -j` output. The "booted"
// alias resolves to the first booted device.
func parseDevice(raw []byte, udid string) (types.Device, error) {
	var list deviceList
	if err := sonic.Unmarshal(raw, &list); err != nil {
		return types.Device{}, fmt.Errorf("failed to parse device list: %w", err)
	}

	for runtime, devices := range list.Devices {
		for _, dev := range devices {
			if dev.UDID == udid || (udid == "booted" && dev.Booted()) {
				dev.Runtime = runtime
				return dev, nil
			}
		}
	}
	return types.Device{}, fmt.Errorf("device %s is not known to simctl", udid)
}

var runtimePattern = regexp.MustCompile(`\.(?:iOS|tvOS|watchOS|xrOS|visionOS)-(\d+)(?:-(\d+))?(?:-(\d+))?$`)

// RuntimeVersion extracts the OS version from a runtime identifier, e.g.
// com.apple.CoreSimulator.SimRuntime.iOS-17-2 gives "17.2"
func RuntimeVersion(runtime string) (string, error) {
	m := runtimePattern.FindStringSubmatch(runtime)
	if m == nil {
		return "", fmt.Errorf("cannot extract OS version from runtime '%s'", runtime)
	}
	version := m[1]
	for _, part := range m[2:] {
		if part != "" {
			version += "." + part
		}
	}
	return version, nil
}
