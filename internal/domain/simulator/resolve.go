package simulator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/simctl"
)

var (
	gen17Constraint = mustConstraint(">= 17")
	gen16Constraint = mustConstraint(">= 16, < 17")
)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(fmt.Sprintf("invalid generation constraint %q: %v", c, err))
	}
	return constraint
}

// GenerationOf maps a device OS version to its generation
func GenerationOf(v *semver.Version) Generation {
	switch {
	case gen17Constraint.Check(v):
		return Gen17
	case gen16Constraint.Check(v):
		return Gen16
	default:
		return Legacy
	}
}

// ParseOSVersion parses versions such as "17", "17.2" or "16.4.1"
func ParseOSVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return nil, fmt.Errorf("invalid OS version '%s': %w", version, err)
	}
	return v, nil
}

// resolveVersion picks the OS version from the override when given, else
// from the runtime the device belongs to. The device entry is read whenever
// it is needed to resolve the version or the "booted" alias.
func resolveVersion(ctx context.Context, tool Tool, udid, override string) (*semver.Version, types.Device, error) {
	var device types.Device
	if override == "" || udid == "booted" {
		info, err := tool.DeviceInfo(ctx)
		if err != nil {
			return nil, types.Device{}, err
		}
		device = info
	}

	if override != "" {
		v, err := ParseOSVersion(override)
		return v, device, err
	}

	raw, err := simctl.RuntimeVersion(device.Runtime)
	if err != nil {
		return nil, device, err
	}
	v, err := ParseOSVersion(raw)
	return v, device, err
}
