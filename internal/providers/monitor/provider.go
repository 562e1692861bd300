package monitor

import (
	"bufio"
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
)

// Spawner runs a command inside the device
type Spawner interface {
	Spawn(ctx context.Context, args ...string) (string, error)
}

// Provider produces the live process list of a device
type Provider struct {
	spawner Spawner
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewProvider creates a process monitor. Spawns go through a circuit breaker
// so a device that stopped answering is not hit on every poll tick.
func NewProvider(spawner Spawner, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("monitor")

	breaker := resilience.New("ps", resilience.Settings{
		MaxTrials: 1,
		Cooldown:  2 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Debug("process list breaker changed state",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Provider{
		spawner: spawner,
		breaker: breaker,
		logger:  logger,
	}
}

// PS lists the services currently running inside the device
func (p *Provider) PS(ctx context.Context) ([]types.ProcessEntry, error) {
	return resilience.Call(ctx, p.breaker, func(ctx context.Context) ([]types.ProcessEntry, error) {
		out, err := p.spawner.Spawn(ctx, "launchctl", "print", "system")
		if err != nil {
			return nil, err
		}
		return p.parse(out), nil
	})
}

// Contains reports whether procs has an entry named exactly name
func Contains(procs []types.ProcessEntry, name string) bool {
	for _, proc := range procs {
		if proc.Name == name {
			return true
		}
	}
	return false
}

var (
	servicesBlock = regexp.MustCompile(`(?m)^\s*services\s*=\s*\{([^}]+)`)
	serviceLine   = regexp.MustCompile(`^\s*(\d+)\s+[\d-]+\s+([\w\-.]+:)?([\w\-.]+)`)
)

// parse extracts running services from `launchctl print system`. Lines look
// like "12345  0  UIKitApplication:com.apple.mobilesafari[1b2c][rb-legacy]";
// PID 0 marks a loaded but idle service.
func (p *Provider) parse(out string) []types.ProcessEntry {
	block := servicesBlock.FindStringSubmatch(out)
	if block == nil {
		p.logger.Debug("no services section in launchctl output")
		return []types.ProcessEntry{}
	}

	procs := []types.ProcessEntry{}
	scanner := bufio.NewScanner(strings.NewReader(block[1]))
	for scanner.Scan() {
		m := serviceLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		pid, err := strconv.Atoi(m[1])
		if err != nil || pid == 0 {
			continue
		}
		procs = append(procs, types.ProcessEntry{
			PID:   pid,
			Group: strings.TrimSuffix(m[2], ":"),
			Name:  m[3],
		})
	}
	return procs
}
