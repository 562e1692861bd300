package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/GriffinCanCode/simdriver/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const launchctlOutput = `system = {
	type = system
	handle = 0

	services = {
		       0      -     com.apple.idle
		   51234      0     UIKitApplication:com.apple.mobilesafari[1b2c][rb-legacy]
		     412      0     com.apple.backboardd
	}

	unmanaged processes = {
	}
}`

type fakeSpawner struct {
	out   string
	err   error
	calls int
}

func (f *fakeSpawner) Spawn(ctx context.Context, args ...string) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestPS(t *testing.T) {
	p := NewProvider(&fakeSpawner{out: launchctlOutput}, nil)

	procs, err := p.PS(context.Background())
	require.NoError(t, err)
	require.Len(t, procs, 2)

	assert.Equal(t, 51234, procs[0].PID)
	assert.Equal(t, "UIKitApplication", procs[0].Group)
	assert.Equal(t, "com.apple.mobilesafari", procs[0].Name)
	assert.Equal(t, "", procs[1].Group)
	assert.Equal(t, "com.apple.backboardd", procs[1].Name)
}

func TestPSWithoutServices(t *testing.T) {
	p := NewProvider(&fakeSpawner{out: "system = {\n}"}, nil)

	procs, err := p.PS(context.Background())
	require.NoError(t, err)
	assert.Empty(t, procs)
}

func TestContainsExactMatch(t *testing.T) {
	p := NewProvider(&fakeSpawner{out: launchctlOutput}, nil)

	procs, err := p.PS(context.Background())
	require.NoError(t, err)

	assert.True(t, Contains(procs, "com.apple.mobilesafari"))
	assert.False(t, Contains(procs, "com.apple.mobile"))
	assert.False(t, Contains(procs, "com.apple.idle"))
	assert.False(t, Contains(nil, "com.apple.mobilesafari"))
}

func TestPSBreakerOpensOnRepeatedFailures(t *testing.T) {
	spawner := &fakeSpawner{err: errors.New("device not booted")}
	p := NewProvider(spawner, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := p.PS(ctx)
		assert.Error(t, err)
	}

	_, err := p.PS(ctx)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 3, spawner.calls)
}
