package procwatch

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	w := New(nil, zerolog.Nop())

	assert.True(t, w.matches("chrome"))
	assert.True(t, w.matches("Chromium-Browser"))
	assert.True(t, w.matches("headless_shell"))
	assert.False(t, w.matches("bash"))
}

func TestCountBrowserProcesses_SeesChild(t *testing.T) {
	sleepPath, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep binary not available")
	}
	w := New(nil, zerolog.Nop()).WithNames("sleep")
	ctx := context.Background()

	before, err := w.CountBrowserProcesses(ctx)
	if err != nil {
		t.Skipf("process tree not readable here: %v", err)
	}

	cmd := exec.Command(sleepPath, "5")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	assert.Eventually(t, func() bool {
		n, err := w.CountBrowserProcesses(ctx)
		return err == nil && n == before+1
	}, 2*time.Second, 50*time.Millisecond)
}

func TestCycleFinished_ReportsCount(t *testing.T) {
	reported := -1
	w := New(func(n int) { reported = n }, zerolog.Nop()).WithNames("no-such-process-name")

	if _, err := w.CountBrowserProcesses(context.Background()); err != nil {
		t.Skipf("process tree not readable here: %v", err)
	}
	w.CycleFinished(models.RefreshReport{CycleID: "c1"})

	assert.Equal(t, 0, reported)
}

func TestUsage(t *testing.T) {
	u := New(nil, zerolog.Nop()).Usage(context.Background())

	assert.GreaterOrEqual(t, u.BrowserProcesses, 0)
	assert.GreaterOrEqual(t, u.SystemMemUsedPercent, 0.0)
}
