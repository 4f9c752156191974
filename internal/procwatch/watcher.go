package procwatch

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const checkTimeout = 5 * time.Second

// DefaultBrowserNames match the processes a browser session spawns.
var DefaultBrowserNames = []string{"chrome", "chromium", "headless_shell", "leakless"}

// Usage is a point-in-time view of this process tree and the host.
type Usage struct {
	BrowserProcesses     int     `json:"browser_processes"`
	SystemMemUsedPercent float64 `json:"system_mem_used_percent"`
}

// Watcher counts browser processes descending from this process. After each
// cycle a non-zero count means a session leaked.
type Watcher struct {
	pid    int32
	names  []string
	report func(int)
	logger zerolog.Logger
}

// New watches the current process. report, if set, receives the browser
// process count after every cycle.
func New(report func(int), logger zerolog.Logger) *Watcher {
	return &Watcher{
		pid:    int32(os.Getpid()),
		names:  DefaultBrowserNames,
		report: report,
		logger: logger.With().Str("component", "ProcWatch").Logger(),
	}
}

// WithNames overrides the process name patterns.
func (w *Watcher) WithNames(names ...string) *Watcher {
	w.names = names
	return w
}

// CountBrowserProcesses walks the process tree below this process and counts
// descendants whose name matches a browser pattern.
func (w *Watcher) CountBrowserProcesses(ctx context.Context) (int, error) {
	root, err := process.NewProcessWithContext(ctx, w.pid)
	if err != nil {
		return 0, err
	}
	return w.countDescendants(ctx, root)
}

func (w *Watcher) countDescendants(ctx context.Context, p *process.Process) (int, error) {
	children, err := p.ChildrenWithContext(ctx)
	if errors.Is(err, process.ErrorNoChildren) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, child := range children {
		if name, err := child.NameWithContext(ctx); err == nil && w.matches(name) {
			count++
		}
		n, err := w.countDescendants(ctx, child)
		if err != nil {
			// The child may have exited while walking.
			continue
		}
		count += n
	}
	return count, nil
}

func (w *Watcher) matches(name string) bool {
	name = strings.ToLower(name)
	for _, pattern := range w.names {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// Usage samples browser processes and system memory.
func (w *Watcher) Usage(ctx context.Context) Usage {
	var u Usage
	if n, err := w.CountBrowserProcesses(ctx); err == nil {
		u.BrowserProcesses = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		u.SystemMemUsedPercent = vm.UsedPercent
	}
	return u
}

func (w *Watcher) LookupFinished(models.LookupResult) {}

// CycleFinished checks that the cycle left no browser behind.
func (w *Watcher) CycleFinished(report models.RefreshReport) {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	n, err := w.CountBrowserProcesses(ctx)
	if err != nil {
		w.logger.Debug().Err(err).Msg("Could not count browser processes")
		return
	}
	if w.report != nil {
		w.report(n)
	}
	if n > 0 {
		w.logger.Warn().
			Str("cycle_id", report.CycleID).
			Int("browser_processes", n).
			Msg("Browser processes still alive after refresh cycle")
	}
}
