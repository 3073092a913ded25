// Package rslimiter holds back new subprocess launches while the host is
// short on memory or CPU.
package rslimiter

import (
	"context"
	"sync"
	"time"

	"github.com/monsterinc/jshunter/internal/config"
	"github.com/rs/zerolog"
)

// ResourceLimiter gates work on system memory and CPU usage
type ResourceLimiter struct {
	config config.ResourceLimiterConfig
	logger zerolog.Logger
	sample func() ResourceUsage

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex

	// cached sample shared by concurrent waiters
	last     ResourceUsage
	lastTime time.Time
}

// NewResourceLimiter creates a new resource limiter
func NewResourceLimiter(cfg config.ResourceLimiterConfig, logger zerolog.Logger) *ResourceLimiter {
	if cfg.PollIntervalMillis <= 0 {
		cfg.PollIntervalMillis = config.DefaultPollIntervalMillis
	}
	if cfg.CheckIntervalSecs <= 0 {
		cfg.CheckIntervalSecs = config.DefaultCheckIntervalSecs
	}
	if cfg.SystemMemThreshold == 0 {
		cfg.SystemMemThreshold = config.DefaultSystemMemThreshold
	}
	if cfg.CPUThreshold == 0 {
		cfg.CPUThreshold = config.DefaultCPUThreshold
	}

	return &ResourceLimiter{
		config: cfg,
		logger: logger.With().Str("component", "ResourceLimiter").Logger(),
		sample: GetResourceUsage,
	}
}

func (rl *ResourceLimiter) pollInterval() time.Duration {
	return time.Duration(rl.config.PollIntervalMillis) * time.Millisecond
}

// Start begins periodic resource usage logging. It is a no-op when the
// limiter is disabled or already running.
func (rl *ResourceLimiter) Start() {
	if !rl.config.Enabled {
		return
	}
	rl.mu.Lock()
	if rl.isRunning {
		rl.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	rl.cancel = cancel
	rl.isRunning = true
	rl.mu.Unlock()

	rl.wg.Add(1)
	go rl.monitorResources(ctx)

	rl.logger.Info().
		Float64("system_mem_threshold", rl.config.SystemMemThreshold).
		Float64("cpu_threshold", rl.config.CPUThreshold).
		Int("check_interval_secs", rl.config.CheckIntervalSecs).
		Msg("Resource limiter started")
}

// Stop stops the resource monitor
func (rl *ResourceLimiter) Stop() {
	rl.mu.Lock()
	if !rl.isRunning {
		rl.mu.Unlock()
		return
	}
	rl.isRunning = false
	cancel := rl.cancel
	rl.mu.Unlock()

	cancel()
	rl.wg.Wait()
	rl.logger.Debug().Msg("Resource limiter stopped")
}

// WaitForCapacity blocks until memory and CPU usage are under their
// thresholds or ctx ends. A disabled or nil limiter never blocks.
func (rl *ResourceLimiter) WaitForCapacity(ctx context.Context) error {
	if rl == nil || !rl.config.Enabled {
		return nil
	}

	warned := false
	for {
		usage := rl.currentUsage()
		if reason := rl.overloaded(usage); reason == "" {
			if warned {
				rl.logger.Info().Msg("Resource usage back under threshold, resuming")
			}
			return nil
		} else if !warned {
			rl.logger.Warn().
				Str("reason", reason).
				Float64("system_mem_percent", usage.SystemMemUsedPercent).
				Float64("cpu_percent", usage.CPUUsagePercent).
				Msg("Resource usage above threshold, holding new work")
			warned = true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.pollInterval()):
		}
	}
}

// currentUsage returns a sample no older than one poll interval
func (rl *ResourceLimiter) currentUsage() ResourceUsage {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if time.Since(rl.lastTime) >= rl.pollInterval() {
		rl.last = rl.sample()
		rl.lastTime = time.Now()
	}
	return rl.last
}

func (rl *ResourceLimiter) overloaded(usage ResourceUsage) string {
	if usage.SystemMemUsedPercent/100.0 > rl.config.SystemMemThreshold {
		return "system_memory"
	}
	if usage.CPUUsagePercent/100.0 > rl.config.CPUThreshold {
		return "cpu"
	}
	return ""
}

func (rl *ResourceLimiter) monitorResources(ctx context.Context) {
	defer rl.wg.Done()

	ticker := time.NewTicker(time.Duration(rl.config.CheckIntervalSecs) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			usage := rl.currentUsage()
			rl.logger.Debug().
				Int64("alloc_mb", usage.AllocMB).
				Int("goroutines", usage.Goroutines).
				Int64("gc_count", usage.GCCount).
				Int64("system_mem_used_mb", usage.SystemMemUsedMB).
				Int64("system_mem_total_mb", usage.SystemMemTotalMB).
				Float64("system_mem_percent", usage.SystemMemUsedPercent).
				Float64("cpu_percent", usage.CPUUsagePercent).
				Msg("Resource usage")
		}
	}
}
