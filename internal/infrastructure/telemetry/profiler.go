package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/grafana/pyroscope-go"
	"github.com/retail/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const mutexProfileFraction = 5

// Profiler pushes CPU, heap, goroutine and mutex profiles to Pyroscope
type Profiler struct {
	p      *pyroscope.Profiler
	logger *zap.Logger

	mu      sync.Mutex
	stopped bool
}

// NewProfiler starts continuous profiling. A disabled config yields a
// profiler whose Stop is a no-op.
func NewProfiler(cfg config.ProfilingConfig, appName, env string, logger *zap.Logger) (*Profiler, error) {
	prof := &Profiler{logger: logger}
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return prof, nil
	}
	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}
	if appName == "" {
		return nil, fmt.Errorf("application name is required when profiling is enabled")
	}

	runtime.SetMutexProfileFraction(mutexProfileFraction)

	tags := map[string]string{"env": env}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   appName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            pyroscopeLogger{logger.Sugar()},
		Tags:              tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}
	prof.p = p

	logger.Info("Continuous profiling enabled",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application", appName))
	return prof, nil
}

// Enabled reports whether profiles are being pushed
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.p != nil && !p.stopped
}

// Stop flushes the last profiles; calling it twice is harmless
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.p == nil || p.stopped {
		return nil
	}
	p.stopped = true
	runtime.SetMutexProfileFraction(0)
	if err := p.p.Stop(); err != nil {
		return fmt.Errorf("stop pyroscope profiler: %w", err)
	}
	return nil
}

type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

// Profiling label keys
const (
	LabelRoute     = "route"
	LabelMethod    = "method"
	LabelOperation = "operation"
	LabelStage     = "stage"
)

// maxLabelValueLength caps label values so one request cannot bloat the profile index
const maxLabelValueLength = 128

// unboundedLabels are refused as profiling labels; every distinct value
// would create a new series
var unboundedLabels = map[string]bool{
	"sale_id":        true,
	"product_id":     true,
	"receipt_number": true,
	"request_id":     true,
	"user_id":        true,
	"trace_id":       true,
	"span_id":        true,
}

// WithProfilingLabels runs fn with the labels attached to its CPU samples.
// Unbounded and empty labels are dropped; with nothing left fn runs as is.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	kv := ProfilingLabelPairs(labels)
	if len(kv) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(kv...), fn)
}

// ProfilingLabelPairs sanitizes labels into sorted key/value pairs
func ProfilingLabelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		k = normalizeLabelKey(k)
		if k == "" || v == "" || unboundedLabels[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	normalized := make(map[string]string, len(labels))
	for k, v := range labels {
		normalized[normalizeLabelKey(k)] = v
	}

	kv := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := normalized[k]
		if len(v) > maxLabelValueLength {
			v = v[:maxLabelValueLength]
		}
		kv = append(kv, k, v)
	}
	return kv
}

// normalizeLabelKey lowercases and maps anything but [a-z0-9_] to underscore
func normalizeLabelKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, key)
}
