package core

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// TraceLevel represents different levels of tracing
type TraceLevel int

const (
	TraceLevelOff TraceLevel = iota
	TraceLevelError
	TraceLevelWarn
	TraceLevelInfo
	TraceLevelDebug
	TraceLevelVerbose
)

// String returns the string representation of TraceLevel
func (tl TraceLevel) String() string {
	switch tl {
	case TraceLevelOff:
		return "OFF"
	case TraceLevelError:
		return "ERROR"
	case TraceLevelWarn:
		return "WARN"
	case TraceLevelInfo:
		return "INFO"
	case TraceLevelDebug:
		return "DEBUG"
	case TraceLevelVerbose:
		return "VERBOSE"
	default:
		return "UNKNOWN"
	}
}

// TraceComponent represents different components that can be traced
type TraceComponent string

const (
	TraceComponentParser    TraceComponent = "PARSER"
	TraceComponentPlanner   TraceComponent = "PLANNER"
	TraceComponentFragment  TraceComponent = "FRAGMENT"
	TraceComponentExchange  TraceComponent = "EXCHANGE"
	TraceComponentCatalog   TraceComponent = "CATALOG"
	TraceComponentTransport TraceComponent = "TRANSPORT"
)

var allTraceComponents = []TraceComponent{
	TraceComponentParser, TraceComponentPlanner, TraceComponentFragment,
	TraceComponentExchange, TraceComponentCatalog, TraceComponentTransport,
}

// Tracer provides leveled, per-component tracing for planning operations
type Tracer struct {
	level             TraceLevel
	enabledComponents map[TraceComponent]bool
	mutex             sync.RWMutex
}

// Global tracer instance
var globalTracer *Tracer
var tracerOnce sync.Once

// GetTracer returns the global tracer instance
func GetTracer() *Tracer {
	tracerOnce.Do(func() {
		globalTracer = NewTracer()
	})
	return globalTracer
}

// NewTracer creates a new tracer with configuration from environment variables
func NewTracer() *Tracer {
	tracer := &Tracer{
		level:             TraceLevelOff,
		enabledComponents: make(map[TraceComponent]bool),
	}
	tracer.configureFromEnv()
	return tracer
}

// configureFromEnv configures the tracer from STAGEDB_TRACE_LEVEL and
// STAGEDB_TRACE_COMPONENTS (comma-separated component names, or ALL)
func (t *Tracer) configureFromEnv() {
	if levelStr := os.Getenv("STAGEDB_TRACE_LEVEL"); levelStr != "" {
		switch strings.ToUpper(levelStr) {
		case "OFF":
			t.level = TraceLevelOff
		case "ERROR":
			t.level = TraceLevelError
		case "WARN":
			t.level = TraceLevelWarn
		case "INFO":
			t.level = TraceLevelInfo
		case "DEBUG":
			t.level = TraceLevelDebug
		case "VERBOSE":
			t.level = TraceLevelVerbose
		}
	}

	if componentsStr := os.Getenv("STAGEDB_TRACE_COMPONENTS"); componentsStr != "" {
		if strings.ToUpper(componentsStr) == "ALL" {
			for _, comp := range allTraceComponents {
				t.enabledComponents[comp] = true
			}
		} else {
			for _, comp := range strings.Split(componentsStr, ",") {
				t.enabledComponents[TraceComponent(strings.TrimSpace(strings.ToUpper(comp)))] = true
			}
		}
	}
}

// SetLevel sets the trace level
func (t *Tracer) SetLevel(level TraceLevel) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.level = level
}

// EnableComponent enables tracing for a specific component
func (t *Tracer) EnableComponent(component TraceComponent) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.enabledComponents[component] = true
}

// DisableComponent disables tracing for a specific component
func (t *Tracer) DisableComponent(component TraceComponent) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.enabledComponents[component] = false
}

// IsEnabled checks if tracing is enabled for a given level and component
func (t *Tracer) IsEnabled(level TraceLevel, component TraceComponent) bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.level >= level && t.enabledComponents[component]
}

func (t *Tracer) trace(level TraceLevel, component TraceComponent, message string, context map[string]interface{}) {
	if !t.IsEnabled(level, component) {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(os.Stderr, "[%s] %s/%s: %s", timestamp, level, component, message)
	if len(context) > 0 {
		fmt.Fprintf(os.Stderr, " |")
		for k, v := range context {
			fmt.Fprintf(os.Stderr, " %s=%v", k, v)
		}
	}
	fmt.Fprintln(os.Stderr)
}

// Error logs an error-level trace
func (t *Tracer) Error(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelError, component, message, firstContext(context))
}

// Warn logs a warning-level trace
func (t *Tracer) Warn(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelWarn, component, message, firstContext(context))
}

// Info logs an info-level trace
func (t *Tracer) Info(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelInfo, component, message, firstContext(context))
}

// Debug logs a debug-level trace
func (t *Tracer) Debug(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelDebug, component, message, firstContext(context))
}

// Verbose logs a verbose-level trace
func (t *Tracer) Verbose(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelVerbose, component, message, firstContext(context))
}

func firstContext(context []map[string]interface{}) map[string]interface{} {
	if len(context) > 0 {
		return context[0]
	}
	return nil
}

// TraceContext creates a context map for tracing
func TraceContext(pairs ...interface{}) map[string]interface{} {
	context := make(map[string]interface{})
	for i := 0; i < len(pairs)-1; i += 2 {
		if key, ok := pairs[i].(string); ok {
			context[key] = pairs[i+1]
		}
	}
	return context
}
