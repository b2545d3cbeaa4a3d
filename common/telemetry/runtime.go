package telemetry

import (
	"os"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// runtimeInfoOpts describes a constant 1 gauge labelled with where the service runs
var runtimeInfoOpts = prometheus.GaugeOpts{
	Name: "civic_runtime_info",
	Help: "Always 1. Labels describe the Go runtime and container environment.",
}

// RecordRuntimeInfo publishes the runtime info gauge for service
func (t *Telemetry) RecordRuntimeInfo(service string) {
	if t == nil {
		return
	}
	container := detectContainer()
	t.runtimeInfo.WithLabelValues(service, runtime.Version(), runtime.GOOS, runtime.GOARCH, container).Set(1)
	t.log.Debug("runtime info recorded", "service", service, "container", container)
}

// detectContainer checks if running in a container
func detectContainer() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "docker"
	}

	if _, err := os.Stat("/var/run/secrets/kubernetes.io"); err == nil {
		return "kubernetes"
	}

	// Check cgroup for container indicators
	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		return containerFromCgroup(string(data))
	}

	return "none"
}

func containerFromCgroup(content string) string {
	switch {
	case strings.Contains(content, "kubepods"):
		return "kubernetes"
	case strings.Contains(content, "docker"):
		return "docker"
	case strings.Contains(content, "containerd"):
		return "containerd"
	}
	return "none"
}
