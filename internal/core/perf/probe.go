package perf

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// ResourceProbe supplies the resource readings attached to performance
// samples. The replication engine can install its own probe; the default
// reads the Go heap and process rusage.
type ResourceProbe interface {
	// MemoryMB is the current memory footprint in megabytes.
	MemoryMB() float64
	// CPUTime is the cumulative process CPU time (user + system).
	CPUTime() time.Duration
}

type runtimeProbe struct{}

func (runtimeProbe) MemoryMB() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / (1 << 20)
}

func (runtimeProbe) CPUTime() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}
