// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Runtime-level debug probe integrations.

package control

import "runtime"

// RegisterRuntimeProbes sets process-level debug metrics.
func RegisterRuntimeProbes(dp *DebugProbes) {
	dp.RegisterProbe("runtime.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("runtime.goroutines", func() any {
		return runtime.NumGoroutine()
	})
}
