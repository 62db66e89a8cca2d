// Package workers sizes worker pools for containerized deployments.
//
// runtime.NumCPU reports the host's CPU count even under cgroup limits;
// GOMAXPROCS (Go 1.19+) reflects the actual limit. The helpers here use
// GOMAXPROCS so the number of queue poller loops tracks the CPUs the
// container was actually given. The POLLER_WORKERS environment variable
// overrides the calculation.
package workers
