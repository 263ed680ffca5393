/*
Package workers sizes worker pools for containerized environments.

When running in a container, the number of usable CPUs may be limited by
cgroup constraints. Go 1.19+ sets GOMAXPROCS from the container CPU
limit automatically, while runtime.NumCPU() still reports the host CPU
count. The helpers here derive worker counts from GOMAXPROCS so pools
respect the actual limit.

Directory scanning is the only concurrent workload in the viewer; image
decoding deliberately runs on a single worker, so these helpers are not
used for it.

Usage:

	// stat()-heavy directory enumeration
	n := workers.ForIO(8)

The SCAN_WORKERS environment variable overrides the computed count.
*/
package workers
