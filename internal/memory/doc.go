// Package memory configures the Go runtime memory limit from container
// environment variables so that decoding very large images does not push
// the process past its cgroup limit.
package memory
