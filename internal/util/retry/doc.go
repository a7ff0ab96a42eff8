// Package retry provides bounded retry logic for transient failures.
//
// The [Do] function retries an operation with a configurable number of
// attempts and a [DelayFunc] policy such as [Linear]. Waiting goes
// through a k8s.io/utils/clock Clock so tests can replace it with a fake
// clock. It is used for Pebble calls while the workload container's
// supervisor is still starting.
package retry
