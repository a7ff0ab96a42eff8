// Package unit publishes the operator's view of the workload: its status,
// its version and the ports it exposes.
//
// Under Juju, [HookTools] calls the hook tools (status-set,
// application-version-set, open-port, state-get, state-set) available to a
// charm process. [Standalone] keeps the same information in memory for the
// long-running mode.
package unit
