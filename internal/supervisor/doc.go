// Package supervisor talks to the process supervisor of the workload
// container.
//
// [Supervisor] is the narrow surface the operator needs: reachability, the
// current plan, adding a layer, replanning, and service state. [Pebble]
// implements it over the Pebble API socket that Juju mounts into the charm
// container. Calls made while Pebble is unreachable fail with an error
// wrapping [ErrUnavailable], which callers treat as transient.
package supervisor
