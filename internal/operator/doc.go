// Package operator sequences the lifecycle of the Argo Rollouts workload.
//
// Every event is a [Trigger]. [Plan] is the pure transition function from
// the current [State] and a trigger to the next state and the ordered
// [Action] list; [Controller.Handle] executes those actions against the
// cluster, the supervisor and the unit, and persists the resulting state.
// Under Juju each hook is a separate process and runs exactly one Handle
// call. In the long-running mode [Loop] serializes triggers through one
// goroutine that owns the controller.
//
// Stop only marks the unit Removing; the workload comes back on the next
// install, upgrade, ready or config-changed trigger. Remove deletes the
// resources and leaves the unit Removed for good.
package operator
