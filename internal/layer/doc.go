// Package layer keeps the workload's process layer in the supervisor plan.
//
// [Manager.Reconcile] compares the desired service against the plan and,
// only when it is missing or different, adds the layer with combine and
// replans. Supervisor unavailability is retried a bounded number of times
// with a linearly growing delay; running out of attempts is reported as
// [Unavailable] instead of an error. After a successful reconcile the
// workload version is published and the metrics port opened.
package layer
