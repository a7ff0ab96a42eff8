// Package status models the unit status shown to the operator's users and
// derives it from the workload container's state.
package status

import "fmt"

// Kind is the status category understood by Juju.
type Kind string

const (
	KindMaintenance Kind = "maintenance"
	KindWaiting     Kind = "waiting"
	KindActive      Kind = "active"
	KindBlocked     Kind = "blocked"
)

// Messages used across the lifecycle.
const (
	MsgCreatingResources      = "creating kubernetes resources"
	MsgResourceCreationFailed = "kubernetes resource creation failed"
	MsgAssemblingPodSpec      = "assembling pod spec"
	MsgWaitingForPebble       = "waiting for Pebble in workload container"
	MsgWaitingForService      = "waiting for Argo Rollouts service"
	MsgLayerFailed            = "workload process configuration failed"
	MsgStopping               = "stopping"
	MsgDeletingResources      = "deleting kubernetes resources"
)

// Status is a single unit status. The latest one set wins.
type Status struct {
	Kind    Kind
	Message string
}

func Maintenance(message string) Status { return Status{Kind: KindMaintenance, Message: message} }
func Waiting(message string) Status     { return Status{Kind: KindWaiting, Message: message} }
func Blocked(message string) Status     { return Status{Kind: KindBlocked, Message: message} }
func Active() Status                    { return Status{Kind: KindActive} }

func (s Status) String() string {
	if s.Message == "" {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s: %s", s.Kind, s.Message)
}

// IsActive reports whether s is Active.
func (s Status) IsActive() bool {
	return s.Kind == KindActive
}

// Derive maps container reachability and service state to a status.
// Anything short of a reachable container with a running service is Waiting.
func Derive(reachable, running bool) Status {
	if reachable && running {
		return Active()
	}
	return Waiting(MsgWaitingForService)
}
