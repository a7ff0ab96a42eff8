package operator

import (
	"fmt"
	"path"
	"strings"

	"github.com/imamik/argo-rollouts-operator/internal/status"
)

// State is the lifecycle state of the workload.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInstalling    State = "installing"
	StateWaiting       State = "waiting"
	StateActive        State = "active"
	StateBlocked       State = "blocked"
	StateRemoving      State = "removing"
	StateRemoved       State = "removed"
)

// ParseState parses a persisted state. The empty string is Uninitialized.
func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case "":
		return StateUninitialized, nil
	case StateUninitialized, StateInstalling, StateWaiting, StateActive, StateBlocked, StateRemoving, StateRemoved:
		return st, nil
	default:
		return "", fmt.Errorf("unknown lifecycle state %q", s)
	}
}

// Trigger is a lifecycle event.
type Trigger string

const (
	TriggerInstall      Trigger = "install"
	TriggerUpgrade      Trigger = "upgrade"
	TriggerReady        Trigger = "ready"
	TriggerConfigChange Trigger = "config-changed"
	TriggerUpdateStatus Trigger = "update-status"
	TriggerStop         Trigger = "stop"
	TriggerRemove       Trigger = "remove"
)

// TriggerFromHook maps a Juju dispatch path such as "hooks/install" or
// "hooks/argo-rollouts-pebble-ready" to a trigger.
func TriggerFromHook(dispatchPath string) (Trigger, bool) {
	hook := path.Base(dispatchPath)
	switch {
	case hook == "install":
		return TriggerInstall, true
	case hook == "upgrade-charm":
		return TriggerUpgrade, true
	case strings.HasSuffix(hook, "-pebble-ready"):
		return TriggerReady, true
	case hook == "config-changed":
		return TriggerConfigChange, true
	case hook == "update-status":
		return TriggerUpdateStatus, true
	case hook == "stop":
		return TriggerStop, true
	case hook == "remove":
		return TriggerRemove, true
	default:
		return "", false
	}
}

// ActionKind is one step of a transition.
type ActionKind int

const (
	ActionSetStatus ActionKind = iota
	ActionApplyResources
	ActionReconcileLayer
	ActionEvaluateStatus
	ActionRefreshVersion
	ActionDeleteResources
)

func (k ActionKind) String() string {
	switch k {
	case ActionSetStatus:
		return "SetStatus"
	case ActionApplyResources:
		return "ApplyResources"
	case ActionReconcileLayer:
		return "ReconcileLayer"
	case ActionEvaluateStatus:
		return "EvaluateStatus"
	case ActionRefreshVersion:
		return "RefreshVersion"
	case ActionDeleteResources:
		return "DeleteResources"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is one step. Status is only set for ActionSetStatus.
type Action struct {
	Kind   ActionKind
	Status status.Status
}

func setStatus(s status.Status) Action { return Action{Kind: ActionSetStatus, Status: s} }
func do(kind ActionKind) Action        { return Action{Kind: kind} }

// installPass renders and applies resources, then configures the process.
func installPass() []Action {
	return []Action{
		setStatus(status.Maintenance(status.MsgCreatingResources)),
		do(ActionApplyResources),
		setStatus(status.Maintenance(status.MsgAssemblingPodSpec)),
		do(ActionReconcileLayer),
		do(ActionEvaluateStatus),
	}
}

// layerPass configures the process on already installed resources.
func layerPass() []Action {
	return []Action{
		setStatus(status.Maintenance(status.MsgAssemblingPodSpec)),
		do(ActionReconcileLayer),
		do(ActionEvaluateStatus),
	}
}

func removePass() []Action {
	return []Action{
		setStatus(status.Maintenance(status.MsgDeletingResources)),
		do(ActionDeleteResources),
	}
}

// installed reports whether resources were applied successfully before.
func installed(s State) bool {
	return s == StateWaiting || s == StateActive
}

// Plan returns the state entered on trigger and the actions to run.
// The final state of a pass depends on the action results and is decided by
// the Controller.
//
// Removing follows stop, which also fires when the pod is replaced, so any
// trigger that brings the workload back re-enters the install pass. Removed
// is terminal.
func Plan(current State, trigger Trigger) (State, []Action) {
	if current == StateRemoved {
		return StateRemoved, nil
	}

	switch trigger {
	case TriggerInstall, TriggerUpgrade:
		return StateInstalling, installPass()

	case TriggerReady, TriggerConfigChange:
		if !installed(current) {
			return StateInstalling, installPass()
		}
		return current, layerPass()

	case TriggerUpdateStatus:
		switch current {
		case StateActive:
			return current, []Action{do(ActionEvaluateStatus), do(ActionRefreshVersion)}
		case StateWaiting:
			return current, []Action{do(ActionReconcileLayer), do(ActionEvaluateStatus)}
		case StateRemoving:
			return current, nil
		default:
			return StateInstalling, installPass()
		}

	case TriggerStop:
		return StateRemoving, []Action{setStatus(status.Maintenance(status.MsgStopping))}

	case TriggerRemove:
		return StateRemoved, removePass()

	default:
		return current, nil
	}
}
