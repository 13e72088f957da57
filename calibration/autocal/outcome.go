package autocal

// Outcome classifies how one plan or execute attempt finished. Failures are
// states of the workflow, not errors; callers branch on them to decide
// whether to retry, skip, or stop the cycle.
type Outcome int

const (
	Success Outcome = iota
	FailureNoJointState
	FailureInvalidJointState
	FailureNoSceneMonitor
	FailureNoMoveGroup
	FailureWrongMoveGroup
	FailurePlanFailed
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case FailureNoJointState:
		return "FAILURE_NO_JOINT_STATE"
	case FailureInvalidJointState:
		return "FAILURE_INVALID_JOINT_STATE"
	case FailureNoSceneMonitor:
		return "FAILURE_NO_SCENE_MONITOR"
	case FailureNoMoveGroup:
		return "FAILURE_NO_MOVE_GROUP"
	case FailureWrongMoveGroup:
		return "FAILURE_WRONG_MOVE_GROUP"
	case FailurePlanFailed:
		return "FAILURE_PLAN_FAILED"
	}
	return "UNKNOWN"
}

// Message is the user-visible explanation of an outcome.
func (o Outcome) Message() string {
	switch o {
	case Success:
		return "success"
	case FailureNoJointState:
		return "could not compute plan: no more prerecorded joint states to execute"
	case FailureInvalidJointState:
		return "could not compute plan: invalid joint states (names wrong or missing)"
	case FailureNoSceneMonitor:
		return "could not compute plan: no scene monitor"
	case FailureNoMoveGroup:
		return "could not compute plan: missing move group"
	case FailureWrongMoveGroup:
		return "could not compute plan: joint names for recorded state do not match names from current planning group"
	case FailurePlanFailed:
		return "could not compute plan: planning failed"
	}
	return "unknown outcome"
}
