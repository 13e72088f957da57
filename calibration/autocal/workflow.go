package autocal

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/referenceframe"
	goutils "go.viam.com/utils"

	"github.com/viam-labs/handeye/calibration"
	"github.com/viam-labs/handeye/calibration/calibfile"
	"github.com/viam-labs/handeye/calibration/handeye"
)

var (
	// ErrPlanInFlight is returned by BeginPlan while a previous plan has not
	// been collected with WaitForPlan.
	ErrPlanInFlight = errors.New("a planning attempt is already in flight")

	// ErrExecutionInFlight is returned by BeginExecute while a previous
	// execution has not been collected with WaitForExecute.
	ErrExecutionInFlight = errors.New("an execution is already in flight")

	// ErrNoPlan is returned by BeginExecute when no planning attempt has
	// produced a trajectory to execute.
	ErrNoPlan = errors.New("no plan to execute")

	// ErrNoGroupRegistry is returned by SelectGroup when no registry has
	// been provided.
	ErrNoGroupRegistry = errors.New("no move group registry configured")

	// ErrNoResult is returned when a camera pose is requested before any
	// solve has succeeded.
	ErrNoResult = errors.New("no calibration result available")
)

type planResult struct {
	plan    *Plan
	outcome Outcome
}

// Workflow sequences an automated calibration: drive the robot through
// prerecorded joint states, sample a transform pair after each motion, and
// re-solve the calibration as the sample set grows.
//
// A Workflow is owned by a single goroutine. The Begin/Wait method pairs let
// that owner overlap a planner or controller call with other work; only the
// collaborator call itself runs on the background worker.
type Workflow struct {
	logger logging.Logger
	store  *calibration.SampleStore

	frames calibration.FrameNames
	mount  calibration.SensorMountType

	lookup  TransformLookup
	monitor SceneMonitor
	groups  GroupRegistry
	group   MoveGroup

	solver  handeye.Solver
	variant string

	progress    int
	progressMax int

	plan   *Plan
	result *calibration.Result

	planPending chan planResult
	execPending chan Outcome
}

// NewWorkflow returns a workflow recording into the given store.
func NewWorkflow(store *calibration.SampleStore, logger logging.Logger) *Workflow {
	return &Workflow{logger: logger, store: store}
}

// Store returns the sample store the workflow records into.
func (w *Workflow) Store() *calibration.SampleStore {
	return w.store
}

// SetTransformLookup sets the frame-transform source used for sampling.
func (w *Workflow) SetTransformLookup(lookup TransformLookup) {
	w.lookup = lookup
}

// SetSceneMonitor sets the live joint-state source.
func (w *Workflow) SetSceneMonitor(monitor SceneMonitor) {
	w.monitor = monitor
}

// SetGroupRegistry sets the registry SelectGroup resolves names against.
func (w *Workflow) SetGroupRegistry(groups GroupRegistry) {
	w.groups = groups
}

// SetFrameNames sets the four calibration frames.
func (w *Workflow) SetFrameNames(frames calibration.FrameNames) {
	w.frames = frames
}

// SetMountType sets how the camera is mounted, which also selects whether
// the solved pose is published from the base or the end-effector frame.
func (w *Workflow) SetMountType(mount calibration.SensorMountType) {
	w.mount = mount
}

// SetMoveGroup installs a move group directly. Switching to a differently
// named group discards joint states recorded for the previous one.
func (w *Workflow) SetMoveGroup(group MoveGroup) {
	if w.group != nil && group != nil && w.group.Name() == group.Name() {
		w.group = group
		return
	}
	w.group = group
	w.store.ClearJointStates()
	w.progress = 0
	w.progressMax = 0
}

// SelectGroup resolves a planning group by name and installs it.
func (w *Workflow) SelectGroup(name string) error {
	if w.groups == nil {
		return ErrNoGroupRegistry
	}
	group, err := w.groups.Group(name)
	if err != nil {
		return errors.Wrapf(err, "could not select move group %q", name)
	}
	w.SetMoveGroup(group)
	return nil
}

// SelectSolver resolves a "plugin/variant" descriptor and makes it the
// workflow's solver.
func (w *Workflow) SelectSolver(descriptor string) error {
	solver, variant, err := handeye.Select(descriptor)
	if err != nil {
		return err
	}
	w.solver = solver
	w.variant = variant
	return nil
}

// Progress reports how many prerecorded joint states have been consumed and
// how many exist.
func (w *Workflow) Progress() (int, int) {
	return w.progress, w.progressMax
}

// Skip marks the current target joint state as consumed without moving the
// robot. Skipping past the last state is a no-op.
func (w *Workflow) Skip() {
	if w.progress < w.progressMax {
		w.progress++
	}
}

func (w *Workflow) validatePlan() Outcome {
	if w.progressMax != w.store.JointStateCount() || w.progress == w.progressMax {
		return FailureNoJointState
	}
	if err := w.store.CheckJointStates(); err != nil {
		return FailureInvalidJointState
	}
	if w.monitor == nil {
		return FailureNoSceneMonitor
	}
	if w.group == nil {
		return FailureNoMoveGroup
	}
	if !slices.Equal(w.group.ActiveJoints(), w.store.JointNames()) {
		return FailureWrongMoveGroup
	}
	return Success
}

// BeginPlan starts planning a motion to the next prerecorded joint state.
// Validation happens before this returns; only the planner call itself runs
// in the background. The attempt's outcome is collected with WaitForPlan.
func (w *Workflow) BeginPlan(ctx context.Context) error {
	if w.planPending != nil {
		return ErrPlanInFlight
	}
	ch := make(chan planResult, 1)
	w.planPending = ch

	if outcome := w.validatePlan(); outcome != Success {
		ch <- planResult{outcome: outcome}
		return nil
	}

	goal := referenceframe.FloatsToInputs(w.store.JointValues()[w.progress])
	group := w.group
	monitor := w.monitor
	goutils.PanicCapturingGo(func() {
		start, err := monitor.CurrentJointPositions(ctx, group.Name())
		if err != nil {
			w.logger.Errorw("could not read start state for planning", "error", err)
			ch <- planResult{outcome: FailurePlanFailed}
			return
		}
		plan, err := group.Plan(ctx, start, goal)
		if err != nil {
			w.logger.Errorw("planning failed", "group", group.Name(), "error", err)
			ch <- planResult{outcome: FailurePlanFailed}
			return
		}
		ch <- planResult{plan: plan, outcome: Success}
	})
	return nil
}

// WaitForPlan blocks until the pending planning attempt finishes and returns
// its outcome. A successful plan is retained for the next execution. Without
// a pending attempt it returns Success immediately.
func (w *Workflow) WaitForPlan() Outcome {
	if w.planPending == nil {
		return Success
	}
	res := <-w.planPending
	w.planPending = nil
	if res.outcome == Success {
		w.plan = res.plan
	}
	return res.outcome
}

// Plan runs one planning attempt synchronously.
func (w *Workflow) Plan(ctx context.Context) (Outcome, error) {
	if err := w.BeginPlan(ctx); err != nil {
		return FailurePlanFailed, err
	}
	return w.WaitForPlan(), nil
}

// BeginExecute starts executing the retained plan. An in-flight planning
// attempt is joined first; its failure surfaces here as ErrNoPlan when no
// earlier plan exists either.
func (w *Workflow) BeginExecute(ctx context.Context) error {
	if w.execPending != nil {
		return ErrExecutionInFlight
	}
	if w.planPending != nil {
		w.WaitForPlan()
	}
	if w.group == nil || w.plan == nil {
		return ErrNoPlan
	}
	ch := make(chan Outcome, 1)
	w.execPending = ch

	group := w.group
	plan := w.plan
	goutils.PanicCapturingGo(func() {
		if err := group.Execute(ctx, plan); err != nil {
			w.logger.Errorw("execution failed", "group", group.Name(), "error", err)
			ch <- FailurePlanFailed
			return
		}
		ch <- Success
	})
	return nil
}

// WaitForExecute blocks until the pending execution finishes. On success it
// advances progress, takes one sample when all four frames are named (a
// rotation-diversity rejection is not an error here), and re-solves once
// more than four samples exist. Without a pending execution it returns
// Success immediately.
func (w *Workflow) WaitForExecute(ctx context.Context) Outcome {
	if w.execPending == nil {
		return Success
	}
	outcome := <-w.execPending
	w.execPending = nil
	if outcome != Success {
		return outcome
	}

	if w.progress < w.progressMax {
		w.progress++
	}
	if w.frames.Validate() == nil {
		if err := w.sample(ctx); err != nil {
			w.logger.Debugw("sample not recorded", "error", err)
		}
	}
	if w.store.Size() > 4 {
		if _, err := w.Solve(); err != nil {
			w.logger.Warnw("could not solve calibration", "error", err)
		}
	}
	return outcome
}

// Execute runs one execution synchronously.
func (w *Workflow) Execute(ctx context.Context) (Outcome, error) {
	if err := w.BeginExecute(ctx); err != nil {
		return FailurePlanFailed, err
	}
	return w.WaitForExecute(ctx), nil
}

// TakeSample records one transform pair at the robot's current configuration,
// re-solves once more than four samples exist, and records the live joint
// state so the motion can be replayed later.
func (w *Workflow) TakeSample(ctx context.Context) error {
	if err := w.frames.Validate(); err != nil {
		return err
	}
	if err := w.sample(ctx); err != nil {
		return err
	}
	if w.store.Size() > 4 {
		if _, err := w.Solve(); err != nil {
			return err
		}
	}
	w.recordCurrentJointState(ctx)
	return nil
}

// sample looks up the object and effector transforms and appends them as one
// pair. The store's diversity rule decides whether the pair is kept.
func (w *Workflow) sample(ctx context.Context) error {
	if w.lookup == nil {
		return errors.New("no transform lookup configured")
	}
	object, err := w.lookup.LookupTransform(ctx, w.frames.Sensor, w.frames.Object)
	if err != nil {
		return errors.Wrap(err, "could not look up object transform")
	}
	effector, err := w.lookup.LookupTransform(ctx, w.frames.Base, w.frames.EndEffector)
	if err != nil {
		return errors.Wrap(err, "could not look up effector transform")
	}
	return w.store.Append(calibration.TransformPair{
		EffectorWrtWorld: effector,
		ObjectWrtSensor:  object,
	})
}

func (w *Workflow) recordCurrentJointState(ctx context.Context) {
	if w.monitor == nil || w.group == nil {
		return
	}
	inputs, err := w.monitor.CurrentJointPositions(ctx, w.group.Name())
	if err != nil {
		w.logger.Warnw("could not read current joint positions", "group", w.group.Name(), "error", err)
		return
	}
	err = w.store.RecordJointState(w.group.ActiveJoints(), referenceframe.InputsToFloats(inputs))
	if err != nil {
		w.logger.Warnw("could not record joint state", "error", err)
		return
	}
	w.progressMax = w.store.JointStateCount()
}

// Solve runs the selected solver over every stored sample and replaces the
// workflow's result. A failed solve leaves the previous result intact.
func (w *Workflow) Solve() (*calibration.Result, error) {
	if w.solver == nil {
		return nil, handeye.ErrNoSolverAvailable
	}
	if w.store.Size() == 0 {
		return nil, calibration.ErrEmptyStore
	}
	effector := w.store.EffectorPoses()
	object := w.store.ObjectPoses()
	pose, err := w.solver.Solve(effector, object, w.mount, w.variant)
	if err != nil {
		return nil, err
	}
	transErr, rotErr := w.solver.ReprojectionError(effector, object, pose, w.mount)
	w.result = &calibration.Result{
		CameraRobotPose:  pose,
		TranslationError: transErr,
		RotationError:    rotErr,
	}
	w.logger.Infof("reprojection error: %g m, %g rad", transErr, rotErr)
	return w.result, nil
}

// Result returns the latest solve result, or nil before the first success.
func (w *Workflow) Result() *calibration.Result {
	return w.result
}

// DeleteLatestSample removes the newest sample and its recorded joint state.
func (w *Workflow) DeleteLatestSample() error {
	if err := w.store.DeleteLatest(); err != nil {
		return err
	}
	w.progressMax = w.store.JointStateCount()
	if w.progress > w.progressMax {
		w.progress = w.progressMax
	}
	return nil
}

// ClearSamples discards every sample and recorded joint state.
func (w *Workflow) ClearSamples() {
	w.store.Clear()
	w.progress = 0
	w.progressMax = 0
}

// SaveSamples writes the stored pose pairs to a YAML file.
func (w *Workflow) SaveSamples(path string) error {
	return calibfile.SaveSamples(path, w.store.Pairs())
}

// LoadSamples replaces the stored pose pairs with a file's contents. Loaded
// samples bypass the diversity rule; progress is untouched.
func (w *Workflow) LoadSamples(path string) error {
	pairs, err := calibfile.LoadSamples(path)
	if err != nil {
		return err
	}
	w.store.ReplacePairs(pairs)
	return nil
}

// SaveJointStates writes the recorded joint states to a YAML file.
func (w *Workflow) SaveJointStates(path string) error {
	if err := w.store.CheckJointStates(); err != nil {
		return err
	}
	return calibfile.SaveJointStates(path, w.store.JointNames(), w.store.JointValues())
}

// LoadJointStates replaces the recorded joint states with a file's contents
// and rewinds progress so the whole sequence can be executed.
func (w *Workflow) LoadJointStates(path string) error {
	names, values, err := calibfile.LoadJointStates(path, w.logger)
	if err != nil {
		return err
	}
	w.store.SetJointStates(names, values)
	w.progress = 0
	w.progressMax = w.store.JointStateCount()
	return nil
}

// SaveCameraPose writes the solved camera pose as a launch script publishing
// a static transform between the mount's source frame and the sensor frame.
// The path actually written is returned.
func (w *Workflow) SaveCameraPose(path string) (string, error) {
	if w.result == nil {
		return "", ErrNoResult
	}
	fromFrame := w.frames.From(w.mount)
	toFrame := w.frames.To()
	if fromFrame == "" || toFrame == "" {
		return "", errors.Wrap(calibration.ErrEmptyFrameName, "cannot name the published transform")
	}
	params := calibfile.NewLaunchParams(w.result.CameraRobotPose, w.mount, fromFrame, toFrame)
	return calibfile.WriteLaunchFile(path, params)
}
