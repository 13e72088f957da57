// Package autocal drives the plan, execute, sample and solve cycle of an
// automated hand-eye calibration against pluggable robot collaborators.
package autocal

import (
	"context"

	"go.viam.com/rdk/referenceframe"
	"go.viam.com/rdk/spatialmath"
)

// TransformLookup resolves the current transform between two named frames.
type TransformLookup interface {
	LookupTransform(ctx context.Context, fromFrame, toFrame string) (spatialmath.Pose, error)
}

// SceneMonitor reports the robot's live joint positions for a planning group.
type SceneMonitor interface {
	CurrentJointPositions(ctx context.Context, group string) ([]referenceframe.Input, error)
}

// Plan is the retained artifact of a successful planner call, consumed by a
// later Execute.
type Plan struct {
	Start      []referenceframe.Input
	Goal       []referenceframe.Input
	Trajectory [][]referenceframe.Input
}

// MoveGroup plans and executes motion for one named group of joints.
type MoveGroup interface {
	Name() string
	ActiveJoints() []string
	Plan(ctx context.Context, start, goal []referenceframe.Input) (*Plan, error)
	Execute(ctx context.Context, plan *Plan) error
}

// GroupRegistry lists the planning groups a robot offers and constructs move
// groups on demand.
type GroupRegistry interface {
	GroupNames() []string
	Group(name string) (MoveGroup, error)
}
