package calibfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/num/quat"

	"github.com/viam-labs/handeye/calibration"
)

// ErrUnknownLaunchType is returned when a launch-script path has an extension
// none of the renderers handle.
var ErrUnknownLaunchType = errors.New(
	"unknown launch script type, only .py, .xml and .yaml/.yml are supported")

// LaunchParams is everything a launch-script renderer needs: the frames the
// published transform connects and the transform itself in both quaternion
// and Euler form.
type LaunchParams struct {
	FromFrame   string
	ToFrame     string
	Translation r3.Vector
	Quaternion  quat.Number
	Euler       *spatialmath.EulerAngles
	Mount       calibration.SensorMountType
}

// NewLaunchParams extracts launch parameters from a solved camera pose.
func NewLaunchParams(
	pose spatialmath.Pose,
	mount calibration.SensorMountType,
	fromFrame, toFrame string,
) LaunchParams {
	o := pose.Orientation()
	return LaunchParams{
		FromFrame:   fromFrame,
		ToFrame:     toFrame,
		Translation: pose.Point(),
		Quaternion:  o.Quaternion(),
		Euler:       o.EulerAngles(),
		Mount:       mount,
	}
}

// RenderPython renders a ROS 2 Python launch script publishing the transform.
func RenderPython(p LaunchParams) string {
	var b strings.Builder
	b.WriteString("\"\"\" Static transform publisher acquired via hand-eye calibration \"\"\"\n")
	fmt.Fprintf(&b, "\"\"\" %s: %s -> %s \"\"\"\n", p.Mount, p.FromFrame, p.ToFrame)
	b.WriteString("from launch import LaunchDescription\n")
	b.WriteString("from launch_ros.actions import Node\n")
	b.WriteString("\n\n")
	b.WriteString("def generate_launch_description() -> LaunchDescription:\n")
	b.WriteString("    nodes = [\n")
	b.WriteString("        Node(\n")
	b.WriteString("            package=\"tf2_ros\",\n")
	b.WriteString("            executable=\"static_transform_publisher\",\n")
	b.WriteString("            output=\"log\",\n")
	b.WriteString("            arguments=[\n")
	fmt.Fprintf(&b, "                \"--frame-id\",\n                %q,\n", p.FromFrame)
	fmt.Fprintf(&b, "                \"--child-frame-id\",\n                %q,\n", p.ToFrame)
	fmt.Fprintf(&b, "                \"--x\",\n                \"%g\",\n", p.Translation.X)
	fmt.Fprintf(&b, "                \"--y\",\n                \"%g\",\n", p.Translation.Y)
	fmt.Fprintf(&b, "                \"--z\",\n                \"%g\",\n", p.Translation.Z)
	fmt.Fprintf(&b, "                \"--qx\",\n                \"%g\",\n", p.Quaternion.Imag)
	fmt.Fprintf(&b, "                \"--qy\",\n                \"%g\",\n", p.Quaternion.Jmag)
	fmt.Fprintf(&b, "                \"--qz\",\n                \"%g\",\n", p.Quaternion.Kmag)
	fmt.Fprintf(&b, "                \"--qw\",\n                \"%g\",\n", p.Quaternion.Real)
	fmt.Fprintf(&b, "                # \"--roll\",\n                # \"%g\",\n", p.Euler.Roll)
	fmt.Fprintf(&b, "                # \"--pitch\",\n                # \"%g\",\n", p.Euler.Pitch)
	fmt.Fprintf(&b, "                # \"--yaw\",\n                # \"%g\",\n", p.Euler.Yaw)
	b.WriteString("            ],\n")
	b.WriteString("        ),\n")
	b.WriteString("    ]\n")
	b.WriteString("    return LaunchDescription(nodes)\n")
	return b.String()
}

// RenderXML renders a ROS 2 XML launch script publishing the transform.
func RenderXML(p LaunchParams) string {
	var b strings.Builder
	b.WriteString("<!-- Static transform publisher acquired via hand-eye calibration -->\n")
	fmt.Fprintf(&b, "<!-- %s: %s -> %s -->\n", p.Mount, p.FromFrame, p.ToFrame)
	b.WriteString("\n<launch>\n")
	b.WriteString("    <node\n")
	b.WriteString("        pkg=\"tf2_ros\"\n")
	b.WriteString("        exec=\"static_transform_publisher\"\n")
	b.WriteString("        output=\"log\"\n")
	b.WriteString("        args=\"\n")
	fmt.Fprintf(&b, "            --frame-id %s\n", p.FromFrame)
	fmt.Fprintf(&b, "            --child-frame-id %s\n", p.ToFrame)
	fmt.Fprintf(&b, "            --x %g\n", p.Translation.X)
	fmt.Fprintf(&b, "            --y %g\n", p.Translation.Y)
	fmt.Fprintf(&b, "            --z %g\n", p.Translation.Z)
	fmt.Fprintf(&b, "            --qx %g\n", p.Quaternion.Imag)
	fmt.Fprintf(&b, "            --qy %g\n", p.Quaternion.Jmag)
	fmt.Fprintf(&b, "            --qz %g\n", p.Quaternion.Kmag)
	fmt.Fprintf(&b, "            --qw %g\n", p.Quaternion.Real)
	b.WriteString("        \"\n")
	b.WriteString("    />\n")
	b.WriteString("    <!--\n")
	fmt.Fprintf(&b, "            roll %g\n", p.Euler.Roll)
	fmt.Fprintf(&b, "            pitch %g\n", p.Euler.Pitch)
	fmt.Fprintf(&b, "            yaw %g\n", p.Euler.Yaw)
	b.WriteString("    -->\n")
	b.WriteString("</launch>\n")
	return b.String()
}

// RenderYAML renders a ROS 2 YAML launch script publishing the transform.
func RenderYAML(p LaunchParams) string {
	var b strings.Builder
	b.WriteString("# Static transform publisher acquired via hand-eye calibration\n")
	fmt.Fprintf(&b, "# %s: %s -> %s\n", p.Mount, p.FromFrame, p.ToFrame)
	b.WriteString("\nlaunch:\n")
	b.WriteString("    - node:\n")
	b.WriteString("          pkg: tf2_ros\n")
	b.WriteString("          exec: static_transform_publisher\n")
	b.WriteString("          output: log\n")
	b.WriteString("          args:\n")
	b.WriteString("              \"\n")
	fmt.Fprintf(&b, "              --frame-id %s\n", p.FromFrame)
	fmt.Fprintf(&b, "              --child-frame-id %s\n", p.ToFrame)
	fmt.Fprintf(&b, "              --x %g\n", p.Translation.X)
	fmt.Fprintf(&b, "              --y %g\n", p.Translation.Y)
	fmt.Fprintf(&b, "              --z %g\n", p.Translation.Z)
	fmt.Fprintf(&b, "              --qx %g\n", p.Quaternion.Imag)
	fmt.Fprintf(&b, "              --qy %g\n", p.Quaternion.Jmag)
	fmt.Fprintf(&b, "              --qz %g\n", p.Quaternion.Kmag)
	fmt.Fprintf(&b, "              --qw %g\n", p.Quaternion.Real)
	b.WriteString("              \"\n")
	fmt.Fprintf(&b, "              # --roll %g\n", p.Euler.Roll)
	fmt.Fprintf(&b, "              # --pitch %g\n", p.Euler.Pitch)
	fmt.Fprintf(&b, "              # --yaw %g\n", p.Euler.Yaw)
	return b.String()
}

// WriteLaunchFile renders the launch script matching path's extension and
// writes it. A path with no extension gets ".launch.py" appended, a bare
// ".launch" gets ".py". The path actually written is returned.
func WriteLaunchFile(path string, p LaunchParams) (string, error) {
	switch {
	case !strings.Contains(filepath.Base(path), "."):
		path += ".launch.py"
	case strings.HasSuffix(path, ".launch"):
		path += ".py"
	}

	var content string
	switch {
	case strings.HasSuffix(path, ".py"):
		content = RenderPython(p)
	case strings.HasSuffix(path, ".xml"):
		content = RenderXML(p)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		content = RenderYAML(p)
	default:
		return "", errors.Wrapf(ErrUnknownLaunchType, "%q", path)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Wrapf(err, "could not write launch script %q", path)
	}
	return path, nil
}
