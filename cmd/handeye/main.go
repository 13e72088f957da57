// The handeye command works with hand-eye calibration sample files: it lists
// the available solvers, inspects saved samples, and solves a calibration
// offline, optionally writing the result as a ROS 2 launch script.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.viam.com/rdk/logging"

	"github.com/viam-labs/handeye/calibration"
	"github.com/viam-labs/handeye/calibration/calibfile"
	"github.com/viam-labs/handeye/calibration/handeye"
)

var app = &cli.App{
	Name:            "handeye",
	Usage:           "solve hand-eye calibrations from recorded pose samples",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "solvers",
			Usage:  "list the registered solver descriptors",
			Action: SolversAction,
		},
		{
			Name:      "inspect",
			Usage:     "summarize a pose-sample file",
			ArgsUsage: "<samples.yaml>",
			Action:    InspectAction,
		},
		{
			Name:      "solve",
			Usage:     "solve a calibration from a pose-sample file",
			ArgsUsage: "<samples.yaml>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "solver",
					Value: handeye.PluginName + "/" + handeye.Daniilidis1999,
					Usage: "solver descriptor, see the solvers command",
				},
				&cli.StringFlag{
					Name:  "mount",
					Value: calibration.EyeInHand.String(),
					Usage: "sensor mount type, EYE-IN-HAND or EYE-TO-HAND",
				},
				&cli.StringFlag{
					Name:  "from-frame",
					Usage: "reference frame name for the generated launch script",
				},
				&cli.StringFlag{
					Name:  "to-frame",
					Usage: "sensor frame name for the generated launch script",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write the result as a launch script to `FILE` (.py, .xml, .yaml)",
				},
			},
			Action: SolveAction,
		},
	},
}

func newLogger(c *cli.Context) logging.Logger {
	if c.Bool("debug") {
		return logging.NewDebugLogger("handeye")
	}
	return logging.NewLogger("handeye")
}

// SolversAction lists every selectable "plugin/variant" descriptor.
func SolversAction(c *cli.Context) error {
	for _, descriptor := range handeye.Descriptors(newLogger(c)) {
		fmt.Fprintln(c.App.Writer, descriptor)
	}
	return nil
}

// InspectAction prints a per-sample summary of a pose-sample file.
func InspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a sample file argument")
	}
	pairs, err := calibfile.LoadSamples(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d samples\n", len(pairs))
	for i, pair := range pairs {
		effector := pair.EffectorWrtWorld.Point()
		object := pair.ObjectWrtSensor.Point()
		fmt.Fprintf(c.App.Writer,
			"sample %d: effector (%.4f, %.4f, %.4f) object (%.4f, %.4f, %.4f)\n",
			i+1, effector.X, effector.Y, effector.Z, object.X, object.Y, object.Z)
	}
	return nil
}

// SolveAction solves a calibration from a sample file and prints the camera
// pose with its reprojection error.
func SolveAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a sample file argument")
	}
	mount, err := calibration.ParseSensorMountType(c.String("mount"))
	if err != nil {
		return err
	}
	solver, variant, err := handeye.Select(c.String("solver"))
	if err != nil {
		return err
	}
	pairs, err := calibfile.LoadSamples(c.Args().First())
	if err != nil {
		return err
	}

	store := calibration.NewSampleStore()
	store.ReplacePairs(pairs)
	effector := store.EffectorPoses()
	object := store.ObjectPoses()

	pose, err := solver.Solve(effector, object, mount, variant)
	if err != nil {
		return err
	}
	transErr, rotErr := solver.ReprojectionError(effector, object, pose, mount)

	pt := pose.Point()
	q := pose.Orientation().Quaternion()
	fmt.Fprintf(c.App.Writer, "%s camera pose from %d samples (%s)\n",
		mount, store.Size(), c.String("solver"))
	fmt.Fprintf(c.App.Writer, "translation: (%.6f, %.6f, %.6f) m\n", pt.X, pt.Y, pt.Z)
	fmt.Fprintf(c.App.Writer, "quaternion:  (x=%.6f, y=%.6f, z=%.6f, w=%.6f)\n",
		q.Imag, q.Jmag, q.Kmag, q.Real)
	fmt.Fprintf(c.App.Writer, "reprojection error: %g m, %g rad\n", transErr, rotErr)

	if output := c.String("output"); output != "" {
		params := calibfile.NewLaunchParams(pose, mount, c.String("from-frame"), c.String("to-frame"))
		final, err := calibfile.WriteLaunchFile(output, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", final)
	}
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
