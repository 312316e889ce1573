package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/meshutils"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// normalEdit is a set of normal editing operations. Operations are applied in
// field order, and nil operations are skipped.
type normalEdit struct {
	// fromColors replaces normals with those decoded from vertex colors.
	fromColors bool
	// set blends normals toward a fixed direction.
	set *meshutils.Float3
	// move offsets normals.
	move *meshutils.Float3
	// rotate rotates normals.
	rotate *meshutils.Quaternion
	// scale bends normals away from the pivot.
	scale *meshutils.Float3
	// pivot is the pivot for scaling and, if non-nil, makes rotation fall off
	// toward it.
	pivot *meshutils.Float3
	// equalize holds the radius and amount for equalization.
	equalize *[2]float32
	// reset blends normals back toward generated normals.
	reset bool
	// toColors encodes the resulting normals as vertex colors.
	toColors bool
}

// empty returns whether or not the edit contains any operations.
func (e *normalEdit) empty() bool {
	return !e.fromColors && e.set == nil && e.move == nil && e.rotate == nil &&
		e.scale == nil && e.equalize == nil && !e.reset && !e.toColors
}

// normalPoints returns the point corresponding to each normal, which may be
// stored per point or per index.
func normalPoints(mesh *scene.Mesh, normals []meshutils.Float3) []meshutils.Float3 {
	if len(normals) == len(mesh.Points) {
		return mesh.Points
	}
	result := make([]meshutils.Float3, len(mesh.Indices))
	for i, index := range mesh.Indices {
		result[i] = mesh.Points[index]
	}
	return result
}

// apply applies the edit to a single mesh. An empty edit regenerates the
// mesh's normals.
func (e *normalEdit) apply(mesh *scene.Mesh, smooth bool) error {
	// Handle regeneration.
	if e.empty() {
		mesh.Normals = meshutils.GenerateNormals(mesh.Points, mesh.Counts, mesh.Indices, smooth)
		return nil
	}

	// Compute the starting normals.
	normals := mesh.Normals
	if e.fromColors {
		if len(mesh.Colors) == 0 {
			return errors.New("mesh has no vertex colors")
		}
		normals = meshutils.ColorsToNormals(mesh.Colors)
	} else if len(normals) == 0 {
		normals = meshutils.GenerateNormals(mesh.Points, mesh.Counts, mesh.Indices, smooth)
	}
	if len(normals) != len(mesh.Points) && len(normals) != len(mesh.Indices) {
		return errors.Errorf("normal count (%d) matches neither point nor index count", len(normals))
	}
	points := normalPoints(mesh, normals)
	selection := meshutils.SelectAll(len(normals))
	pivot := meshutils.Float3{}
	if e.pivot != nil {
		pivot = *e.pivot
	}

	// Apply operations.
	var err error
	if e.set != nil && err == nil {
		err = meshutils.ApplySet(normals, selection, *e.set)
	}
	if e.move != nil && err == nil {
		err = meshutils.ApplyMove(normals, selection, *e.move)
	}
	if e.rotate != nil && err == nil {
		if e.pivot != nil {
			err = meshutils.ApplyRotatePivot(normals, points, selection, *e.rotate, pivot)
		} else {
			err = meshutils.ApplyRotate(normals, selection, *e.rotate)
		}
	}
	if e.scale != nil && err == nil {
		err = meshutils.ApplyScale(normals, points, selection, *e.scale, pivot)
	}
	if e.equalize != nil && err == nil {
		err = meshutils.ApplyEqualize(normals, points, selection, e.equalize[0], e.equalize[1])
	}
	if e.reset && err == nil {
		reference := meshutils.GenerateNormals(mesh.Points, mesh.Counts, mesh.Indices, smooth)
		if len(reference) != len(normals) {
			reference = meshutils.GenerateNormals(mesh.Points, mesh.Counts, mesh.Indices, !smooth)
		}
		err = meshutils.ResetNormals(normals, reference, selection)
	}
	if err != nil {
		return err
	}

	// Store the result.
	mesh.Normals = normals
	if e.toColors {
		mesh.Colors = meshutils.NormalsToColors(normals)
	}
	return nil
}

// editNormals applies an edit to the meshes selected by matcher (or all meshes
// if matcher is empty), returning the number of meshes edited.
func editNormals(data *scene.Scene, matcher *scene.Matcher, edit *normalEdit, smooth bool) (int, error) {
	var count int
	for _, path := range data.Paths() {
		entity := data.Entities[path]
		if entity.Mesh == nil || len(entity.Mesh.Points) == 0 {
			continue
		} else if !matcher.Empty() && !matcher.MatchTree(path) {
			continue
		}
		if err := edit.apply(entity.Mesh, smooth); err != nil {
			return count, errors.Wrapf(err, "unable to edit normals of %s", path)
		}
		count++
	}
	return count, nil
}

// vector3 converts a flag value into a vector.
func vector3(name string, values []float32) (*meshutils.Float3, error) {
	if len(values) != 3 {
		return nil, errors.Errorf("--%s requires three comma-separated values", name)
	}
	return &meshutils.Float3{X: values[0], Y: values[1], Z: values[2]}, nil
}

// parseNormalEdit builds a normal edit from the command line flags.
func parseNormalEdit(command *cobra.Command) (*normalEdit, error) {
	flags := command.Flags()
	result := &normalEdit{
		fromColors: normalsConfiguration.fromColors,
		reset:      normalsConfiguration.reset,
		toColors:   normalsConfiguration.toColors,
	}
	var err error
	for _, vector := range []struct {
		name   string
		values []float32
		target **meshutils.Float3
	}{
		{"set", normalsConfiguration.set, &result.set},
		{"move", normalsConfiguration.move, &result.move},
		{"scale", normalsConfiguration.scale, &result.scale},
		{"pivot", normalsConfiguration.pivot, &result.pivot},
	} {
		if flags.Changed(vector.name) {
			if *vector.target, err = vector3(vector.name, vector.values); err != nil {
				return nil, err
			}
		}
	}
	if flags.Changed("rotate") {
		degrees, err := vector3("rotate", normalsConfiguration.rotate)
		if err != nil {
			return nil, err
		}
		rotation := meshutils.QuaternionFromEuler(*degrees)
		result.rotate = &rotation
	}
	if flags.Changed("equalize") {
		if len(normalsConfiguration.equalize) != 2 {
			return nil, errors.New("--equalize requires a radius and an amount")
		}
		result.equalize = &[2]float32{normalsConfiguration.equalize[0], normalsConfiguration.equalize[1]}
	}
	return result, nil
}

// normalsMain is the entry point for the normals command.
func normalsMain(command *cobra.Command, arguments []string) error {
	// Determine the normal style.
	if normalsConfiguration.smooth && normalsConfiguration.flat {
		return errors.New("--smooth and --flat are mutually exclusive")
	}
	smooth := !normalsConfiguration.flat

	// Parse the edit and the mesh filter.
	edit, err := parseNormalEdit(command)
	if err != nil {
		return err
	}
	matcher, err := scene.NewMatcher(normalsConfiguration.filter)
	if err != nil {
		return errors.Wrap(err, "invalid filter")
	}

	// Load the scene, process normals, and save the result. Without any
	// editing operations, normals are regenerated.
	data, err := scene.Load(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load scene")
	}
	count, err := editNormals(data, matcher, edit, smooth)
	if err != nil {
		return err
	}
	output := normalsConfiguration.output
	if output == "" {
		output = arguments[0]
	}
	if err := scene.Save(output, data); err != nil {
		return errors.Wrap(err, "unable to save scene")
	}
	fmt.Printf("Processed normals for %d meshes\n", count)

	// Success.
	return nil
}

// normalsCommand is the normals command.
var normalsCommand = &cobra.Command{
	Use:   "normals <scene>",
	Short: "Regenerate or edit the normals of a saved scene's meshes",
	Long: `Regenerate or edit the normals of a saved scene's meshes.

Without editing flags, normals are regenerated. Editing flags are applied in
the order --from-colors, --set, --move, --rotate, --scale, --equalize, --reset,
--to-colors. Meshes without normals start from generated ones.`,
	Args:         cmd.ExactArguments("scene"),
	RunE:         normalsMain,
	SilenceUsage: true,
}

// normalsConfiguration stores configuration for the normals command.
var normalsConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// smooth requests smooth normals.
	smooth bool
	// flat requests flat normals.
	flat bool
	// filter restricts processing to matching meshes.
	filter []string
	// fromColors decodes normals from vertex colors.
	fromColors bool
	// set is the direction toward which normals are set.
	set []float32
	// move is the offset added to normals.
	move []float32
	// rotate is the rotation applied to normals, in Euler degrees.
	rotate []float32
	// scale is the per-axis scale used to bend normals.
	scale []float32
	// pivot is the pivot used for rotation and scaling.
	pivot []float32
	// equalize holds the equalization radius and amount.
	equalize []float32
	// reset blends normals back toward generated ones.
	reset bool
	// toColors encodes normals as vertex colors.
	toColors bool
	// output is the path to which the result is saved.
	output string
}

func init() {
	// Grab a handle for the command line flags.
	flags := normalsCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&normalsConfiguration.help, "help", "h", false, "Show help information")

	// Wire up normal flags.
	flags.BoolVar(&normalsConfiguration.smooth, "smooth", false, "Generate smooth normals (the default)")
	flags.BoolVar(&normalsConfiguration.flat, "flat", false, "Generate flat normals")
	flags.StringSliceVar(&normalsConfiguration.filter, "filter", nil, "Only process meshes matching the specified path patterns")
	flags.BoolVar(&normalsConfiguration.fromColors, "from-colors", false, "Decode normals from vertex colors")
	flags.Float32SliceVar(&normalsConfiguration.set, "set", nil, "Set normals toward the specified x,y,z direction")
	flags.Float32SliceVar(&normalsConfiguration.move, "move", nil, "Offset normals by the specified x,y,z amount")
	flags.Float32SliceVar(&normalsConfiguration.rotate, "rotate", nil, "Rotate normals by the specified x,y,z Euler angles in degrees")
	flags.Float32SliceVar(&normalsConfiguration.scale, "scale", nil, "Bend normals away from the pivot by the specified x,y,z scale")
	flags.Float32SliceVar(&normalsConfiguration.pivot, "pivot", nil, "Specify the x,y,z pivot for --rotate and --scale")
	flags.Float32SliceVar(&normalsConfiguration.equalize, "equalize", nil, "Equalize normals within the specified radius by the specified amount")
	flags.BoolVar(&normalsConfiguration.reset, "reset", false, "Blend normals back toward generated normals")
	flags.BoolVar(&normalsConfiguration.toColors, "to-colors", false, "Encode the resulting normals as vertex colors")
	flags.StringVarP(&normalsConfiguration.output, "output", "o", "", "Save to the specified path instead of overwriting the input")
}
