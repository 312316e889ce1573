package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/meshutils"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// exportSelection selects the meshes written by exportOBJ.
type exportSelection struct {
	// root is the path of the subtree to export. If empty, the whole scene is
	// exported.
	root string
	// children indicates that descendants of root should be exported along
	// with it.
	children bool
	// includeHidden includes invisible meshes.
	includeHidden bool
}

// selected returns whether or not the entity at path falls within the
// selection.
func (s exportSelection) selected(path string) bool {
	if s.root == "" || path == s.root {
		return true
	}
	return s.children && scene.IsDescendant(path, s.root)
}

// exportOBJ writes the selected meshes in a scene to an OBJ stream and returns
// the number of meshes written.
func exportOBJ(data *scene.Scene, writer *meshutils.OBJWriter, selection exportSelection) (int, error) {
	// Collect material names.
	names := make(map[int32]string, len(data.Materials))
	for id, material := range data.Materials {
		names[id] = material.Name
	}

	// Write meshes.
	var count int
	for _, path := range data.Paths() {
		entity := data.Entities[path]
		if entity.Mesh == nil || !selection.selected(path) || (!entity.Visible && !selection.includeHidden) {
			continue
		}
		transform, err := data.WorldMatrix(path)
		if err != nil {
			return count, errors.Wrapf(err, "unable to compute transform for %s", path)
		}
		mesh := &meshutils.OBJMesh{
			Name:          path,
			Points:        entity.Mesh.Points,
			Normals:       entity.Mesh.Normals,
			UV:            entity.Mesh.UV0,
			Counts:        entity.Mesh.Counts,
			Indices:       entity.Mesh.Indices,
			MaterialIDs:   entity.Mesh.MaterialIDs,
			MaterialNames: names,
			Transform:     transform,
		}
		if err := writer.Write(mesh); err != nil {
			return count, errors.Wrapf(err, "unable to write %s", path)
		}
		count++
	}
	return count, errors.Wrap(writer.Flush(), "unable to flush output")
}

// exportOBJMain is the entry point for the export-obj command.
func exportOBJMain(command *cobra.Command, arguments []string) error {
	// Load the scene.
	data, err := scene.Load(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load scene")
	}

	// Compute the selection.
	selection := exportSelection{
		children:      !exportOBJConfiguration.noChildren,
		includeHidden: exportOBJConfiguration.includeHidden,
	}
	if len(arguments) > 2 {
		if selection.root, err = scene.NormalizePath(arguments[2]); err != nil {
			return errors.Wrapf(err, "invalid root path (%s)", arguments[2])
		} else if _, ok := data.Lookup(selection.root); !ok {
			return errors.Errorf("root path (%s) not found in scene", selection.root)
		}
	}

	// Compute output options. OBJ is right-handed, so left-handed scenes are
	// flipped unless the handedness flip is specified explicitly.
	options := meshutils.OBJOptions{
		ApplyTransform: !exportOBJConfiguration.noApplyTransform,
		FlipHandedness: data.Settings.Handedness == scene.HandednessLeft,
		FlipFaces:      exportOBJConfiguration.flipFaces,
		MakeSubmeshes:  exportOBJConfiguration.submeshes,
	}
	if command.Flags().Changed("flip-handedness") {
		options.FlipHandedness = exportOBJConfiguration.flipHandedness
	}

	// Create the output file.
	output, err := os.Create(arguments[1])
	if err != nil {
		return errors.Wrap(err, "unable to create output file")
	}
	defer output.Close()

	// Export meshes.
	count, err := exportOBJ(data, meshutils.NewOBJWriter(output, options), selection)
	if err != nil {
		return err
	} else if err = output.Close(); err != nil {
		return errors.Wrap(err, "unable to close output file")
	}
	fmt.Printf("Exported %d meshes\n", count)

	// Success.
	return nil
}

// exportOBJCommand is the export-obj command.
var exportOBJCommand = &cobra.Command{
	Use:          "export-obj <scene> <out.obj> [<root>]",
	Short:        "Export the meshes of a saved scene in Wavefront OBJ format",
	Args:         cmd.OptionalArguments([]string{"scene", "out.obj"}, "root"),
	RunE:         exportOBJMain,
	SilenceUsage: true,
}

// exportOBJConfiguration stores configuration for the export-obj command.
var exportOBJConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// includeHidden includes invisible meshes.
	includeHidden bool
	// noChildren restricts a rooted export to the root entity.
	noChildren bool
	// noApplyTransform writes vertex data in local space.
	noApplyTransform bool
	// flipHandedness overrides the automatic handedness flip.
	flipHandedness bool
	// flipFaces reverses face winding.
	flipFaces bool
	// submeshes groups faces by material.
	submeshes bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := exportOBJCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&exportOBJConfiguration.help, "help", "h", false, "Show help information")

	// Wire up export flags.
	flags.BoolVar(&exportOBJConfiguration.includeHidden, "include-hidden", false, "Include invisible meshes")
	flags.BoolVar(&exportOBJConfiguration.noChildren, "no-children", false, "Export only the root entity, not its descendants")
	flags.BoolVar(&exportOBJConfiguration.noApplyTransform, "no-apply-transform", false, "Write vertex data in local space")
	flags.BoolVar(&exportOBJConfiguration.flipHandedness, "flip-handedness", false, "Negate X coordinates (defaults to true for left-handed scenes)")
	flags.BoolVar(&exportOBJConfiguration.flipFaces, "flip-faces", false, "Reverse face winding")
	flags.BoolVar(&exportOBJConfiguration.submeshes, "submeshes", false, "Group faces by material with g and usemtl statements")
}
