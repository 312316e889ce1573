package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/configuration"
	"github.com/mutagen-io/meshsync/pkg/message"
	"github.com/mutagen-io/meshsync/pkg/scene"
)

// getMain is the entry point for the get command.
func getMain(_ *cobra.Command, _ []string) error {
	// Validate filter patterns.
	for _, pattern := range getConfiguration.filter {
		if err := configuration.ValidateIgnorePattern(pattern); err != nil {
			return errors.Wrapf(err, "invalid filter pattern (%s)", pattern)
		}
	}

	// Compute the requested conventions.
	settings := scene.Settings{ScaleFactor: getConfiguration.scale}
	if getConfiguration.rightHanded {
		settings.Handedness = scene.HandednessRight
	}

	// Compute the requested content.
	var flags message.GetFlags
	if !getConfiguration.noMeshes {
		flags |= message.GetFlagMeshes | message.GetFlagMaterials
	}
	if !getConfiguration.noCameras {
		flags |= message.GetFlagCameras
	}
	if !getConfiguration.noLights {
		flags |= message.GetFlagLights
	}
	if !getConfiguration.noConstraints {
		flags |= message.GetFlagConstraints
	}
	if flags == 0 {
		return errors.New("all content excluded")
	}

	// Connect and retrieve the scene.
	ctx, cancel := signalContext()
	defer cancel()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	result, err := c.Get(ctx, flags, settings, getConfiguration.filter)
	if err != nil {
		return err
	}

	// Save the scene or list its contents.
	if getConfiguration.output != "" {
		return scene.Save(getConfiguration.output, result)
	}
	for _, path := range result.Paths() {
		fmt.Printf("%s\t%s\n", result.Entities[path].Type, path)
	}

	// Success.
	return nil
}

// getCommand is the get command.
var getCommand = &cobra.Command{
	Use:          "get",
	Short:        "Retrieve scene data from the server's host",
	Args:         cmd.DisallowArguments,
	RunE:         getMain,
	SilenceUsage: true,
}

// getConfiguration stores configuration for the get command.
var getConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// output is the path to which the scene is saved.
	output string
	// filter are path patterns selecting subtrees.
	filter []string
	// scale is the requested scale factor.
	scale float32
	// rightHanded requests right-handed coordinates.
	rightHanded bool
	// noMeshes excludes meshes and materials.
	noMeshes bool
	// noCameras excludes cameras.
	noCameras bool
	// noLights excludes lights.
	noLights bool
	// noConstraints excludes constraints.
	noConstraints bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := getCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&getConfiguration.help, "help", "h", false, "Show help information")

	// Wire up get flags.
	flags.StringVarP(&getConfiguration.output, "output", "o", "", "Save the scene to the specified path instead of listing it")
	flags.StringSliceVarP(&getConfiguration.filter, "filter", "f", nil, "Select subtrees matching the specified path patterns")
	flags.Float32Var(&getConfiguration.scale, "scale", 1, "Specify the scale factor of the result")
	flags.BoolVar(&getConfiguration.rightHanded, "right-handed", false, "Request right-handed coordinates")
	flags.BoolVar(&getConfiguration.noMeshes, "no-meshes", false, "Exclude meshes and materials")
	flags.BoolVar(&getConfiguration.noCameras, "no-cameras", false, "Exclude cameras")
	flags.BoolVar(&getConfiguration.noLights, "no-lights", false, "Exclude lights")
	flags.BoolVar(&getConfiguration.noConstraints, "no-constraints", false, "Exclude constraints")
}
