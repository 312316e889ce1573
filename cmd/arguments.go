package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// DisallowArguments is a Cobra arguments validator that disallows positional
// arguments. It is an alternative to cobra.NoArgs, which treats arguments as
// command names and returns a somewhat cryptic error message.
func DisallowArguments(_ *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New("command does not accept arguments")
	}
	return nil
}

// ExactArguments returns a Cobra arguments validator that requires exactly
// count positional arguments, naming them in its error message.
func ExactArguments(names ...string) cobra.PositionalArgs {
	return func(_ *cobra.Command, arguments []string) error {
		if len(arguments) != len(names) {
			return errors.Errorf("invalid number of arguments, expected: %s", joinNames(names))
		}
		return nil
	}
}

// OptionalArguments returns a Cobra arguments validator that requires the
// named positional arguments, optionally followed by the optional ones.
func OptionalArguments(required []string, optional ...string) cobra.PositionalArgs {
	return func(_ *cobra.Command, arguments []string) error {
		if len(arguments) < len(required) || len(arguments) > len(required)+len(optional) {
			expected := joinNames(required)
			if len(optional) > 0 {
				expected += " [" + joinNames(optional) + "]"
			}
			return errors.Errorf("invalid number of arguments, expected: %s", expected)
		}
		return nil
	}
}

// MinimumArguments returns a Cobra arguments validator that requires at least
// one positional argument.
func MinimumArguments(name string) cobra.PositionalArgs {
	return func(_ *cobra.Command, arguments []string) error {
		if len(arguments) == 0 {
			return errors.Errorf("missing %s argument", name)
		}
		return nil
	}
}

// joinNames formats argument names for usage errors.
func joinNames(names []string) string {
	formatted := make([]string, len(names))
	for i, name := range names {
		formatted[i] = "<" + name + ">"
	}
	return strings.Join(formatted, " ")
}
