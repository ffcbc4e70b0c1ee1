package flags

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const flagNotDefinedTemplate = "flag %q is not defined"

// ErrCommandNotProvided indicates a lookup without a command.
var ErrCommandNotProvided = errors.New("flags: command not provided")

// StringFlag returns the value of a string flag and whether the user set it.
func StringFlag(command *cobra.Command, name string) (string, bool, error) {
	flagSet, lookupError := definingFlagSet(command, name)
	if lookupError != nil {
		return "", false, lookupError
	}
	value, valueError := flagSet.GetString(name)
	return value, flagSet.Changed(name), valueError
}

// BoolFlag returns the value of a boolean flag and whether the user set it.
func BoolFlag(command *cobra.Command, name string) (bool, bool, error) {
	flagSet, lookupError := definingFlagSet(command, name)
	if lookupError != nil {
		return false, false, lookupError
	}
	value, valueError := flagSet.GetBool(name)
	return value, flagSet.Changed(name), valueError
}

// IntFlag returns the value of an integer flag and whether the user set it.
func IntFlag(command *cobra.Command, name string) (int, bool, error) {
	flagSet, lookupError := definingFlagSet(command, name)
	if lookupError != nil {
		return 0, false, lookupError
	}
	value, valueError := flagSet.GetInt(name)
	return value, flagSet.Changed(name), valueError
}

// StringSliceFlag returns the value of a string slice flag and whether the user set it.
func StringSliceFlag(command *cobra.Command, name string) ([]string, bool, error) {
	flagSet, lookupError := definingFlagSet(command, name)
	if lookupError != nil {
		return nil, false, lookupError
	}
	value, valueError := flagSet.GetStringSlice(name)
	return value, flagSet.Changed(name), valueError
}

// definingFlagSet finds the flag among the command's local and persistent flags.
func definingFlagSet(command *cobra.Command, name string) (*pflag.FlagSet, error) {
	if command == nil {
		return nil, ErrCommandNotProvided
	}
	for _, flagSet := range []*pflag.FlagSet{command.Flags(), command.PersistentFlags(), command.InheritedFlags()} {
		if flagSet.Lookup(name) != nil {
			return flagSet, nil
		}
	}
	return nil, fmt.Errorf(flagNotDefinedTemplate, name)
}
