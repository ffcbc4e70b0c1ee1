package flags

import "github.com/spf13/cobra"

const (
	// RepositoriesRootFlagName exposes the shared working copy root flag name.
	RepositoriesRootFlagName = "git-repos-dir"
	// RepositoriesRootFlagUsage describes the shared working copy root flag purpose.
	RepositoriesRootFlagUsage = "Directory containing the service git working copies"
	// BranchFlagName exposes the shared branch flag name.
	BranchFlagName = "branch"
	// BranchFlagUsage describes the shared branch flag purpose.
	BranchFlagUsage = "Branch to update"
	// RemoteFlagName exposes the shared remote flag name.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the shared remote flag purpose.
	RemoteFlagUsage = "Remote to fetch from and push to"
)

// BranchFlagDefinition captures configuration for branch context flags.
type BranchFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// BranchFlagValues stores branch context flag values.
type BranchFlagValues struct {
	Name string
}

// BindBranchFlags attaches branch context flags to the provided command.
func BindBranchFlags(command *cobra.Command, defaults BranchFlagValues, definition BranchFlagDefinition) *BranchFlagValues {
	values := defaults
	if command == nil {
		return &values
	}
	if !definition.Enabled || len(definition.Name) == 0 {
		return &values
	}

	command.PersistentFlags().StringVar(&values.Name, definition.Name, defaults.Name, definition.Usage)
	return &values
}

// RootFlagDefinition captures configuration for the working copy root flag.
type RootFlagDefinition struct {
	Name       string
	Usage      string
	Enabled    bool
	Persistent bool
}

// RootFlagValues stores the working copy root flag value.
type RootFlagValues struct {
	Root string
}

// BindRootFlags attaches the working copy root flag to the provided command.
func BindRootFlags(command *cobra.Command, defaults RootFlagValues, definition RootFlagDefinition) *RootFlagValues {
	values := defaults
	if command == nil {
		return &values
	}
	if !definition.Enabled {
		return &values
	}
	flagName := definition.Name
	if len(flagName) == 0 {
		flagName = RepositoriesRootFlagName
	}
	flagUsage := definition.Usage
	if len(flagUsage) == 0 {
		flagUsage = RepositoriesRootFlagUsage
	}

	targetSet := command.PersistentFlags()
	if !definition.Persistent {
		targetSet = command.Flags()
	}
	if targetSet.Lookup(flagName) == nil {
		targetSet.StringVar(&values.Root, flagName, values.Root, flagUsage)
	}
	return &values
}

// EnsureRemoteFlag guarantees the shared remote flag is available on the command.
func EnsureRemoteFlag(command *cobra.Command, defaultValue string, usage string) {
	if command == nil {
		return
	}
	if len(usage) == 0 {
		usage = RemoteFlagUsage
	}

	persistentSet := command.PersistentFlags()
	if persistentSet.Lookup(RemoteFlagName) == nil {
		persistentSet.String(RemoteFlagName, defaultValue, usage)
	}

	if command.Flags().Lookup(RemoteFlagName) == nil {
		if remoteFlag := persistentSet.Lookup(RemoteFlagName); remoteFlag != nil {
			command.Flags().AddFlag(remoteFlag)
		}
	}
}
