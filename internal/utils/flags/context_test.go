package flags_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	flagutils "github.com/temirov/hallmonitor/internal/utils/flags"
)

func TestBindRootFlagsScope(testInstance *testing.T) {
	testCases := []struct {
		name             string
		definition       flagutils.RootFlagDefinition
		expectPersistent bool
		expectLocal      bool
	}{
		{
			name:        "local_default_name",
			definition:  flagutils.RootFlagDefinition{Enabled: true},
			expectLocal: true,
		},
		{
			name:             "persistent",
			definition:       flagutils.RootFlagDefinition{Enabled: true, Persistent: true},
			expectPersistent: true,
		},
		{
			name:       "disabled",
			definition: flagutils.RootFlagDefinition{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{Use: "update"}
			values := flagutils.BindRootFlags(command, flagutils.RootFlagValues{Root: "~/src"}, testCase.definition)
			require.Equal(testInstance, "~/src", values.Root)
			require.Equal(testInstance, testCase.expectPersistent, command.PersistentFlags().Lookup(flagutils.RepositoriesRootFlagName) != nil)
			require.Equal(testInstance, testCase.expectLocal, command.LocalNonPersistentFlags().Lookup(flagutils.RepositoriesRootFlagName) != nil)
		})
	}
}

func TestBindBranchFlagsParsesValue(testInstance *testing.T) {
	command := &cobra.Command{Use: "update"}
	values := flagutils.BindBranchFlags(command, flagutils.BranchFlagValues{Name: "security-compliance"}, flagutils.BranchFlagDefinition{
		Name:    flagutils.BranchFlagName,
		Usage:   flagutils.BranchFlagUsage,
		Enabled: true,
	})
	require.Equal(testInstance, "security-compliance", values.Name)

	require.NoError(testInstance, command.ParseFlags([]string{"--branch", "sc-refresh"}))
	require.Equal(testInstance, "sc-refresh", values.Name)
}

func TestEnsureRemoteFlagIsIdempotent(testInstance *testing.T) {
	command := &cobra.Command{Use: "update"}
	flagutils.EnsureRemoteFlag(command, "origin", "")
	flagutils.EnsureRemoteFlag(command, "upstream", "")

	remoteFlag := command.Flags().Lookup(flagutils.RemoteFlagName)
	require.NotNil(testInstance, remoteFlag)
	require.Equal(testInstance, "origin", remoteFlag.DefValue)
	require.Equal(testInstance, flagutils.RemoteFlagUsage, remoteFlag.Usage)

	require.NoError(testInstance, command.ParseFlags([]string{"--remote", "fork"}))
	value, changed, lookupError := flagutils.StringFlag(command, flagutils.RemoteFlagName)
	require.NoError(testInstance, lookupError)
	require.True(testInstance, changed)
	require.Equal(testInstance, "fork", value)
}
