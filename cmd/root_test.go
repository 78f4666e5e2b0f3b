package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	require.True(t, names["scan"])
	require.True(t, names["serve"])
	require.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestScanSurfacesAppInitFailure(t *testing.T) {
	orig := newApp
	t.Cleanup(func() { newApp = orig })
	newApp = func(context.Context, string) (*app, error) {
		return nil, errors.New("boom")
	}

	root := newRootCmd()
	root.SetArgs([]string{"scan", "wowwo"})
	err := root.Execute()
	require.ErrorContains(t, err, "boom")
}
