package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/coregx/pcre"
	"github.com/spf13/cobra"
)

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the binary and engine versions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			version := "(devel)"
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			}
			_, err := fmt.Fprintf(a.Out, "pcre %s\nengine %s\n", version, pcre.Version())
			return err
		},
	}
}
