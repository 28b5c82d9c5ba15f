// ABOUTME: graph subcommand rendering the company/contact network with graphviz
// ABOUTME: Writes dot, svg or png to stdout or a file
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/harperreed/outreach/stats"
	"github.com/spf13/cobra"
)

func newGraphCommand(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render companies, contacts and email status as a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := stats.GraphFormats[format]; !ok {
				return fmt.Errorf("unknown format %q (want dot, svg or png)", format)
			}
			if format == "png" && output == "" {
				return fmt.Errorf("png output needs --output")
			}

			a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := stats.RenderGraph(cmd.Context(), a.store, format, w); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Graph written to %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "dot", "Output format: dot, svg or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
