package cli

import (
	"io"

	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func NewMCPCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [FOLDER]",
		Short: "serve a folder to MCP clients over stdio",
		Long: `Open a folder and expose it as Model Context Protocol tools on stdin and
stdout, so an agent can list images, read and edit labels and save.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deps.Labeler.ServeMCP(cmd.Context(), labeler.MCPOptions{
				FolderOptions: folderOptions(deps, args),
				Version:       Version,
				Transport: &mcp.IOTransport{
					Reader: io.NopCloser(cmd.InOrStdin()),
					Writer: nopWriteCloser{cmd.OutOrStdout()},
				},
			})
		},
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
