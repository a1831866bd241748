package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

// NewStatsCmd returns the `stats` cobra command.
func NewStatsCmd(deps *Deps) *cobra.Command {
	var htmlPath string
	var markdown bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "display label coverage of the folder",
		Long: `Display how many images are labeled and how often each tag is used.
--markdown prints the report as Markdown; --html writes it as an HTML page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := deps.Labeler.Stats(cmd.Context(), labeler.FolderOptions{Folder: deps.Folder})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if htmlPath != "" {
				page, err := st.HTML()
				if err != nil {
					return err
				}
				dest, err := deps.Labeler.WriteReport(htmlPath, page)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "Wrote report to %s\n", dest)
				return err
			}
			if markdown {
				_, err = fmt.Fprint(out, st.Markdown())
				return err
			}
			return printStats(out, st)
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "write an HTML report to this file")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the report as Markdown")
	cmd.MarkFlagsMutuallyExclusive("html", "markdown")

	return cmd
}

func printStats(out io.Writer, st labeler.Stats) error {
	summary := table.NewWriter()
	summary.SetStyle(table.StyleLight)
	summary.SetTitle("%s", st.Folder)
	summary.AppendRows([]table.Row{
		{"images", st.Images},
		{"labeled", fmt.Sprintf("%d (%.1f%%)", st.Labeled, st.Coverage())},
		{"unlabeled", st.Unlabeled},
	})
	fmt.Fprintln(out, summary.Render())

	if len(st.Tags) > 0 {
		tags := table.NewWriter()
		tags.SetStyle(table.StyleLight)
		tags.AppendHeader(table.Row{"tag", "images"})
		for _, tc := range st.Tags {
			tags.AppendRow(table.Row{tc.Tag, tc.Images})
		}
		fmt.Fprintln(out, tags.Render())
	}
	if len(st.Unused) > 0 {
		fmt.Fprintf(out, "Unused tags: %s\n", strings.Join(st.Unused, ", "))
	}
	return nil
}
