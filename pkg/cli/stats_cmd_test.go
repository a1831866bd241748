package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	t.Parallel()
	sb := joe(t)

	res := NewProcess(t, false, withConfig("stats")...).Run(sb.Context(), sb.Runtime())
	require.NoError(t, res.Err)
	out := string(res.Stdout)
	require.Contains(t, out, "3 (60.0%)")
	require.Contains(t, out, "Car")
	require.Contains(t, out, "Bridge")
	require.Contains(t, out, "Unused tags: Tunnel\n")
	require.Less(t, strings.Index(out, "Car"), strings.Index(out, "Bridge"), "tags are sorted by count")
}

func TestStats_Markdown(t *testing.T) {
	t.Parallel()
	sb := joe(t)

	res := NewProcess(t, false, "stats", "--markdown").Run(sb.Context(), sb.Runtime())
	require.NoError(t, res.Err)
	out := string(res.Stdout)
	require.True(t, strings.HasPrefix(out, "# Annotation report\n"))
	require.Contains(t, out, "- Labeled: 3 (60.0%)\n")
	require.Contains(t, out, "| Car | 3 |\n")
	require.Contains(t, out, "| Bridge | 1 |\n")
}

func TestStats_HTML(t *testing.T) {
	t.Parallel()
	sb := joe(t)

	res := NewProcess(t, false, "stats", "--html", "~/report.html").Run(sb.Context(), sb.Runtime())
	require.NoError(t, res.Err)
	require.Contains(t, string(res.Stdout), "Wrote report to")

	page := string(sb.MustReadFile("~/report.html"))
	require.Contains(t, page, "<h1>Annotation report</h1>")
	require.Contains(t, page, "<table>")
	require.Contains(t, page, "<td>Car</td>")
}
