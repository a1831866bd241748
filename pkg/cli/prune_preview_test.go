package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintPreview(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, 8)
	for i := range 8 {
		names = append(names, fmt.Sprintf("img%d.jpg", i))
	}

	var buf bytes.Buffer
	printPreview(&buf, names)
	require.Equal(t, "  img0.jpg\n  img1.jpg\n  img2.jpg\n  img3.jpg\n  img4.jpg\n  ... and 3 more\n", buf.String())

	buf.Reset()
	printPreview(&buf, names[:2])
	require.Equal(t, "  img0.jpg\n  img1.jpg\n", buf.String())
}
