package cli_test

import (
	"context"
	"embed"
	"testing"

	tu "github.com/jlrickert/cli-toolkit/sandbox"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/labeler/pkg/cli"
)

// testdata holds the "joe" fixture: a home directory with an annotated
// photos folder, a legacy annotation file, a broken folder and a config.
//
//go:embed all:data/**
var testdata embed.FS

func NewSandbox(t *testing.T, opts ...tu.Option) *tu.Sandbox {
	return tu.NewSandbox(t, &tu.Options{
		Data: testdata,
		Home: "/home/testuser",
		User: "testuser",
	}, opts...)
}

func NewProcess(t *testing.T, isTTY bool, args ...string) *tu.Process {
	return tu.NewProcess(func(ctx context.Context, rt *toolkit.Runtime) (int, error) {
		return cli.Run(ctx, rt, args)
	}, isTTY)
}

// joe returns a sandbox with the joe fixture in the home directory and the
// working directory set to ~/photos.
func joe(t *testing.T) *tu.Sandbox {
	t.Helper()
	sb := NewSandbox(t, tu.WithFixture("joe", "~"))
	sb.Setwd("~/photos")
	return sb
}

// withConfig appends the fixture config flag to args.
func withConfig(args ...string) []string {
	return append(args, "--config", "~/labeler.yaml")
}
