package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jlrickert/cli-toolkit/toolkit"
)

// Run executes the labeler command tree with args. Errors are rendered to
// the runtime's stderr. The exit code is 130 when the command was
// interrupted and 1 for any other failure.
func Run(ctx context.Context, rt *toolkit.Runtime, args []string) (int, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	streams := rt.Stream()
	deps := &Deps{Runtime: rt}
	cmd := NewRootCmd(deps)
	cmd.SetArgs(args)
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	err := cmd.ExecuteContext(ctx)
	deps.Shutdown()
	if err != nil {
		if errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return 130, err
		}
		_, _ = fmt.Fprintf(streams.Err, "Error: %s\n", renderUserError(err, deps))
		return 1, err
	}
	return 0, nil
}
