package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/jlrickert/labeler/pkg/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type Deps struct {
	Root     string
	Shutdown func()
	Runtime  *toolkit.Runtime

	ConfigPath string
	// Folder is the image folder for commands that do not take one as an
	// argument. Empty means the working directory.
	Folder   string
	LogFile  string
	LogLevel string
	LogJSON  bool

	// FS replaces the runtime filesystem when set.
	FS      afero.Fs
	Labeler *labeler.Labeler
}

// NewRootCmd builds the root command. PersistentPreRunE creates the
// labeler service and the logger from the persistent flags.
func NewRootCmd(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}
	if deps.Shutdown == nil {
		deps.Shutdown = func() {}
	}

	cmd := &cobra.Command{
		Use:   labeler.DefaultAppName,
		Short: "label image folders for dataset preparation",
		Long: `labeler keeps one annotations.json per image folder and offers an
interactive annotator plus batch tools to convert, split and prune datasets.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := deps.Runtime
			if rt == nil {
				return fmt.Errorf("runtime is required")
			}

			wd, err := rt.Getwd()
			if err != nil {
				return err
			}
			l, err := labeler.New(labeler.Options{
				Root:       wd,
				ConfigPath: deps.ConfigPath,
				Runtime:    rt,
				FS:         deps.FS,
			})
			if err != nil {
				return err
			}
			deps.Labeler = l
			deps.Root = wd

			if deps.LogFile != "" || deps.LogJSON || deps.LogLevel != "" {
				out, err := openLogOutput(deps)
				if err != nil {
					return err
				}
				lg := mylog.NewLogger(mylog.LoggerConfig{
					Out:     out,
					Level:   mylog.ParseLevel(deps.LogLevel),
					JSON:    deps.LogJSON,
					Version: Version,
				})
				rt.Logger = lg
			}
			if rt.Logger == nil {
				rt.Logger = log.NewNopLogger()
			}

			ctx = mylog.WithLogger(ctx, rt.Logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&deps.LogFile, "log-file", "", "write logs to file (default stderr)")
	cmd.PersistentFlags().StringVar(&deps.LogLevel, "log-level", "info", "minimum log level")
	cmd.PersistentFlags().BoolVar(&deps.LogJSON, "log-json", false, "output logs as JSON")
	cmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().StringVarP(&deps.Folder, "folder", "C", "", "image folder (default working directory)")

	cmd.AddCommand(
		NewAnnotateCmd(deps),
		NewAddCmd(deps),
		NewRmCmd(deps),
		NewShowCmd(deps),
		NewListCmd(deps),
		NewTagsCmd(deps),
		NewExportCmd(deps),
		NewSaveCmd(deps),
		NewConvertCmd(deps),
		NewSplitCmd(deps),
		NewPruneCmd(deps),
		NewValidateCmd(deps),
		NewStatsCmd(deps),
		NewWatchCmd(deps),
		NewMCPCmd(deps),
		NewVersionCmd(deps),
	)

	return cmd
}

// openLogOutput returns stderr or the --log-file, opened for append through
// the labeler filesystem. The file is closed by deps.Shutdown.
func openLogOutput(deps *Deps) (io.Writer, error) {
	if deps.LogFile == "" {
		return deps.Runtime.Stream().Err, nil
	}
	path, err := deps.Labeler.ResolvePath(deps.LogFile)
	if err != nil {
		return nil, err
	}
	if err := deps.Labeler.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := deps.Labeler.FS.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	prev := deps.Shutdown
	deps.Shutdown = func() {
		_ = f.Close()
		prev()
	}
	return f, nil
}

// folderOptions picks the folder argument when given, else --folder.
func folderOptions(deps *Deps, args []string) labeler.FolderOptions {
	if len(args) > 0 {
		return labeler.FolderOptions{Folder: args[0]}
	}
	return labeler.FolderOptions{Folder: deps.Folder}
}
