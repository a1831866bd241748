package labeler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/annotation"
)

type AnnotateOptions struct {
	FolderOptions

	// Start positions the cursor on this image.
	Start string
	In    io.Reader
	Out   io.Writer
	// Prompt prints a prompt before every command. Turn it off for piped
	// input.
	Prompt bool
}

const annotateHelp = `Commands:
  n, next            next image
  p, prev            previous image
  first, last        jump to the first or last image
  g, goto NAME       jump to an image
  +TAG               add TAG to the current image
  -TAG               remove TAG from the current image
  #N                 add the N-th tag from the tag list
  t, tags [PREFIX]   numbered tag list, optionally filtered
  s, show            show the current image
  save               write the annotation file
  export PATH        write the annotations to PATH
  h, help            this help
  q, quit            leave (q twice discards unsaved changes)
`

// Annotate runs a line-oriented labeling session over a folder. It returns
// when the input ends, the user quits or ctx is cancelled.
func (l *Labeler) Annotate(ctx context.Context, opts AnnotateOptions) error {
	if opts.In == nil || opts.Out == nil {
		return fmt.Errorf("input and output streams are required")
	}
	s, report, err := l.Open(ctx, opts.FolderOptions)
	if err != nil {
		return err
	}
	r := &repl{l: l, s: s, out: opts.Out}

	for _, w := range report.Warnings {
		r.printf("Warning: %v\n", w)
	}
	if msg := LoadMessage(report); msg != "" {
		r.printf("%s\n", msg)
	}
	if s.Len() == 0 {
		r.printf("No images found in %s\n", s.Folder)
	}
	if opts.Start != "" {
		if err := s.Seek(opts.Start); err != nil {
			r.printf("Warning: %v\n", err)
		}
	}
	if s.Autosave() == annotation.AutosaveManual {
		r.printf("Autosave is off; use save to write changes\n")
	}
	r.show()

	scanner := bufio.NewScanner(opts.In)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Prompt {
			r.printf("> ")
		}
		if !scanner.Scan() {
			break
		}
		if done := r.exec(ctx, strings.TrimSpace(scanner.Text())); done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}
	if s.Dirty() {
		r.printf("Warning: unsaved changes were discarded\n")
		mylog.LoggerFromContext(ctx).Warn("annotate ended with unsaved changes", "folder", s.Folder)
	}
	return nil
}

type repl struct {
	l        *Labeler
	s        *annotation.Session
	out      io.Writer
	quitOnce bool
}

func (r *repl) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *repl) show() {
	name, ok := r.s.Current()
	if !ok {
		r.printf("%s\n", r.s.Position())
		return
	}
	r.printf("%s: %s\n", r.s.Position(), name)
	r.printf("Labels: %s\n", FormatLabels(r.s.Labels()))
}

// exec runs one command line and reports whether the session should end.
func (r *repl) exec(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	if cmd != "q" && cmd != "quit" {
		r.quitOnce = false
	}

	switch {
	case cmd == "n" || cmd == "next":
		if !r.s.Next() {
			r.printf("Already at the last image\n")
		}
		r.show()
	case cmd == "p" || cmd == "prev":
		if !r.s.Previous() {
			r.printf("Already at the first image\n")
		}
		r.show()
	case cmd == "first":
		r.s.First()
		r.show()
	case cmd == "last":
		r.s.Last()
		r.show()
	case cmd == "g" || cmd == "goto":
		if err := r.s.Seek(arg); err != nil {
			r.printf("Error: %v\n", err)
			return false
		}
		r.show()
	case strings.HasPrefix(line, "+"):
		r.add(ctx, line[1:])
	case strings.HasPrefix(line, "-"):
		_, err := r.s.Remove(ctx, line[1:])
		r.reportSave(err)
		r.show()
	case strings.HasPrefix(line, "#"):
		n, err := strconv.Atoi(strings.TrimSpace(line[1:]))
		tags := r.s.Tags()
		if err != nil || n < 1 || n > len(tags) {
			r.printf("Error: no tag #%s (have %d)\n", strings.TrimSpace(line[1:]), len(tags))
			return false
		}
		r.add(ctx, tags[n-1])
	case cmd == "t" || cmd == "tags":
		r.listTags(arg)
	case cmd == "s" || cmd == "show":
		r.show()
	case cmd == "save":
		if err := r.s.Save(ctx); err != nil {
			r.printf("Error: %v\n", err)
			return false
		}
		r.printf("%s\n", SaveResult{Path: r.s.Path(), Images: r.s.Labeled()}.Message())
	case cmd == "export":
		r.export(ctx, arg)
	case cmd == "h" || cmd == "help" || cmd == "?":
		r.printf("%s", annotateHelp)
	case cmd == "q" || cmd == "quit":
		if r.s.Dirty() && !r.quitOnce {
			r.quitOnce = true
			r.printf("Unsaved changes. Run save, or q again to discard them\n")
			return false
		}
		return true
	default:
		r.printf("Unknown command %q, type help for a list\n", cmd)
	}
	return false
}

func (r *repl) add(ctx context.Context, tag string) {
	_, err := r.s.Add(ctx, tag)
	r.reportSave(err)
	r.show()
}

func (r *repl) reportSave(err error) {
	if err != nil {
		r.printf("Warning: %v\n", err)
	}
}

func (r *repl) listTags(prefix string) {
	all := r.s.Tags()
	if len(all) == 0 {
		r.printf("No tags yet\n")
		return
	}
	want := map[string]bool{}
	for _, t := range r.s.TagsMatching(prefix) {
		want[t] = true
	}
	for i, t := range all {
		if want[t] {
			r.printf("%3d  %s\n", i+1, t)
		}
	}
}

func (r *repl) export(ctx context.Context, path string) {
	if path == "" {
		r.printf("Error: export needs a destination path\n")
		return
	}
	if r.s.Labeled() == 0 {
		r.printf("No annotations to export\n")
		return
	}
	path, err := r.l.ResolvePath(path)
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	if err := r.s.Export(ctx, path); err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("%s\n", SaveResult{Path: path, Images: r.s.Labeled()}.Message())
}
