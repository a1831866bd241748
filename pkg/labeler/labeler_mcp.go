package labeler

import (
	"context"
	"fmt"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type imageInput struct {
	Image string `json:"image" jsonschema:"image file name inside the folder"`
}

type editInput struct {
	Image string   `json:"image" jsonschema:"image file name inside the folder"`
	Tags  []string `json:"tags" jsonschema:"tags to apply in order"`
}

type setLabelsInput struct {
	Image  string   `json:"image" jsonschema:"image file name inside the folder"`
	Labels []string `json:"labels" jsonschema:"complete new label list, empty clears the image"`
}

type listInput struct {
	Labeled   bool   `json:"labeled,omitempty" jsonschema:"only images with labels"`
	Unlabeled bool   `json:"unlabeled,omitempty" jsonschema:"only images without labels"`
	Expr      string `json:"expr,omitempty" jsonschema:"tag expression such as: Car and not Bridge"`
}

type tagsInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"case-insensitive prefix filter"`
}

type matchInput struct {
	Expr string `json:"expr" jsonschema:"tag expression such as: Car and not Bridge"`
}

type emptyInput struct{}

type statusOutput struct {
	Folder   string   `json:"folder"`
	Images   int      `json:"images"`
	Labeled  int      `json:"labeled"`
	Image    string   `json:"image"`
	Position string   `json:"position"`
	Labels   []string `json:"labels"`
	Autosave string   `json:"autosave"`
	Dirty    bool     `json:"dirty"`
}

type imageEntry struct {
	Index  int      `json:"index"`
	Image  string   `json:"image"`
	Labels []string `json:"labels"`
}

type imagesOutput struct {
	Images []imageEntry `json:"images"`
}

type labelsOutput struct {
	Image   string   `json:"image"`
	Labels  []string `json:"labels"`
	Changed []string `json:"changed,omitempty"`
	// Warning carries an autosave failure. The change is kept in memory.
	Warning string `json:"warning,omitempty"`
}

type tagsOutput struct {
	Tags []string `json:"tags"`
}

type matchOutput struct {
	Images []string `json:"images"`
}

type saveOutput struct {
	Path   string `json:"path"`
	Images int    `json:"images"`
}

// NewMCPServer exposes one session as MCP tools. Every tool goes through
// the session, so concurrent calls are serialized by its lock.
func NewMCPServer(s *annotation.Session, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: DefaultAppName, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Summarize the open folder and the image under the cursor.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, statusOutput, error) {
		name, _ := s.Current()
		return nil, statusOutput{
			Folder:   s.Folder,
			Images:   s.Len(),
			Labeled:  s.Labeled(),
			Image:    name,
			Position: s.Position(),
			Labels:   s.Labels(),
			Autosave: s.Autosave().String(),
			Dirty:    s.Dirty(),
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_images",
		Description: "List images of the folder in navigation order with their labels.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in listInput) (*mcp.CallToolResult, imagesOutput, error) {
		if in.Labeled && in.Unlabeled {
			return nil, imagesOutput{}, fmt.Errorf("labeled and unlabeled are mutually exclusive")
		}
		var expr *annotation.TagExpr
		if in.Expr != "" {
			e, err := annotation.ParseTagExpr(in.Expr)
			if err != nil {
				return nil, imagesOutput{}, err
			}
			expr = &e
		}
		out := imagesOutput{Images: make([]imageEntry, 0)}
		for i, name := range s.Files() {
			labels := s.LabelsOf(name)
			if (in.Labeled && len(labels) == 0) || (in.Unlabeled && len(labels) > 0) {
				continue
			}
			if expr != nil && !expr.Match(labels) {
				continue
			}
			out.Images = append(out.Images, imageEntry{Index: i + 1, Image: name, Labels: labels})
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_labels",
		Description: "Return the labels of one image.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in imageInput) (*mcp.CallToolResult, labelsOutput, error) {
		if !s.Has(in.Image) {
			return nil, labelsOutput{}, &annotation.ImageNotFoundError{Name: in.Image}
		}
		return nil, labelsOutput{Image: in.Image, Labels: s.LabelsOf(in.Image)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_labels",
		Description: "Append tags to an image. Blank and already present tags are ignored.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in editInput) (*mcp.CallToolResult, labelsOutput, error) {
		return editTool(ctx, s, in, s.AddTo)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_labels",
		Description: "Remove tags from an image. Absent tags are ignored.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in editInput) (*mcp.CallToolResult, labelsOutput, error) {
		return editTool(ctx, s, in, s.RemoveFrom)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_labels",
		Description: "Replace the whole label list of an image.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in setLabelsInput) (*mcp.CallToolResult, labelsOutput, error) {
		out := labelsOutput{Image: in.Image}
		err := s.SetLabels(ctx, in.Image, in.Labels)
		if annotation.IsImageNotFound(err) {
			return nil, out, err
		}
		if err != nil {
			out.Warning = err.Error()
		}
		out.Labels = s.LabelsOf(in.Image)
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tags",
		Description: "List the tag vocabulary of the folder.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in tagsInput) (*mcp.CallToolResult, tagsOutput, error) {
		return nil, tagsOutput{Tags: s.TagsMatching(in.Prefix)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "match",
		Description: "Find images whose labels satisfy a tag expression (and, or, not, parentheses, quotes).",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in matchInput) (*mcp.CallToolResult, matchOutput, error) {
		expr, err := annotation.ParseTagExpr(in.Expr)
		if err != nil {
			return nil, matchOutput{}, err
		}
		return nil, matchOutput{Images: s.Match(expr)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save",
		Description: "Write the annotation file now.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, saveOutput, error) {
		if err := s.Save(ctx); err != nil {
			return nil, saveOutput{}, err
		}
		return nil, saveOutput{Path: s.Path(), Images: s.Labeled()}, nil
	})

	return server
}

func editTool(
	ctx context.Context,
	s *annotation.Session,
	in editInput,
	apply func(context.Context, string, string) (bool, error),
) (*mcp.CallToolResult, labelsOutput, error) {
	out := labelsOutput{Image: in.Image}
	if !s.Has(in.Image) {
		return nil, out, &annotation.ImageNotFoundError{Name: in.Image}
	}
	for _, tag := range in.Tags {
		changed, err := apply(ctx, in.Image, tag)
		if changed {
			out.Changed = append(out.Changed, tag)
		}
		if err != nil {
			out.Warning = err.Error()
		}
	}
	out.Labels = s.LabelsOf(in.Image)
	return nil, out, nil
}

type MCPOptions struct {
	FolderOptions

	// Version is reported to clients.
	Version string
	// Transport defaults to stdio.
	Transport mcp.Transport
}

// ServeMCP opens the folder and serves it over MCP until the client
// disconnects or ctx is cancelled.
func (l *Labeler) ServeMCP(ctx context.Context, opts MCPOptions) error {
	s, report, err := l.Open(ctx, opts.FolderOptions)
	if err != nil {
		return err
	}
	if w := report.Warning(); w != nil {
		mylog.LoggerFromContext(ctx).Warn("serving folder with load warnings", "folder", s.Folder, "err", w)
	}
	transport := opts.Transport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	return NewMCPServer(s, opts.Version).Run(ctx, transport)
}
