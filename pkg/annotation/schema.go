package annotation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "labeler://annotations.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal annotation schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add annotation schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Violation is one strict-validation finding.
type Violation struct {
	// Location is a JSON pointer into the document, e.g. "/3/annotations/1".
	Location string
	// Keyword is the schema keyword that failed, e.g. "uniqueItems".
	Keyword string
	Message string
}

func (v Violation) String() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, v.Message)
}

// Validate checks data strictly against the annotation file schema. Loading
// is more lenient than this; Validate exists to flag files that other
// tooling may reject. A nil result means the file is valid.
func Validate(data []byte) ([]Violation, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []Violation{{Keyword: "json", Message: err.Error()}}, nil
	}

	err = sch.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}

	p := message.NewPrinter(language.English)
	out := make([]Violation, 0)
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := ""
			if len(e.InstanceLocation) > 0 {
				loc = "/" + strings.Join(e.InstanceLocation, "/")
			}
			out = append(out, Violation{
				Location: loc,
				Keyword:  strings.Join(e.ErrorKind.KeywordPath(), "/"),
				Message:  e.ErrorKind.LocalizedString(p),
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	slices.SortStableFunc(out, func(a, b Violation) int {
		return strings.Compare(a.Location, b.Location)
	})
	return out, nil
}
