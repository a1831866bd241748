package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one entry of the annotation file: an image filename and its
// ordered label list.
type Record struct {
	Image  string   `json:"image"`
	Labels []string `json:"annotations"`
}

// wireRecord is the tolerant read shape. Both filename keys are optional so
// that the precedence rule can be applied after decoding.
type wireRecord struct {
	Image       *string  `json:"image"`
	Filename    *string  `json:"filename"`
	Annotations []string `json:"annotations"`
}

func (w wireRecord) name() string {
	switch {
	case w.Image != nil:
		return *w.Image
	case w.Filename != nil:
		return *w.Filename
	default:
		return ""
	}
}

// DecodeRecords parses annotation file bytes. It is the only place that
// knows about the legacy "filename" key: "image" wins when both are present,
// "filename" is used otherwise, and a record with neither gets an empty
// name. The top-level value must be an array of objects.
func DecodeRecords(data []byte) ([]Record, error) {
	var raw []wireRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode records: top-level value is null")
	}
	if dec.More() {
		return nil, fmt.Errorf("decode records: trailing data after array")
	}

	out := make([]Record, 0, len(raw))
	for _, w := range raw {
		labels := w.Annotations
		if labels == nil {
			labels = []string{}
		}
		out = append(out, Record{Image: w.name(), Labels: labels})
	}
	return out, nil
}

// EncodeRecords renders records in the canonical layout: the "image" key
// only, pretty printed with indent spaces, HTML characters left unescaped
// and a trailing newline. An indent of zero or less selects DefaultIndent.
// Output is deterministic for a given input.
func EncodeRecords(records []Record, indent int) ([]byte, error) {
	if indent <= 0 {
		indent = DefaultIndent
	}
	normalized := make([]Record, 0, len(records))
	for _, r := range records {
		labels := r.Labels
		if labels == nil {
			labels = []string{}
		}
		normalized = append(normalized, Record{Image: r.Image, Labels: labels})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", indent))
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeLabels trims every label, drops empty ones and removes duplicates
// keeping the first occurrence.
func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
