package describe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding of a Descriptor.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatCBOR:
		return "cbor"
	default:
		return "text"
	}
}

// MediaType returns the HTTP media type of the format.
func (f Format) MediaType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatCBOR:
		return "application/cbor"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat parses "text", "json", "yaml" or "cbor". An empty string is FormatText.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return FormatText, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Report is the serializable form of a Descriptor with localized text.
type Report struct {
	ContentType string         `json:"content_type" yaml:"content_type" cbor:"content_type"`
	Mode        string         `json:"mode" yaml:"mode" cbor:"mode"`
	Language    string         `json:"language" yaml:"language" cbor:"language"`
	Lines       []RenderedLine `json:"lines" yaml:"lines" cbor:"lines"`
}

// RenderedLine is one Line with its label applied.
type RenderedLine struct {
	Section string `json:"section" yaml:"section" cbor:"section"`
	Key     string `json:"key" yaml:"key" cbor:"key"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty" cbor:"value,omitempty"`
	Depth   int    `json:"depth" yaml:"depth" cbor:"depth"`
	Text    string `json:"text" yaml:"text" cbor:"text"`
}

// Localize applies the labels of lang to every line.
func (d *Descriptor) Localize(lang Language) Report {
	r := Report{
		ContentType: d.ContentType,
		Mode:        d.Mode.String(),
		Language:    lang.String(),
		Lines:       make([]RenderedLine, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		r.Lines = append(r.Lines, RenderedLine{
			Section: l.Section.String(),
			Key:     string(l.Key),
			Value:   l.Value,
			Depth:   l.Depth,
			Text:    Label(lang, l),
		})
	}
	return r
}

// TextLines renders each line with its label in lang, indented by one tab per
// depth level. The result is index-aligned with d.Lines.
func (d *Descriptor) TextLines(lang Language) []string {
	out := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = strings.Repeat("\t", l.Depth) + Label(lang, l)
	}
	return out
}

// Text renders the Descriptor as tab-indented lines separated by "\n".
func (d *Descriptor) Text(lang Language) string {
	return strings.Join(d.TextLines(lang), "\n")
}

// Render writes d to w in the requested format.
func Render(w io.Writer, d *Descriptor, format Format, lang Language) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, d.Text(lang)+"\n")
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d.Localize(lang))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d.Localize(lang)); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		data, err := cbor.Marshal(d.Localize(lang))
		if err != nil {
			return fmt.Errorf("failed to encode CBOR: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
	}
}
