// Package cli holds helpers shared by the cmsinfo commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/remiblancher/cmsinfo/pkg/describe"
)

// ReadInput reads a file, or stdin when path is "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// WriteText writes the report as indented text. Top-level lines that open a
// block (their successor is nested) are highlighted as section headers.
func WriteText(w io.Writer, d *describe.Descriptor, lang describe.Language) error {
	var sb strings.Builder
	for i, text := range d.TextLines(lang) {
		if d.Lines[i].Depth == 0 && i+1 < len(d.Lines) && d.Lines[i+1].Depth > 0 {
			text = ColorSection.Sprint(text)
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteReport renders d in format to w. Text output goes through WriteText.
func WriteReport(w io.Writer, d *describe.Descriptor, format describe.Format, lang describe.Language) error {
	if format == describe.FormatText {
		return WriteText(w, d, lang)
	}
	return describe.Render(w, d, format, lang)
}

// WriteFile renders d in format to path.
func WriteFile(path string, d *describe.Descriptor, format describe.Format, lang describe.Language) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := describe.Render(f, d, format, lang); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
