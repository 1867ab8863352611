// Package describe turns decoded CMS structures into an ordered, human-readable
// report made of structured lines.
package describe

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for option parsing.
var (
	ErrUnknownMode     = errors.New("unknown interpretation mode")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownFormat   = errors.New("unknown output format")
)

// Mode selects which signed attributes are recognized.
// CAdES additionally reports signing-certificate-v2 and signature-policy-id.
type Mode int

const (
	ModeCMS Mode = iota
	ModeCAdES
)

func (m Mode) String() string {
	if m == ModeCAdES {
		return "cades"
	}
	return "cms"
}

// ParseMode parses "cms" or "cades" (case-insensitive). An empty string is ModeCMS.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cms":
		return ModeCMS, nil
	case "cades":
		return ModeCAdES, nil
	default:
		return ModeCMS, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Section groups report lines. Sections are emitted in declaration order.
type Section int

const (
	SectionHeader Section = iota
	SectionVersion
	SectionRecipients
	SectionContent
	SectionEncrypted
	SectionSigners
	SectionAttributes

	numSections
)

var sectionNames = [numSections]string{
	"header", "version", "recipients", "content", "encrypted", "signers", "attributes",
}

func (s Section) String() string {
	if s < 0 || s >= numSections {
		return "unknown"
	}
	return sectionNames[s]
}

// Line is one entry of a Descriptor. Key selects the label, Value is inserted
// into it, and Depth is the indentation level in text output.
type Line struct {
	Section Section
	Key     Key
	Value   string
	Depth   int
}

// Descriptor is the report for one ContentInfo.
type Descriptor struct {
	ContentType string
	Mode        Mode
	Lines       []Line
}

// Find returns the first line with the given key.
func (d *Descriptor) Find(key Key) (Line, bool) {
	for _, l := range d.Lines {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}

// Count returns the number of lines with the given key.
func (d *Descriptor) Count(key Key) int {
	n := 0
	for _, l := range d.Lines {
		if l.Key == key {
			n++
		}
	}
	return n
}

// builder buckets lines per section so the final order is fixed no matter in
// which order extractors emit them.
type builder struct {
	sections [numSections][]Line
}

func (b *builder) add(s Section, depth int, key Key, value string) {
	b.sections[s] = append(b.sections[s], Line{Section: s, Key: key, Value: value, Depth: depth})
}

// addLines appends lines to section s, shifting their depth by offset.
func (b *builder) addLines(s Section, offset int, lines []Line) {
	for _, l := range lines {
		l.Section = s
		l.Depth += offset
		b.sections[s] = append(b.sections[s], l)
	}
}

func (b *builder) lines() []Line {
	n := 0
	for _, sec := range b.sections {
		n += len(sec)
	}
	out := make([]Line, 0, n)
	for _, sec := range b.sections {
		out = append(out, sec...)
	}
	return out
}
