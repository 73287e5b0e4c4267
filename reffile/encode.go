package reffile

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// ENCODING — ASDF-flavoured YAML
// ============================================================================
// Layout of an encoded file:
//
//	#ASDF 1.0.0
//	#ASDF_STANDARD 1.5.0
//	%YAML 1.1
//	%TAG ! tag:stsci.edu:asdf/
//	---
//	!core/asdf-1.1.0
//	meta: ...
//	...
//
// Local "!" tags expand to tag:stsci.edu:asdf/ through the %TAG directive.
// ============================================================================

// RootTag is the tag of the document root.
const RootTag = "!core/asdf-1.1.0"

const header = "#ASDF 1.0.0\n" +
	"#ASDF_STANDARD 1.5.0\n" +
	"%YAML 1.1\n" +
	"%TAG ! tag:stsci.edu:asdf/\n" +
	"---\n"

const footer = "...\n"

// Encode writes m to w. The model is not validated; see WriteFile.
func Encode(w io.Writer, m Model) error {
	var root yaml.Node
	if err := root.Encode(m); err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}
	root.Tag = RootTag

	var body bytes.Buffer
	enc := yaml.NewEncoder(&body)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, footer)
	return err
}

// Marshal returns the encoded bytes of m.
func Marshal(m Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an encoded document into m.
func Decode(r io.Reader, m Model) error {
	if err := yaml.NewDecoder(r).Decode(m); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
