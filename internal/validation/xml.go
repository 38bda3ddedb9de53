// Package validation provides strict validation of candidate BPMN documents.
//
// It covers two input shapes: raw XML text coming back from a language model
// (cleaned of markdown fencing and parsed without recovery) and normalized
// JSON process descriptions checked against an embedded JSON Schema.
package validation

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// XMLResult reports the outcome of a validation attempt. On success CleanXML
// holds the fence-stripped document and Err is empty; on failure CleanXML is
// empty and Err carries a message suitable as corrective context for the next
// generation attempt.
type XMLResult struct {
	CleanXML string
	Valid    bool
	Err      string
}

var fencedXMLPattern = regexp.MustCompile("(?s)```(?:xml)?\\s*\\n?(.*?)```")

// CleanXML strips incidental markdown fencing from model output. A fenced
// block tagged as xml is extracted and trimmed; otherwise the input is
// trimmed and stray fence markers are removed.
func CleanXML(raw string) string {
	if m := fencedXMLPattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimSpace(strings.ReplaceAll(clean, "```", ""))
	}
	return clean
}

// ValidateXML cleans the candidate text and attempts a strict, non-recovering
// parse. A parser that silently repairs malformed markup would hide the error
// the upstream generator needs to see, so every token is decoded in strict
// mode and the first failure aborts the document. The token walk also enforces
// document-level structure: exactly one root element, no character data
// outside it, so prose surrounding un-fenced model output or a second
// top-level element is rejected rather than handed to the renderer.
func ValidateXML(raw string) XMLResult {
	clean := CleanXML(raw)

	dec := xml.NewDecoder(strings.NewReader(clean))
	dec.Strict = true

	depth := 0
	rootClosed := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if syn, ok := err.(*xml.SyntaxError); ok {
				col := columnAt(clean, dec.InputOffset())
				return XMLResult{
					Valid: false,
					Err:   fmt.Sprintf("XML Syntax Error: %s at line %d, column %d", syn.Msg, syn.Line, col),
				}
			}
			return XMLResult{Valid: false, Err: fmt.Sprintf("Critical Error: %v", err)}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && rootClosed {
				return syntaxErrorAt(clean, dec.InputOffset(), "extra content at the end of the document")
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootClosed = true
			}
		case xml.CharData:
			if depth == 0 && strings.TrimSpace(string(t)) != "" {
				msg := "start tag expected, '<' not found"
				if rootClosed {
					msg = "extra content at the end of the document"
				}
				return syntaxErrorAt(clean, dec.InputOffset(), msg)
			}
		}
	}

	if !rootClosed {
		return XMLResult{Valid: false, Err: "XML Syntax Error: document is empty at line 1, column 1"}
	}
	return XMLResult{CleanXML: clean, Valid: true}
}

// syntaxErrorAt builds a structural failure result positioned at a byte offset.
func syntaxErrorAt(s string, offset int64, msg string) XMLResult {
	return XMLResult{
		Valid: false,
		Err:   fmt.Sprintf("XML Syntax Error: %s at line %d, column %d", msg, lineAt(s, offset), columnAt(s, offset)),
	}
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(s string, offset int64) int {
	if offset > int64(len(s)) {
		offset = int64(len(s))
	}
	return 1 + strings.Count(s[:offset], "\n")
}

// columnAt converts a byte offset into a 1-based column number.
func columnAt(s string, offset int64) int {
	if offset > int64(len(s)) {
		offset = int64(len(s))
	}
	nl := strings.LastIndexByte(s[:offset], '\n')
	return int(offset) - nl
}
