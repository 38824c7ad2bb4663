package grading

import (
	"fmt"
	"strings"
)

const (
	// NoAttachmentsFound is the sentinel content for a submission with no
	// exportable attachments; the empty string is reserved for "not yet
	// fetched".
	NoAttachmentsFound = "no attachments found"

	noNameHeader = "No Name"
)

func importFailedLine(name string) string {
	return fmt.Sprintf("%s could not be imported because it is not from a supported editable document type", name)
}

type (
	// StringifiedAttachment is one exported document: a two-line header
	// (title + "=" underline) and the body lines. Keeping the header apart
	// from the body lets downstream services transform content while
	// re-identifying documents by title, like in the case of diffing.
	StringifiedAttachment struct {
		Header  []string
		Content []string
	}

	ConcatOutput struct {
		Data []StringifiedAttachment
	}
)

func newHeader(name string) []string {
	if name == "" {
		return []string{noNameHeader, strings.Repeat("=", len(noNameHeader))}
	}
	return []string{name, strings.Repeat("=", len(name))}
}

// Combine flattens the attachments into a single ordered line sequence,
// normalizing headers on the way. Student document titles follow the naming
// convention `Student Name - Document Name`; the owner prefix is stripped so
// the header text-matches the corresponding reference header when diffing.
func (out ConcatOutput) Combine() []string {
	lines := make([]string, 0)
	for _, att := range out.Data {
		header := att.Header
		if idx := strings.Index(header[0], " - "); idx >= 0 {
			title := header[0][idx+len(" - "):]
			// a title may itself contain " - "; only the first prefix goes
			if next := strings.Index(title, " - "); next >= 0 {
				title = title[:next]
			}
			header = []string{title, strings.Repeat("=", len(title))}
		}
		lines = append(lines, header...)
		lines = append(lines, att.Content...)
	}
	return lines
}

// CombinedString is the flattened form that gets persisted and diffed.
// No attachments yields the NoAttachmentsFound sentinel, never "".
func (out ConcatOutput) CombinedString() string {
	if len(out.Data) == 0 {
		return NoAttachmentsFound
	}
	return strings.Join(out.Combine(), "\n")
}

// ParseOrder extracts the document titles back out of content previously
// combined by CombinedString: each title is the trimmed line preceding an
// underline line.
func ParseOrder(content string) []string {
	lines := strings.Split(content, "\n")
	titles := make([]string, 0)
	for i, l := range lines {
		if strings.Contains(l, "===") && i > 0 {
			titles = append(titles, strings.TrimSpace(lines[i-1]))
		}
	}
	return titles
}

// ReorderAttachments reorders a student's attachments to match the reference
// document order, so diffs line up document by document. Student attachment
// names include, but do not equal, the reference names:
//
//	| Reference Name | Student Attachment Name |
//	| -------------- | ----------------------- |
//	| foo document   | Jane Doe - foo document |
//
// so a reference title matching is a substring containment check. The first
// match wins; unmatched reference titles are skipped. Student attachments
// that match no reference title are returned separately and excluded from
// the ordered output.
func ReorderAttachments(order []string, attachments []Attachment) (ordered, unmatched []Attachment) {
	used := make(map[int]bool, len(attachments))
	for _, title := range order {
		for i, att := range attachments {
			if !used[i] && strings.Contains(att.Name, title) {
				ordered = append(ordered, att)
				used[i] = true
				break
			}
		}
	}
	for i, att := range attachments {
		if !used[i] {
			unmatched = append(unmatched, att)
		}
	}
	return ordered, unmatched
}
