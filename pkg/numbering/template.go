package numbering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// DefaultSequencePadding is the zero-padding width applied to {SEQ} when the
// template does not specify one.
const DefaultSequencePadding = 4

// TemplateData carries the values available to a number format template.
type TemplateData struct {
	Level    int
	Category string
	Year     int
	Sequence int
	Prefix   string
	Suffix   string
}

// Render expands a format template into a document number.
//
// Recognized placeholders (case-insensitive):
//
//	{LEVEL}     document level
//	{CATEGORY}  category code
//	{YEAR}      four-digit year
//	{YY}        two-digit year
//	{SEQ}       sequence, zero-padded to the default width
//	{SEQ:n}     sequence, zero-padded to n digits
//	{PREFIX}    configured prefix
//	{SUFFIX}    configured suffix
//
// Unknown placeholders are left verbatim rather than failing: a malformed
// template produces an auditable number instead of blocking document
// creation, and callers can catch it through the preview operation.
func Render(template string, data TemplateData) string {
	var b strings.Builder
	for i := 0; i < len(template); {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}

		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			// Unterminated brace, emit the rest verbatim.
			b.WriteString(template[i:])
			break
		}
		token := template[i+1 : i+end]
		expanded, ok := expand(token, data)
		if ok {
			b.WriteString(expanded)
		} else {
			b.WriteString(template[i : i+end+1])
		}
		i += end + 1
	}
	return b.String()
}

// expand resolves one placeholder token. Returns false for tokens the
// renderer does not recognize.
func expand(token string, data TemplateData) (string, bool) {
	name := token
	arg := ""
	if idx := strings.IndexByte(token, ':'); idx >= 0 {
		name = token[:idx]
		arg = token[idx+1:]
	}

	// Placeholder names are matched case-insensitively so {seq} and {Seq}
	// behave like {SEQ}.
	switch strcase.ToScreamingSnake(name) {
	case "LEVEL":
		return strconv.Itoa(data.Level), true
	case "CATEGORY":
		return data.Category, true
	case "YEAR":
		return strconv.Itoa(data.Year), true
	case "YY":
		return fmt.Sprintf("%02d", data.Year%100), true
	case "SEQ", "SEQUENCE":
		width := DefaultSequencePadding
		if arg != "" {
			if w, err := strconv.Atoi(arg); err == nil && w > 0 {
				width = w
			}
		}
		return fmt.Sprintf("%0*d", width, data.Sequence), true
	case "PREFIX":
		return data.Prefix, true
	case "SUFFIX":
		return data.Suffix, true
	default:
		return "", false
	}
}
