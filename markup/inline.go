package markup

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"lcm/document"
)

// Inline formatting is a two-phase tokenizer. Phase one extracts anchors and
// replaces each with a placeholder token, recording the resolved link and the
// raw inner markup; this must happen before formatting-tag substitution so
// that tags inside link text stay with the link. Phase two replaces
// bold/italic/line-break tags with boundary tokens and walks the pieces left
// to right, maintaining the set of active marks.

// boundary tokens; NUL never appears in legacy content
const (
	tokBoldOpen    = "\x00b\x00"
	tokBoldClose   = "\x00B\x00"
	tokItalicOpen  = "\x00e\x00"
	tokItalicClose = "\x00E\x00"
	tokLineBreak   = "\x00r\x00"
)

var (
	reAnchor = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*(?:"([^"]*)"|'([^']*)')[^>]*>(.*?)</a\s*>`)

	// two historical surface forms each
	reBoldOpen    = regexp.MustCompile(`(?i)<(?:strong|b)(?:\s[^>]*)?>`)
	reBoldClose   = regexp.MustCompile(`(?i)</(?:strong|b)\s*>`)
	reItalicOpen  = regexp.MustCompile(`(?i)<(?:em|i)(?:\s[^>]*)?>`)
	reItalicClose = regexp.MustCompile(`(?i)</(?:em|i)\s*>`)
	reLineBreak   = regexp.MustCompile(`(?i)<br\s*/?\s*>`)

	reToken = regexp.MustCompile("\x00(b|B|e|E|r|l\\d+)\x00")
	reTag   = regexp.MustCompile(`(?s)<[^>]*>`)
)

type linkRef struct {
	key   string
	inner string
}

// inlineState is the active mark set of the walker. The link mark is only
// set while walking a placeholder's inner markup.
type inlineState struct {
	bold, italic bool
	link         document.Mark
}

func (st inlineState) marks() []document.Mark {
	var marks []document.Mark
	if st.bold {
		marks = append(marks, document.MarkBold)
	}
	if st.italic {
		marks = append(marks, document.MarkItalic)
	}
	if st.link != "" {
		marks = append(marks, st.link)
	}
	return marks
}

// formatInline converts one fragment of inline markup into runs plus the
// link definitions they reference. Every fragment yields at least one run.
func (c *Converter) formatInline(fragment string) ([]document.Run, []document.LinkDefinition) {
	var (
		links []document.LinkDefinition
		refs  []linkRef
	)

	work := reAnchor.ReplaceAllStringFunc(fragment, func(m string) string {
		sub := reAnchor.FindStringSubmatch(m)
		href := sub[1]
		if href == "" {
			href = sub[2]
		}
		def := document.LinkDefinition{
			Key:    document.NewKey(),
			URL:    c.Resolve(html.UnescapeString(href)),
			NewTab: true,
		}
		links = append(links, def)
		refs = append(refs, linkRef{key: def.Key, inner: sub[3]})
		return fmt.Sprintf("\x00l%d\x00", len(refs)-1)
	})

	runs := c.tokenizeInline(work, refs, inlineState{})
	if len(runs) == 0 {
		// guarantee at least one run per text block
		runs = []document.Run{{Text: ""}}
	}
	return runs, links
}

// tokenizeInline substitutes boundary tokens and walks the fragment with the
// given entry state. Marks still open at end of fragment are dropped without
// affecting flushed runs, so unbalanced input degrades instead of failing.
func (c *Converter) tokenizeInline(fragment string, refs []linkRef, st inlineState) []document.Run {
	work := reLineBreak.ReplaceAllString(fragment, tokLineBreak)
	work = reBoldOpen.ReplaceAllString(work, tokBoldOpen)
	work = reBoldClose.ReplaceAllString(work, tokBoldClose)
	work = reItalicOpen.ReplaceAllString(work, tokItalicOpen)
	work = reItalicClose.ReplaceAllString(work, tokItalicClose)

	var (
		runs []document.Run
		buf  strings.Builder
	)
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		text := cleanText(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		runs = append(runs, document.Run{Text: text, Marks: st.marks()})
	}

	pos := 0
	for _, loc := range reToken.FindAllStringSubmatchIndex(work, -1) {
		buf.WriteString(work[pos:loc[0]])
		pos = loc[1]

		switch tok := work[loc[2]:loc[3]]; tok {
		case "b", "B":
			flush()
			st.bold = !st.bold
		case "e", "E":
			flush()
			st.italic = !st.italic
		case "r":
			flush()
			// a line break is content, not a block separator
			runs = append(runs, document.Run{Text: "\n"})
		default: // link placeholder
			flush()
			idx, err := strconv.Atoi(tok[1:])
			if err != nil || idx >= len(refs) {
				continue
			}
			// walk the recorded inner markup with the current bold/italic
			// state so formatting spanning the anchor nests correctly; every
			// sub-run shares the link mark
			sub := c.tokenizeInline(refs[idx].inner, refs, inlineState{
				bold:   st.bold,
				italic: st.italic,
				link:   document.Mark(refs[idx].key),
			})
			runs = append(runs, sub...)
		}
	}
	buf.WriteString(work[pos:])
	flush()
	return runs
}

// cleanText strips residual tags the tokenizer does not model and decodes
// character references. Interior whitespace is preserved.
func cleanText(raw string) string {
	return html.UnescapeString(reTag.ReplaceAllString(raw, ""))
}
