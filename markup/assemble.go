package markup

import (
	"regexp"
	"strconv"
	"strings"

	"lcm/document"
)

// Document assembly: a state machine over the segmented event stream. No
// event ever aborts the conversion; handlers that cannot extract meaningful
// content contribute zero nodes instead of empty ones.

// media constructs that may interrupt a paragraph's text flow
var reInlineMedia = regexp.MustCompile(`(?is)<img(?:\s[^>]*)?>|\[image(?:\s[^\]]*)?\]|<iframe(?:\s[^>]*)?>(?:\s*</iframe\s*>)?`)

// Convert turns one legacy markup string into a document. Empty or
// whitespace-only input yields an empty document, never an error.
func (c *Converter) Convert(src string) *document.Document {
	doc := &document.Document{}
	if strings.TrimSpace(src) == "" {
		return doc
	}

	consumed := 0
	for _, ev := range segment(src) {
		if ev.offset < consumed {
			// inner match already owned by an outer handler
			continue
		}
		switch ev.kind {
		case eventHeading:
			c.handleHeading(doc, ev)
		case eventParagraph:
			c.handleParagraph(doc, ev)
		case eventUnorderedList:
			c.handleList(doc, ev, false)
		case eventOrderedList:
			c.handleList(doc, ev, true)
		case eventNativeImage:
			if media := c.mediaFromNativeImage(ev.raw); media != nil {
				doc.Nodes = append(doc.Nodes, document.NewMediaNode(media))
			}
		case eventShortcodeImage:
			if media := c.mediaFromShortcode(ev.raw); media != nil {
				doc.Nodes = append(doc.Nodes, document.NewMediaNode(media))
			}
		case eventVideo:
			if video := videoFromIframe(ev.raw); video != nil {
				doc.Nodes = append(doc.Nodes, document.NewVideoNode(video))
			}
		case eventRule:
			doc.Nodes = append(doc.Nodes, document.NewSeparatorNode())
		case eventColumnBreak:
			// the marker itself is never reproduced literally
			if !c.opt.DropColumnBreaks {
				doc.Nodes = append(doc.Nodes, document.NewColumnBreakNode())
			}
		case eventEmbed:
			if id, err := strconv.ParseInt(ev.groups[0], 10, 64); err == nil {
				doc.Nodes = append(doc.Nodes, document.NewCrossRefNode(id))
			}
		}
		consumed = ev.end
	}
	return doc
}

// headingStyle collapses a source heading level 1..6 into the styles the
// target schema accepts.
func (c *Converter) headingStyle(level int) document.BlockStyle {
	if c.opt.HeadingLevels >= 2 && level > 2 {
		return document.StyleSubheading
	}
	return document.StyleHeading
}

// handleHeading emits the heading text and, when the heading body embeds an
// image construct, the image as a sibling node after the text.
func (c *Converter) handleHeading(doc *document.Document, ev blockEvent) {
	level, err := strconv.Atoi(ev.groups[0])
	if err != nil {
		level = 1
	}
	body := ev.groups[1]

	var embedded []document.Node
	text := reInlineMedia.ReplaceAllStringFunc(body, func(m string) string {
		if node, ok := c.mediaNodeFromMatch(m); ok {
			embedded = append(embedded, node)
		}
		return ""
	})

	c.appendTextBlock(doc, &document.TextBlock{Style: c.headingStyle(level)}, text)
	doc.Nodes = append(doc.Nodes, embedded...)
}

// handleParagraph emits one text block for a plain paragraph. Paragraphs
// carrying embedded media are split at each occurrence into alternating
// text and media nodes, preserving reading order.
func (c *Converter) handleParagraph(doc *document.Document, ev blockEvent) {
	body := ev.groups[0]

	locs := reInlineMedia.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		c.appendTextBlock(doc, &document.TextBlock{Style: document.StyleNormal}, body)
		return
	}

	pos := 0
	for _, loc := range locs {
		c.appendTextBlock(doc, &document.TextBlock{Style: document.StyleNormal}, body[pos:loc[0]])
		if node, ok := c.mediaNodeFromMatch(body[loc[0]:loc[1]]); ok {
			doc.Nodes = append(doc.Nodes, node)
		}
		pos = loc[1]
	}
	c.appendTextBlock(doc, &document.TextBlock{Style: document.StyleNormal}, body[pos:])
}

// handleList emits one list-item text block per item; items whose formatted
// runs are all empty are dropped.
func (c *Converter) handleList(doc *document.Document, ev blockEvent, ordered bool) {
	for _, item := range reListItem.FindAllStringSubmatch(ev.groups[0], -1) {
		block := &document.TextBlock{Style: document.StyleListItem, Ordered: ordered, Level: 1}
		c.appendTextBlock(doc, block, item[1])
	}
}

// appendTextBlock formats the fragment into the prepared block and appends
// it together with its link definitions. Blocks that end up visually empty
// are discarded and contribute nothing.
func (c *Converter) appendTextBlock(doc *document.Document, block *document.TextBlock, fragment string) {
	runs, links := c.formatInline(fragment)
	block.Runs = runs
	if block.Empty() {
		return
	}
	doc.Nodes = append(doc.Nodes, document.NewTextNode(block))
	doc.Links = append(doc.Links, links...)
}

// mediaNodeFromMatch classifies one inline media match and builds its node.
func (c *Converter) mediaNodeFromMatch(m string) (document.Node, bool) {
	switch {
	case strings.HasPrefix(m, "["):
		if media := c.mediaFromShortcode(m); media != nil {
			return document.NewMediaNode(media), true
		}
	case strings.HasPrefix(strings.ToLower(m), "<img"):
		if media := c.mediaFromNativeImage(m); media != nil {
			return document.NewMediaNode(media), true
		}
	default:
		if video := videoFromIframe(m); video != nil {
			return document.NewVideoNode(video), true
		}
	}
	return document.Node{}, false
}
