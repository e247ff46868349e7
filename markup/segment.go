package markup

import (
	"regexp"
	"sort"
)

// Block segmentation: every recognized block construct is matched
// independently over the whole input, then all matches are merged into one
// event stream ordered by source offset. When an inner construct shares its
// offset span with an outer one (an image inside a heading, say) the outer
// handler owns the span and re-scans it; the assembler skips events starting
// inside an already consumed span.

type eventKind int

const (
	eventHeading eventKind = iota
	eventParagraph
	eventUnorderedList
	eventOrderedList
	eventNativeImage
	eventShortcodeImage
	eventVideo
	eventRule
	eventColumnBreak
	eventEmbed
)

// blockEvent is one match of one pattern family.
type blockEvent struct {
	offset int
	end    int
	kind   eventKind
	raw    string
	groups []string
}

var (
	reHeading       = regexp.MustCompile(`(?is)<h([1-6])(?:\s[^>]*)?>(.*?)</h[1-6]\s*>`)
	reParagraph     = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p\s*>`)
	reUnorderedList = regexp.MustCompile(`(?is)<ul(?:\s[^>]*)?>(.*?)</ul\s*>`)
	reOrderedList   = regexp.MustCompile(`(?is)<ol(?:\s[^>]*)?>(.*?)</ol\s*>`)
	reListItem      = regexp.MustCompile(`(?is)<li(?:\s[^>]*)?>(.*?)</li\s*>`)
)

var blockPatterns = []struct {
	kind eventKind
	re   *regexp.Regexp
}{
	{eventHeading, reHeading},
	{eventParagraph, reParagraph},
	{eventUnorderedList, reUnorderedList},
	{eventOrderedList, reOrderedList},
	{eventNativeImage, reNativeImage},
	{eventShortcodeImage, reShortcodeImage},
	{eventVideo, reIframe},
	{eventRule, reHorizontalRule},
	{eventColumnBreak, reColumnBreak},
	{eventEmbed, reEmbedShortcode},
}

// segment finds all block constructs in the input and returns them as one
// stream with strictly non-decreasing offsets. At equal offsets the outer
// (longer) match comes first.
func segment(src string) []blockEvent {
	var events []blockEvent
	for _, p := range blockPatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(src, -1) {
			ev := blockEvent{
				offset: loc[0],
				end:    loc[1],
				kind:   p.kind,
				raw:    src[loc[0]:loc[1]],
			}
			for g := 1; g*2 < len(loc); g++ {
				if loc[g*2] < 0 {
					ev.groups = append(ev.groups, "")
					continue
				}
				ev.groups = append(ev.groups, src[loc[g*2]:loc[g*2+1]])
			}
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].offset != events[j].offset {
			return events[i].offset < events[j].offset
		}
		return events[i].end > events[j].end
	})
	return events
}
