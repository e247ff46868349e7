package markup

import (
	"testing"
)

func kinds(events []blockEvent) []eventKind {
	out := make([]eventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.kind)
	}
	return out
}

func TestSegmentOrdering(t *testing.T) {
	src := `<h2>Title</h2><p>text</p><hr><ul><li>a</li></ul>[embed,id=7]`

	events := segment(src)
	want := []eventKind{eventHeading, eventParagraph, eventRule, eventUnorderedList, eventEmbed}
	got := kinds(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	for i := 1; i < len(events); i++ {
		if events[i].offset < events[i-1].offset {
			t.Fatalf("offsets not non-decreasing at %d", i)
		}
	}
}

func TestSegmentOuterOwnsTies(t *testing.T) {
	// image inside paragraph: the paragraph event must come before the image
	// event so the assembler can claim the span
	src := `<p><img src="/a.png"></p>`

	events := segment(src)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].kind != eventParagraph || events[1].kind != eventNativeImage {
		t.Errorf("events = %v", kinds(events))
	}
	if events[0].offset != 0 {
		t.Errorf("paragraph offset = %d", events[0].offset)
	}
}

func TestSegmentGroups(t *testing.T) {
	events := segment(`<h3 class="x">Some Title</h3>`)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if len(ev.groups) != 2 || ev.groups[0] != "3" || ev.groups[1] != "Some Title" {
		t.Errorf("groups = %q", ev.groups)
	}
	if ev.raw != `<h3 class="x">Some Title</h3>` {
		t.Errorf("raw = %q", ev.raw)
	}
}

func TestSegmentIgnoresUnknownMarkup(t *testing.T) {
	events := segment(`<div>free text</div><table><tr><td>x</td></tr></table>`)
	if len(events) != 0 {
		t.Errorf("expected no events, got %v", kinds(events))
	}
}

func TestSegmentColumnBreakMarker(t *testing.T) {
	events := segment(`<p>a</p><!-- pagebreak --><p>b</p>`)
	got := kinds(events)
	want := []eventKind{eventParagraph, eventColumnBreak, eventParagraph}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}
