package document

import (
	"encoding/json"
	"fmt"
)

// Wire representation of the document: a flat array of typed blocks with
// _key/_type discriminators. Text blocks carry spans and the link definitions
// their spans reference; everything else is a typed object with its own
// payload fields.

type wireSpan struct {
	Key   string   `json:"_key"`
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

type wireMarkDef struct {
	Key    string `json:"_key"`
	Type   string `json:"_type"`
	Href   string `json:"href"`
	Target string `json:"target,omitempty"`
}

type wireBlock struct {
	Key      string        `json:"_key"`
	Type     string        `json:"_type"`
	Style    string        `json:"style,omitempty"`
	ListItem string        `json:"listItem,omitempty"`
	Level    int           `json:"level,omitempty"`
	Children []wireSpan    `json:"children,omitempty"`
	MarkDefs []wireMarkDef `json:"markDefs,omitempty"`

	URL    string `json:"url,omitempty"`
	Alt    string `json:"alt,omitempty"`
	Float  string `json:"float,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	Provider string `json:"provider,omitempty"`
	VideoID  string `json:"videoId,omitempty"`
	Title    string `json:"title,omitempty"`

	RefID int64 `json:"refId,omitempty"`
}

// Encode serializes the document into the target platform's wire format.
func Encode(d *Document) ([]byte, error) {
	blocks := make([]wireBlock, 0, len(d.Nodes))
	for _, node := range d.Nodes {
		block, err := encodeNode(d, node)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to marshal document: %w", err)
	}
	return data, nil
}

func encodeNode(d *Document, node Node) (wireBlock, error) {
	switch node.Kind {
	case NodeText:
		return encodeTextBlock(d, node), nil
	case NodeMedia:
		m := node.Media
		return wireBlock{Key: node.Key, Type: "image", URL: m.SourceURL, Alt: m.AltText,
			Float: string(m.Float), Width: m.Width, Height: m.Height}, nil
	case NodeVideo:
		v := node.Video
		return wireBlock{Key: node.Key, Type: "video", Provider: string(v.Provider),
			VideoID: v.ExternalID, Title: v.Title}, nil
	case NodeSeparator:
		return wireBlock{Key: node.Key, Type: "separator"}, nil
	case NodeColumnBreak:
		return wireBlock{Key: node.Key, Type: "columnBreak"}, nil
	case NodeCrossRef:
		return wireBlock{Key: node.Key, Type: "reference", RefID: node.CrossRef.LegacyID}, nil
	default:
		return wireBlock{}, fmt.Errorf("unknown node kind %q", node.Kind)
	}
}

func encodeTextBlock(d *Document, node Node) wireBlock {
	t := node.Text

	block := wireBlock{
		Key:      node.Key,
		Type:     "block",
		Style:    string(t.Style),
		Children: make([]wireSpan, 0, len(t.Runs)),
	}
	if t.Style == StyleListItem {
		block.Style = string(StyleNormal)
		if t.Ordered {
			block.ListItem = "number"
		} else {
			block.ListItem = "bullet"
		}
		block.Level = t.Level
	}

	seen := make(map[string]struct{})
	for _, run := range t.Runs {
		span := wireSpan{Key: NewKey(), Type: "span", Text: run.Text}
		for _, mark := range run.Marks {
			span.Marks = append(span.Marks, string(mark))
			if !mark.IsLink() {
				continue
			}
			// attach every referenced link definition to the block, once
			if _, ok := seen[string(mark)]; ok {
				continue
			}
			seen[string(mark)] = struct{}{}
			if def, ok := d.Link(string(mark)); ok {
				md := wireMarkDef{Key: def.Key, Type: "link", Href: def.URL}
				if def.NewTab {
					md.Target = "_blank"
				}
				block.MarkDefs = append(block.MarkDefs, md)
			}
		}
		block.Children = append(block.Children, span)
	}
	return block
}
