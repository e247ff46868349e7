// Package markup implements the legacy markup to structured document
// conversion engine. The input is one HTML-like string with bracket-style
// shortcodes as authored in the legacy CMS; the output is the ordered node
// sequence of the target document model.
//
// The engine is deliberately pattern driven: independent regular expressions
// recognize every block construct, matches are merged into one offset-ordered
// event stream and dispatched to handlers. It is a single-pass, best-effort
// converter whose output is visually faithful to the legacy rendering. It
// never fails on malformed markup, no matter how broken the input is.
package markup

import (
	"strings"

	"go.uber.org/zap"

	"lcm/lookup"
)

// Options control per-call conversion behavior.
type Options struct {
	// BaseURL is the canonical site base used when resolving references and
	// relative URLs, without a trailing slash.
	BaseURL string

	// SiteHosts lists host names recognized as the site itself; matching
	// targets are normalized to absolute https URLs.
	SiteHosts []string

	// HeadingLevels is the number of distinct heading styles the target
	// schema accepts (1 or 2). All source levels collapse accordingly.
	HeadingLevels int

	// DropColumnBreaks silently removes the column break marker instead of
	// converting it to a node. The two legacy document types disagree on
	// which behavior is wanted.
	DropColumnBreaks bool
}

// Converter turns legacy markup into documents. It holds no state across
// calls beyond the injected read-only lookup tables, so one Converter may be
// used concurrently.
type Converter struct {
	opt    Options
	tables *lookup.Tables
	log    *zap.Logger
}

// New creates a Converter with the given options and reference tables.
func New(opt Options, tables *lookup.Tables, log *zap.Logger) *Converter {
	opt.BaseURL = strings.TrimRight(opt.BaseURL, "/")
	if opt.HeadingLevels < 1 {
		opt.HeadingLevels = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{opt: opt, tables: tables, log: log}
}
