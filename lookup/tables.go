// Package lookup holds the legacy-identifier reference tables injected into
// the conversion engine and their loaders. Tables are read-only once loaded;
// missing keys are a normal, expected condition of incomplete legacy data.
package lookup

import (
	"sync"
)

// SiteNodeKindProduct marks site nodes that are thin wrappers around a
// product; resolution prefers the linked product path over the node's own
// URL segment.
const SiteNodeKindProduct = "product"

// SiteNode describes one page of the legacy site tree.
type SiteNode struct {
	URLSegment string
	Kind       string
	ProductID  int64 // 0 when the node links no product
}

// Tables bundles both reference tables for one conversion run.
type Tables struct {
	ProductPathByID map[int64]string
	SiteNodeByID    map[int64]SiteNode
}

// NewTables returns empty initialized tables.
func NewTables() *Tables {
	return &Tables{
		ProductPathByID: make(map[int64]string),
		SiteNodeByID:    make(map[int64]SiteNode),
	}
}

// ProductPath looks up the canonical path for a legacy product id.
func (t *Tables) ProductPath(id int64) (string, bool) {
	if t == nil {
		return "", false
	}
	path, ok := t.ProductPathByID[id]
	return path, ok
}

// SiteNode looks up a legacy site-tree node by id.
func (t *Tables) SiteNode(id int64) (SiteNode, bool) {
	if t == nil {
		return SiteNode{}, false
	}
	node, ok := t.SiteNodeByID[id]
	return node, ok
}

// Cache guards a process-wide, load-at-most-once table set. Concurrent
// callers racing the first Load all observe the same completed result; the
// tables are never invalidated afterwards.
type Cache struct {
	once   sync.Once
	tables *Tables
	err    error
}

// Load runs fn at most once and returns its result to every caller.
func (c *Cache) Load(fn func() (*Tables, error)) (*Tables, error) {
	c.once.Do(func() {
		c.tables, c.err = fn()
	})
	return c.tables, c.err
}
