package markup

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"lcm/lookup"
)

// Reference resolution. Every branch yields a string; unresolvable targets
// degrade to "#" so a converted document never carries a broken shortcode.

var (
	reProductLink  = regexp.MustCompile(`(?i)\[product_link\s*,\s*id\s*=\s*"?(\d+)"?\s*\]`)
	reSiteTreeLink = regexp.MustCompile(`(?i)\[sitetree_link\s*,\s*id\s*=\s*"?(\d+)"?\s*\]`)
)

// Resolve turns a raw link target (shortcode, absolute, site-host or
// relative URL) into a best-effort absolute URL. It never fails.
func (c *Converter) Resolve(target string) string {
	target = strings.TrimSpace(target)

	if m := reProductLink.FindStringSubmatch(target); m != nil {
		return c.resolveProduct(m[1])
	}
	if m := reSiteTreeLink.FindStringSubmatch(target); m != nil {
		return c.resolveSiteNode(m[1])
	}
	return c.absoluteURL(target)
}

func (c *Converter) resolveProduct(raw string) string {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "#"
	}
	if path, ok := c.tables.ProductPath(id); ok {
		return c.opt.BaseURL + "/" + strings.TrimLeft(path, "/")
	}
	c.log.Debug("Unresolved product reference", zap.Int64("id", id))
	return "#"
}

func (c *Converter) resolveSiteNode(raw string) string {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "#"
	}
	node, ok := c.tables.SiteNode(id)
	if !ok {
		c.log.Debug("Unresolved site tree reference", zap.Int64("id", id))
		return "#"
	}
	// product-link pages prefer the linked product path over their own segment
	if node.Kind == lookup.SiteNodeKindProduct && node.ProductID != 0 {
		if path, ok := c.tables.ProductPath(node.ProductID); ok {
			return c.opt.BaseURL + "/" + strings.TrimLeft(path, "/")
		}
	}
	if node.URLSegment != "" {
		return c.opt.BaseURL + "/" + strings.TrimLeft(node.URLSegment, "/")
	}
	c.log.Debug("Site tree reference resolves to nothing", zap.Int64("id", id))
	return "#"
}

// absoluteURL normalizes a non-shortcode target to an absolute URL. Media
// sources go through the same rules, bypassing the shortcode branches.
func (c *Converter) absoluteURL(target string) string {
	for _, host := range c.opt.SiteHosts {
		for _, prefix := range []string{"https://" + host, "http://" + host, host} {
			rest, found := strings.CutPrefix(target, prefix)
			if !found {
				continue
			}
			if rest == "" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "?") || strings.HasPrefix(rest, "#") {
				return "https://" + host + rest
			}
		}
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if strings.HasPrefix(target, "/") {
		return c.opt.BaseURL + target
	}
	return c.opt.BaseURL + "/" + target
}
