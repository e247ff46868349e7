package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	products := writeTestFile(t, "products.csv", `id,path
12,catalog/widget
77,/catalog/gizmo
`)
	pages := writeTestFile(t, "pages.csv", `id,url_segment,kind,product_id
42,about-us,page,
43,widget-page,product,12
45,,page,
`)

	tables, err := LoadCSV(products, pages, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}

	if len(tables.ProductPathByID) != 2 {
		t.Errorf("products = %d, want 2", len(tables.ProductPathByID))
	}
	if path, _ := tables.ProductPath(12); path != "catalog/widget" {
		t.Errorf("ProductPath(12) = %q", path)
	}

	if len(tables.SiteNodeByID) != 3 {
		t.Errorf("site nodes = %d, want 3", len(tables.SiteNodeByID))
	}
	node, ok := tables.SiteNode(43)
	if !ok || node.Kind != SiteNodeKindProduct || node.ProductID != 12 {
		t.Errorf("SiteNode(43) = %+v", node)
	}
	if node, _ := tables.SiteNode(42); node.ProductID != 0 {
		t.Errorf("SiteNode(42).ProductID = %d, want 0", node.ProductID)
	}
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	products := writeTestFile(t, "products.csv", "12,catalog/widget\n")
	pages := writeTestFile(t, "pages.csv", "42,about-us,page,\n")

	tables, err := LoadCSV(products, pages, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if len(tables.ProductPathByID) != 1 || len(tables.SiteNodeByID) != 1 {
		t.Errorf("tables = %d products, %d site nodes", len(tables.ProductPathByID), len(tables.SiteNodeByID))
	}
}

func TestLoadCSVMalformedRows(t *testing.T) {
	products := writeTestFile(t, "products.csv", `id,path
12,catalog/widget
notanumber,broken/path
13
14,catalog/other
`)
	pages := writeTestFile(t, "pages.csv", `id,url_segment,kind,product_id
42,about-us,page,
bad,second,page,
43,widget-page,product,notanumber
`)

	tables, err := LoadCSV(products, pages, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}

	if len(tables.ProductPathByID) != 2 {
		t.Errorf("products = %d, want 2 (malformed rows dropped)", len(tables.ProductPathByID))
	}
	// row 43 has a malformed product id, the whole row is dropped
	if len(tables.SiteNodeByID) != 1 {
		t.Errorf("site nodes = %d, want 1", len(tables.SiteNodeByID))
	}
}

func TestLoadCSVEmptyPaths(t *testing.T) {
	t.Run("both empty", func(t *testing.T) {
		tables, err := LoadCSV("", "", zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("LoadCSV() error = %v", err)
		}
		if len(tables.ProductPathByID) != 0 || len(tables.SiteNodeByID) != 0 {
			t.Error("expected empty tables")
		}
	})

	t.Run("pages only", func(t *testing.T) {
		pages := writeTestFile(t, "pages.csv", "42,about-us,page,\n")
		tables, err := LoadCSV("", pages, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("LoadCSV() error = %v", err)
		}
		if len(tables.SiteNodeByID) != 1 {
			t.Errorf("site nodes = %d, want 1", len(tables.SiteNodeByID))
		}
	})
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), "", zaptest.NewLogger(t)); err == nil {
		t.Error("expected error for missing file")
	}
}
