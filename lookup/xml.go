package lookup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Loader for mysqldump --xml exports of the legacy database. Expected layout:
//
//	<mysqldump>
//	  <database name="...">
//	    <table_data name="Product">
//	      <row>
//	        <field name="ID">12</field>
//	        <field name="Path">doplnky/widget</field>
//	      </row>
//	    </table_data>
//	    <table_data name="SiteTree">
//	      <row>
//	        <field name="ID">42</field>
//	        <field name="URLSegment">o-nas</field>
//	        <field name="Kind">page</field>
//	        <field name="ProductID" xsi:nil="true" />
//	      </row>
//	    </table_data>
//	  </database>
//	</mysqldump>
//
// Table names are matched case-insensitively. Rows without a numeric ID are
// logged and dropped.

const (
	xmlProductTable  = "product"
	xmlSiteTreeTable = "sitetree"
)

// LoadMySQLDumpXML reads both tables from a single dump file.
func LoadMySQLDumpXML(path string, log *zap.Logger) (*Tables, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("unable to read database dump: %w", err)
	}

	tables := NewTables()
	for _, td := range doc.FindElements("//table_data") {
		name := strings.ToLower(td.SelectAttrValue("name", ""))
		switch name {
		case xmlProductTable:
			loadProductRows(td, tables, log)
		case xmlSiteTreeTable:
			loadSiteTreeRows(td, tables, log)
		}
	}
	return tables, nil
}

func loadProductRows(td *etree.Element, tables *Tables, log *zap.Logger) {
	for _, row := range td.SelectElements("row") {
		fields := rowFields(row)
		id, err := strconv.ParseInt(fields["id"], 10, 64)
		if err != nil {
			log.Debug("Skipping product row without numeric ID", zap.Error(err))
			continue
		}
		tables.ProductPathByID[id] = fields["path"]
	}
}

func loadSiteTreeRows(td *etree.Element, tables *Tables, log *zap.Logger) {
	for _, row := range td.SelectElements("row") {
		fields := rowFields(row)
		id, err := strconv.ParseInt(fields["id"], 10, 64)
		if err != nil {
			log.Debug("Skipping site tree row without numeric ID", zap.Error(err))
			continue
		}
		node := SiteNode{
			URLSegment: fields["urlsegment"],
			Kind:       fields["kind"],
		}
		if pid, err := strconv.ParseInt(fields["productid"], 10, 64); err == nil {
			node.ProductID = pid
		}
		tables.SiteNodeByID[id] = node
	}
}

func rowFields(row *etree.Element) map[string]string {
	fields := make(map[string]string)
	for _, f := range row.SelectElements("field") {
		name := strings.ToLower(f.SelectAttrValue("name", ""))
		if name == "" {
			continue
		}
		fields[name] = strings.TrimSpace(f.Text())
	}
	return fields
}
