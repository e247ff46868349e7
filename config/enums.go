package config

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// ColumnBreakMode selects what happens to the legacy column break marker:
// converted to a node or silently removed. The two legacy document types
// disagree, so this is per-run configuration.
type ColumnBreakMode int

const (
	ColumnBreakModeKeep ColumnBreakMode = iota
	ColumnBreakModeDrop
)

var columnBreakModeNames = []string{"keep", "drop"}

func (m ColumnBreakMode) String() string {
	if m < 0 || int(m) >= len(columnBreakModeNames) {
		return fmt.Sprintf("ColumnBreakMode(%d)", int(m))
	}
	return columnBreakModeNames[m]
}

func ParseColumnBreakMode(name string) (ColumnBreakMode, error) {
	for i, n := range columnBreakModeNames {
		if n == name {
			return ColumnBreakMode(i), nil
		}
	}
	return ColumnBreakModeKeep, fmt.Errorf("%s is not a valid ColumnBreakMode", name)
}

func (m ColumnBreakMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

func (m *ColumnBreakMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseColumnBreakMode(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// LookupFormat enumerates supported reference table sources.
type LookupFormat int

const (
	LookupFmtCSV LookupFormat = iota
	LookupFmtXML
	LookupFmtSQLite
)

var lookupFormatNames = []string{"csv", "xml", "sqlite"}

func (f LookupFormat) String() string {
	if f < 0 || int(f) >= len(lookupFormatNames) {
		return fmt.Sprintf("LookupFormat(%d)", int(f))
	}
	return lookupFormatNames[f]
}

func ParseLookupFormat(name string) (LookupFormat, error) {
	for i, n := range lookupFormatNames {
		if n == name {
			return LookupFormat(i), nil
		}
	}
	return LookupFmtCSV, fmt.Errorf("%s is not a valid LookupFormat", name)
}

// LookupFormatNames returns all recognized format names for help output.
func LookupFormatNames() []string {
	return append([]string{}, lookupFormatNames...)
}

func (f LookupFormat) MarshalYAML() (any, error) {
	return f.String(), nil
}

func (f *LookupFormat) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseLookupFormat(name)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
