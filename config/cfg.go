package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// LookupConfig points at the legacy reference tables. The csv format
	// needs both products and pages files, xml and sqlite read everything
	// from a single source.
	LookupConfig struct {
		Format   LookupFormat `yaml:"format" validate:"gte=0"`
		Products string       `yaml:"products,omitempty" sanitize:"assure_file_access"`
		Pages    string       `yaml:"pages,omitempty" sanitize:"assure_file_access"`
		Source   string       `yaml:"source,omitempty" sanitize:"assure_file_access"`
	}

	// MigrationConfig drives the conversion engine and output naming.
	MigrationConfig struct {
		BaseURL               string          `yaml:"base_url" validate:"required,url"`
		SiteHosts             []string        `yaml:"site_hosts" validate:"dive,required"`
		HeadingLevels         int             `yaml:"heading_levels" validate:"min=1,max=2"`
		ColumnBreaks          ColumnBreakMode `yaml:"column_breaks" validate:"gte=0"`
		TwoColumnPass         bool            `yaml:"two_column_pass"`
		OutputNameTemplate    string          `yaml:"output_name_template"`
		FileNameTransliterate bool            `yaml:"file_name_transliterate"`
		AssetsRoot            string          `yaml:"assets_root,omitempty" sanitize:"path_clean"`
		Bundle                bool            `yaml:"bundle"`
		FixZip                bool            `yaml:"fix_zip"`
		Lookup                LookupConfig    `yaml:"lookup"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Migration MigrationConfig `yaml:"migration"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
