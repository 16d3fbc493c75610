package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"sdkgen/internal/canconnect"
	"sdkgen/internal/logging"
)

// DefaultFile is looked up in the working directory when --config is not
// given.
const DefaultFile = "sdkgen.yaml"

// Config is the root configuration for every sdkgen command. All values have
// defaults. A YAML file and SDKGEN_* environment variables may override them.
type Config struct {
	Logging    logging.Config   `yaml:"logging"`
	Generate   GenerateConfig   `yaml:"generate"`
	Features   FeaturesConfig   `yaml:"features"`
	CanConnect CanConnectConfig `yaml:"canconnect"`
	Docs       DocsConfig       `yaml:"docs"`
	QtDeploy   QtDeployConfig   `yaml:"qtdeploy"`
}

// GenerateConfig locates the inputs of the device-features generator,
// relative to the ajantv2 folder.
type GenerateConfig struct {
	Enums      string `yaml:"enums" validate:"required"`
	CanDo      string `yaml:"cando" validate:"required"`
	GetNum     string `yaml:"getnum" validate:"required"`
	DevicesDir string `yaml:"devices_dir" validate:"required"`
	Holder     string `yaml:"copyright_holder" validate:"required"`
}

// FeaturesConfig names the CSV tables of the table-driven generator.
type FeaturesConfig struct {
	Tables map[string]string `yaml:"tables" validate:"required,dive,required"`
}

// CanConnectConfig holds the crosspoint tables. Entries given in YAML are
// merged over the built-in tables.
type CanConnectConfig struct {
	Devices   map[string]canconnect.Device `yaml:"devices" validate:"dive"`
	InputXpts map[string]string            `yaml:"input_xpts" validate:"dive,required"`
}

// DocsConfig holds the documentation pipeline settings.
type DocsConfig struct {
	Pipeline string `yaml:"pipeline"`
	Dest     string `yaml:"dest" validate:"required"`
	URL      string `yaml:"url" validate:"required,url"`
	Doxygen  string `yaml:"doxygen" validate:"required"`
	Rsync    string `yaml:"rsync" validate:"required"`
	Timeout  string `yaml:"timeout"`
}

// QtDeployConfig holds the defaults for qtdeploy.
type QtDeployConfig struct {
	Tool    string `yaml:"tool"`
	Install string `yaml:"install" validate:"required"`
}

// Load returns the configuration. An empty path loads DefaultFile if it
// exists and the defaults otherwise. A named file that is missing is an
// error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	mergeDefaults(cfg)
	applyEnvOverrides(cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaultConfig()
	mergeDefaults(cfg)
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Generate: GenerateConfig{
			Enums:      "includes/ntv2enums.h",
			CanDo:      "sdkgen/cando_canon.gen",
			GetNum:     "sdkgen/getnum_canon.gen",
			DevicesDir: "sdkgen/devices",
			Holder:     "AJA Video Systems, Inc.",
		},
		Docs: DocsConfig{
			Dest:    "sdkdocs@sdksupport.aja.com:/docs/",
			URL:     "https://sdksupport.aja.com/docs/",
			Doxygen: "doxygen",
			Rsync:   "rsync",
			Timeout: "30m",
		},
		QtDeploy: QtDeployConfig{
			Install: "install",
		},
	}
}

// mergeDefaults fills the built-in tables underneath anything the YAML file
// supplied.
func mergeDefaults(cfg *Config) {
	if cfg.Features.Tables == nil {
		cfg.Features.Tables = make(map[string]string)
	}
	for k, v := range defaultTables {
		if _, ok := cfg.Features.Tables[k]; !ok {
			cfg.Features.Tables[k] = v
		}
	}

	if cfg.CanConnect.Devices == nil {
		cfg.CanConnect.Devices = make(map[string]canconnect.Device)
	}
	for k, v := range canconnect.DefaultDevices {
		if _, ok := cfg.CanConnect.Devices[k]; !ok {
			cfg.CanConnect.Devices[k] = v
		}
	}

	if cfg.CanConnect.InputXpts == nil {
		cfg.CanConnect.InputXpts = make(map[string]string)
	}
	for k, v := range canconnect.DefaultInputXpts {
		if _, ok := cfg.CanConnect.InputXpts[k]; !ok {
			cfg.CanConnect.InputXpts[k] = v
		}
	}
}

var defaultTables = map[string]string{
	"video_formats":    "VideoFormats.csv",
	"fb_formats":       "FBFormats.csv",
	"widgets":          "Widgets.csv",
	"conversion_modes": "ConversionModes.csv",
	"dsk_modes":        "DSKModes.csv",
	"input_sources":    "InputSources.csv",
	"cando":            "CanDo.csv",
	"getnum":           "GetNum.csv",
}

// applyEnvOverrides applies SDKGEN_* environment variables.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv("SDKGEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("SDKGEN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := getenv("SDKGEN_COPYRIGHT_HOLDER"); v != "" {
		cfg.Generate.Holder = v
	}
	if v := getenv("SDKGEN_DOCS_DEST"); v != "" {
		cfg.Docs.Dest = v
	}
	if v := getenv("SDKGEN_DOCS_PIPELINE"); v != "" {
		cfg.Docs.Pipeline = v
	}
	if v := getenv("SDKGEN_DOXYGEN"); v != "" {
		cfg.Docs.Doxygen = v
	}
	if v := getenv("SDKGEN_QTDEPLOY_TOOL"); v != "" {
		cfg.QtDeploy.Tool = v
	}
}

var validate = validator.New()

// Validate checks struct tags and reports every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(msgs, "; "))
}
