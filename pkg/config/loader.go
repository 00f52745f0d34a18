package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Load reads the run configuration at path. The format follows the file
// extension (.json, .yaml/.yml, .hcl); a file named .batrepl carries no
// real extension and is tried as YAML first, then as HCL.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing JSON config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, err
		}
	case ".hcl":
		if err := decodeHCL(data, path, &cfg); err != nil {
			return nil, err
		}
	case ".batrepl":
		// Each attempt decodes into a fresh value so a YAML parse that
		// dies halfway cannot leave fields behind for the HCL pass.
		var fromYAML Config
		yamlErr := decodeYAML(data, &fromYAML)
		if yamlErr == nil {
			cfg = fromYAML
			break
		}
		var fromHCL Config
		if hclErr := decodeHCL(data, path, &fromHCL); hclErr != nil {
			return nil, errors.Errorf("config %s is neither YAML (%v) nor HCL: %w", path, yamlErr, hclErr)
		}
		cfg = fromHCL
	default:
		return nil, errors.Errorf("unsupported config file extension %q", ext)
	}

	cfg.location = path
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.Errorf("parsing YAML config: %w", err)
	}
	return nil
}

func decodeHCL(data []byte, filename string, cfg *Config) error {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return errors.Errorf("parsing HCL config: %s", diags.Error())
	}
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	if diags := gohcl.DecodeBody(file.Body, evalCtx, cfg); diags.HasErrors() {
		return errors.Errorf("decoding HCL config: %s", diags.Error())
	}
	return nil
}
