// Package config loads project settings from minirs.toml or minirs.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/minirs/format"
)

// FileNames are the configuration files Find looks for, in order.
var FileNames = []string{"minirs.toml", "minirs.yaml", "minirs.yml"}

// EnvPrefix prefixes the environment variables read by ApplyEnv.
const EnvPrefix = "MINIRS_"

type Config struct {
	// KeepComments makes the tokens command list comments.
	KeepComments bool `toml:"keep_comments" yaml:"keep_comments"`
	// Format is the default output format.
	Format string `toml:"format" yaml:"format"`
	// Verbosity is the commonlog level; 0 logs errors only.
	Verbosity int `toml:"verbosity" yaml:"verbosity" validate:"min=0"`
	// Jobs bounds concurrent analyses; 0 means one per CPU.
	Jobs  int         `toml:"jobs" yaml:"jobs" validate:"min=0"`
	LSP   LSPConfig   `toml:"lsp" yaml:"lsp"`
	Serve ServeConfig `toml:"serve" yaml:"serve"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-" yaml:"-"`
}

type LSPConfig struct {
	Name string `toml:"name" yaml:"name" validate:"required"`
	// Watch enables polling the workspace for changed files.
	Watch bool `toml:"watch" yaml:"watch"`
}

type ServeConfig struct {
	// Addr is the listen address of the playground server.
	Addr string `toml:"addr" yaml:"addr" validate:"required"`
}

func Default() *Config {
	return &Config{
		Format: format.Text,
		LSP: LSPConfig{
			Name: "minirs",
		},
		Serve: ServeConfig{
			Addr: "localhost:8080",
		},
	}
}

// Load reads a configuration file on top of the defaults. The format is
// chosen by extension: .yaml and .yml are YAML, anything else TOML.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(content), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
		}
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the path of the first configuration file present in dir.
// It returns an error wrapping os.ErrNotExist when there is none.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no configuration file in %s: %w", dir, os.ErrNotExist)
}

// Discover walks from dir up to the filesystem root and loads the first
// configuration file it finds. Without one it returns the defaults.
func Discover(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		path, err := Find(dir)
		if err == nil {
			return Load(path)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// ApplyEnv overrides settings from MINIRS_FORMAT, MINIRS_VERBOSITY and
// MINIRS_JOBS.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "FORMAT"); ok {
		c.Format = v
	}
	for name, dst := range map[string]*int{"VERBOSITY": &c.Verbosity, "JOBS": &c.Jobs} {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}
	return c.Validate()
}

var validate = newValidator()

// newValidator reports fields by their configuration key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (c *Config) Validate() error {
	if err := format.Check(c.Format); err != nil {
		return err
	}

	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fe := fieldErrs[0]
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must not be empty", key)
	case "min":
		return fmt.Errorf("%s must not be negative, got %v", key, fe.Value())
	}
	return fmt.Errorf("%s: invalid value %v", key, fe.Value())
}
