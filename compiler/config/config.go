package config

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"tlog.app/go/errors"
)

type (
	// Config is read from rcc.toml. Command line flags override it.
	Config struct {
		Module    string `toml:"module"`
		Backend   string `toml:"backend"`
		Output    string `toml:"output"`
		Entry     string `toml:"entry"`
		Verbosity string `toml:"verbosity"`

		VM VM `toml:"vm"`
	}

	VM struct {
		Strict   bool `toml:"strict"`
		MaxDepth int  `toml:"max_depth"`
	}
)

const (
	BackendLLVM = "llvm"
	BackendIR   = "ir"
)

const DefaultFile = "rcc.toml"

func Default() Config {
	return Config{
		Module:  "my_module",
		Backend: BackendLLVM,
		Output:  "compiled.ll",
		Entry:   "main",
		VM: VM{
			MaxDepth: 1000,
		},
	}
}

// Load reads the file at path over the defaults.
// A missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if optional && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(err, "%v", path)
	}

	return c, nil
}

func Parse(data []byte) (c Config, err error) {
	c = Default()

	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()

	err = d.Decode(&c)
	if err != nil {
		return Config{}, errors.Wrap(err, "decode")
	}

	err = c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendLLVM, BackendIR:
	default:
		return errors.New("unknown backend: %q", c.Backend)
	}

	if c.Entry == "" {
		return errors.New("empty entry function")
	}

	if c.VM.MaxDepth < 0 {
		return errors.New("negative vm max_depth: %d", c.VM.MaxDepth)
	}

	return nil
}

func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
