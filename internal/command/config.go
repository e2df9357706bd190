package command

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/forge/internal/binarycodec"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

// fileConfig is the on-disk shape for `-config`'s TOML file (SPEC_FULL.md
// §2 cross-cutting "Config loader"): default output/package directories and
// the compression level every pipeline's store should open with.
type fileConfig struct {
	OutputDir   string `toml:"output_dir"`
	PackageDir  string `toml:"package_dir"`
	Compression string `toml:"compression"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
	}
	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: config %q: %v", corelog.ErrDecode, path, err)
	}
	return &cfg, nil
}

func (c *fileConfig) compressionLevel() binarycodec.CompressionLevel {
	switch c.Compression {
	case "fast":
		return binarycodec.CompressionFast
	case "high":
		return binarycodec.CompressionHigh
	case "default":
		return binarycodec.CompressionDefault
	default:
		return binarycodec.CompressionNone
	}
}

// configCommand implements `--config -path <file>`, applying the loaded
// file's output/package directories and compression level to every already
// constructed pipeline's BuilderContext. It does not re-initialise stores:
// pipelines opened before `--config` runs keep whatever cache they already
// loaded, matching `--set_output_dir`'s existing "affects future packaging
// only" behaviour.
type configCommand struct{ reg *Registry }

func (configCommand) Key() string { return "--config" }
func (configCommand) Flags() []Flag {
	return []Flag{{Key: "-path", HasArgument: true, Optional: false}}
}
func (c *configCommand) Run(flags ParsedFlags) error {
	cfg, err := loadConfig(flags.First("-path"))
	if err != nil {
		return err
	}
	if cfg.OutputDir != "" {
		c.reg.Ctx.OutputRoot = pathutil.Normalize(cfg.OutputDir)
	}
	if cfg.PackageDir != "" {
		c.reg.Ctx.PackageSubdir = cfg.PackageDir
	}
	c.reg.Ctx.Compression = cfg.compressionLevel()
	corelog.LogInfo("config: output_dir=%q package_dir=%q compression=%q",
		c.reg.Ctx.OutputRoot, c.reg.Ctx.PackageSubdir, cfg.Compression)
	return nil
}
