package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// fileConfig is the TOML form of the per-user settings. Key names mirror
// the flag names with underscores.
type fileConfig struct {
	Template      string `toml:"template"`
	Provider      string `toml:"provider"`
	IncludeDir    string `toml:"include_dir"`
	Color         string `toml:"color"`
	OnlyRoutable  bool   `toml:"only_routable"`
	CacheSnapshot bool   `toml:"cache_snapshot"`
	NoPrivate     bool   `toml:"no_private"`
	NoLoopback    bool   `toml:"no_loopback"`
	NoBroadcast   bool   `toml:"no_broadcast"`
}

// loadConfigFile merges values from --config under the flags: a value from
// the file applies only when its key is present and the corresponding flag
// was not set on the command line.
func (r *runner) loadConfigFile(flags *pflag.FlagSet) error {
	if r.opts.configPath == "" {
		return nil
	}

	var fc fileConfig
	meta, err := toml.DecodeFile(r.opts.configPath, &fc)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", r.opts.configPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		fmt.Fprintf(r.stderr, "ipmark: ignoring unknown config keys in %s: %v\n",
			r.opts.configPath, undecoded)
	}

	apply := func(flagName, tomlKey string, fn func()) {
		if meta.IsDefined(tomlKey) && !flags.Changed(flagName) {
			fn()
		}
	}
	apply("template", "template", func() { r.opts.template = fc.Template })
	apply("provider", "provider", func() { r.opts.provider = fc.Provider })
	apply("include", "include_dir", func() { r.opts.includeDir = fc.IncludeDir })
	apply("color", "color", func() { r.opts.colorMode = fc.Color })
	apply("only-routable", "only_routable", func() { r.opts.onlyRoutable = fc.OnlyRoutable })
	apply("cache-snapshot", "cache_snapshot", func() { r.opts.cacheSnapshot = fc.CacheSnapshot })
	apply("no-private", "no_private", func() { r.opts.noPrivate = fc.NoPrivate })
	apply("no-loopback", "no_loopback", func() { r.opts.noLoopback = fc.NoLoopback })
	apply("no-broadcast", "no_broadcast", func() { r.opts.noBroadcast = fc.NoBroadcast })

	return nil
}
