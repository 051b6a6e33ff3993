// Package voxelcfg holds the editor-facing knobs the core store leaves
// open: default smoothness epsilon, accessor cache size, painter clip-box
// default. The volume package itself takes no config — its library
// packages stay config-free — this is strictly a bench-CLI/editor
// concern, read with github.com/spf13/viper.
package voxelcfg

import (
	"github.com/spf13/viper"
)

// Config is the resolved set of editor-facing knobs.
type Config struct {
	// SmoothnessEpsilon is the default painter smoothness when a bench
	// command doesn't specify one.
	SmoothnessEpsilon float32
	// AccessorCacheSize bounds the inspect subcommand's lookaside cache
	// of recently-visited chunk origins.
	AccessorCacheSize int
	// DefaultClipRadius bounds apply's bbox when no explicit clip box is
	// given, avoiding runaway fills from a typo'd transform.
	DefaultClipRadius float32
}

func defaults() Config {
	return Config{
		SmoothnessEpsilon: 0.0,
		AccessorCacheSize: 64,
		DefaultClipRadius: 256,
	}
}

// Load reads configuration from the given file (if non-empty) layered over
// built-in defaults, plus VOXELS_-prefixed environment variables.
func Load(path string) (Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetEnvPrefix("voxels")
	v.AutomaticEnv()
	v.SetDefault("smoothness_epsilon", cfg.SmoothnessEpsilon)
	v.SetDefault("accessor_cache_size", cfg.AccessorCacheSize)
	v.SetDefault("default_clip_radius", cfg.DefaultClipRadius)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
	}

	cfg.SmoothnessEpsilon = float32(v.GetFloat64("smoothness_epsilon"))
	cfg.AccessorCacheSize = v.GetInt("accessor_cache_size")
	cfg.DefaultClipRadius = float32(v.GetFloat64("default_clip_radius"))
	return cfg, nil
}
