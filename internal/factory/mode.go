package factory

import (
	"fmpmcp/internal/config"
	"fmpmcp/pkg/logging"
	pkgstrings "fmpmcp/pkg/strings"
)

// Mode is the operating mode of a client server.
type Mode string

const (
	ModeAllOperations    Mode = "ALL_OPERATIONS"
	ModeStaticSubset     Mode = "STATIC_SUBSET"
	ModeDynamicDiscovery Mode = "DYNAMIC_DISCOVERY"
)

func (m Mode) String() string {
	return string(m)
}

// ResolveMode decides the operating mode for cfg.
func ResolveMode(cfg config.ClientConfig) Mode {
	if invalid := cfg.DynamicToolDiscovery.Invalid; invalid != "" {
		logging.Warn("Factory", "Ignoring invalid %s value %q; dynamic discovery stays disabled",
			config.KeyDynamicToolDiscovery, invalid)
	}
	return modeOf(cfg)
}

// ModeFor returns the mode a server built for cfg would run in under the
// server-level mode. Unlike ResolveMode it does not log.
func ModeFor(cfg config.ClientConfig, server config.ModeConfig) Mode {
	return modeOf(Enforce(cfg, server))
}

func modeOf(cfg config.ClientConfig) Mode {
	if cfg.DynamicToolDiscovery.Enabled() {
		return ModeDynamicDiscovery
	}
	if len(nonBlank(pkgstrings.SplitList(cfg.ToolSets))) > 0 {
		return ModeStaticSubset
	}
	return ModeAllOperations
}

// Enforce replaces the mode keys of cfg with the server-level mode when one is
// configured. The credential is always kept.
func Enforce(cfg config.ClientConfig, server config.ModeConfig) config.ClientConfig {
	if !server.Enforced() {
		return cfg
	}
	cfg.ToolSets = server.ToolSets
	cfg.DynamicToolDiscovery = server.DynamicToolDiscovery
	return cfg
}

func nonBlank(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
