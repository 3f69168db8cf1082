package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Recognized client configuration keys.
const (
	KeyAccessCredential     = "ACCESS_CREDENTIAL"
	KeyToolSets             = "TOOL_SETS"
	KeyDynamicToolDiscovery = "DYNAMIC_TOOL_DISCOVERY"

	// QueryConfigParam carries a base64-encoded JSON ClientConfig.
	QueryConfigParam = "config"
)

// ClientConfig is the per-request configuration supplied by a calling client.
type ClientConfig struct {
	AccessCredential     string   `json:"ACCESS_CREDENTIAL,omitempty"`
	ToolSets             string   `json:"TOOL_SETS,omitempty"`
	DynamicToolDiscovery BoolFlag `json:"DYNAMIC_TOOL_DISCOVERY,omitempty"`
}

// ClientConfigFromQuery builds a ClientConfig from request query parameters.
// The "config" parameter, when present, is decoded first; individual keys
// given directly on the query string then take precedence over it.
func ClientConfigFromQuery(q url.Values) (ClientConfig, error) {
	var cfg ClientConfig

	if blob := q.Get(QueryConfigParam); blob != "" {
		decoded, err := decodeConfigBlob(blob)
		if err != nil {
			return ClientConfig{}, err
		}
		cfg = decoded
	}

	if v := q.Get(KeyAccessCredential); v != "" {
		cfg.AccessCredential = v
	}
	if v := q.Get(KeyToolSets); v != "" {
		cfg.ToolSets = v
	}
	if v := q.Get(KeyDynamicToolDiscovery); v != "" {
		cfg.DynamicToolDiscovery = ParseBoolFlag(v)
	}

	cfg.AccessCredential = strings.TrimSpace(cfg.AccessCredential)
	return cfg, nil
}

func decodeConfigBlob(blob string) (ClientConfig, error) {
	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		raw, err = enc.DecodeString(blob)
		if err == nil {
			break
		}
	}
	if err != nil {
		return ClientConfig{}, fmt.Errorf("config parameter is not valid base64: %w", err)
	}

	var cfg ClientConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("config parameter is not a valid JSON object: %w", err)
	}
	return cfg, nil
}
