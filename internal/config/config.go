// Package config loads the node's configuration the way
// original_source/crates/ilp-node/src/main.rs does: from environment
// variables, then stdin, then an optional config file, then CLI flags —
// but each later source only fills in keys the earlier ones left unset.
// The net effect is that env vars win over everything, and CLI flags
// are consulted last, the reverse of the usual CLI-beats-env
// convention. internal/config reproduces that quirk deliberately rather
// than "fixing" it, since operators following the original node's docs
// would otherwise be surprised by a more conventional precedence order.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is this node's fully resolved configuration.
type Config struct {
	ILPAddress                       string
	SecretSeed                       string
	AdminAuthToken                   string
	DatabaseURL                      string
	HTTPBindAddress                  string
	SettlementAPIBindAddress         string
	DefaultSPSPAccount               string
	RouteBroadcastIntervalMS         int
	ExchangeRateProvider             string
	ExchangeRatePollIntervalMS       int
	ExchangeRateSpread               float64
	PrometheusBindAddress            string
	PrometheusHistogramWindowMS      int
	PrometheusHistogramGranularityMS int
}

// defaults mirrors the original node's Arg::default_value entries.
var defaults = map[string]string{
	// The original node defaulted database_url to a Redis URI; this node
	// persists accounts in internal/store's SQLite table instead.
	"database_url":                     "ilp-node.db",
	"route_broadcast_interval":         "30000",
	"exchange_rate.poll_interval":      "60000",
	"exchange_rate.spread":             "0",
	"prometheus.histogram_window":      "300000",
	"prometheus.histogram_granularity": "10000",
}

// values accumulates raw string settings from every source, in the
// original node's first-source-wins order.
type values struct {
	m map[string]string
}

func newValues() *values {
	return &values{m: make(map[string]string)}
}

// setIfAbsent records key=val only if key hasn't already been set by an
// earlier (higher-precedence) source.
func (v *values) setIfAbsent(key, val string) {
	if _, ok := v.m[key]; ok {
		return
	}
	v.m[key] = val
}

func (v *values) get(key string) (string, bool) {
	val, ok := v.m[key]
	return val, ok
}

// Load resolves a Config from the environment, stdin, an optional
// config file, and args (as parsed by NewCommand's flag set), applying
// the original node's first-source-wins precedence.
func Load(args []string, stdin io.Reader) (Config, error) {
	v := newValues()

	loadEnv(v)

	if stdin != nil {
		if err := loadStdin(v, stdin); err != nil {
			return Config{}, fmt.Errorf("config: reading stdin: %w", err)
		}
	}

	cmd := NewCommand()
	if err := cmd.ParseFlags(args); err != nil {
		return Config{}, fmt.Errorf("config: parsing flags: %w", err)
	}

	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		if err := loadFile(v, configPath); err != nil {
			return Config{}, fmt.Errorf("config: reading config file %s: %w", configPath, err)
		}
	}

	loadFlags(v, cmd.Flags())

	for key, val := range defaults {
		v.setIfAbsent(key, val)
	}

	return toConfig(v)
}

// envPrefix matches the original node's get_env_config("ilp") call.
const envPrefix = "ILP_"

func loadEnv(v *values) {
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		confKey := strings.ToLower(strings.TrimPrefix(key, envPrefix))
		confKey = strings.ReplaceAll(confKey, "__", ".")
		v.setIfAbsent(confKey, val)
	}
}

func loadStdin(v *values, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	parsed, err := parseAnyFormat(data)
	if err != nil {
		// Not every node invocation pipes config over stdin; an
		// unparseable or empty stream is not a fatal condition.
		return nil
	}
	mergeParsed(v, parsed)
	return nil
}

func loadFile(v *values, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	parsed, err := parseAnyFormat(data)
	if err != nil {
		return fmt.Errorf("unrecognized format (tried JSON, YAML, TOML): %w", err)
	}
	mergeParsed(v, parsed)
	return nil
}

// parseAnyFormat sniffs JSON, then YAML, then TOML, mirroring the
// original node's FileFormat::Json.or_else(Yaml).or_else(Toml) chain.
func parseAnyFormat(data []byte) (map[string]interface{}, error) {
	var asJSON map[string]interface{}
	if err := json.Unmarshal(data, &asJSON); err == nil {
		return asJSON, nil
	}

	var asYAML map[string]interface{}
	if err := yaml.Unmarshal(data, &asYAML); err == nil && len(asYAML) > 0 {
		return asYAML, nil
	}

	var asTOML map[string]interface{}
	if err := toml.Unmarshal(data, &asTOML); err == nil {
		return asTOML, nil
	}

	return nil, fmt.Errorf("not valid JSON, YAML, or TOML")
}

// mergeParsed flattens a nested config document (e.g. {"exchange_rate":
// {"provider": "..."}}) into dotted keys and merges it, first-wins.
func mergeParsed(v *values, parsed map[string]interface{}, prefix ...string) {
	for key, val := range parsed {
		full := key
		if len(prefix) > 0 {
			full = prefix[0] + "." + key
		}
		switch typed := val.(type) {
		case map[string]interface{}:
			mergeParsed(v, typed, full)
		default:
			v.setIfAbsent(full, cast.ToString(val))
		}
	}
}

func loadFlags(v *values, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		v.setIfAbsent(f.Name, f.Value.String())
	})
}

func toConfig(v *values) (Config, error) {
	get := func(key string) string {
		val, _ := v.get(key)
		return val
	}

	cfg := Config{
		ILPAddress:               get("ilp_address"),
		SecretSeed:               get("secret_seed"),
		AdminAuthToken:           get("admin_auth_token"),
		DatabaseURL:              get("database_url"),
		HTTPBindAddress:          get("http_bind_address"),
		SettlementAPIBindAddress: get("settlement_api_bind_address"),
		DefaultSPSPAccount:       get("default_spsp_account"),
		ExchangeRateProvider:     get("exchange_rate.provider"),
		PrometheusBindAddress:    get("prometheus.bind_address"),
	}

	var err error
	if cfg.RouteBroadcastIntervalMS, err = cast.ToIntE(get("route_broadcast_interval")); err != nil {
		return Config{}, fmt.Errorf("route_broadcast_interval: %w", err)
	}
	if cfg.ExchangeRatePollIntervalMS, err = cast.ToIntE(get("exchange_rate.poll_interval")); err != nil {
		return Config{}, fmt.Errorf("exchange_rate.poll_interval: %w", err)
	}
	if cfg.ExchangeRateSpread, err = cast.ToFloat64E(get("exchange_rate.spread")); err != nil {
		return Config{}, fmt.Errorf("exchange_rate.spread: %w", err)
	}
	if raw := get("prometheus.histogram_window"); raw != "" {
		if cfg.PrometheusHistogramWindowMS, err = cast.ToIntE(raw); err != nil {
			return Config{}, fmt.Errorf("prometheus.histogram_window: %w", err)
		}
	}
	if raw := get("prometheus.histogram_granularity"); raw != "" {
		if cfg.PrometheusHistogramGranularityMS, err = cast.ToIntE(raw); err != nil {
			return Config{}, fmt.Errorf("prometheus.histogram_granularity: %w", err)
		}
	}

	if cfg.SecretSeed == "" {
		return Config{}, fmt.Errorf("secret_seed is required")
	}
	if cfg.AdminAuthToken == "" {
		return Config{}, fmt.Errorf("admin_auth_token is required")
	}

	return cfg, nil
}

// NewCommand builds the cobra command describing every flag the
// original node's clap App defined, used here purely for its pflag
// parsing and help text — this node's entrypoint runs Load, not
// cmd.Execute, since config resolution must happen before cmd.Run.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ilp-node",
		Short: "Run an Interledger node (sender, connector, receiver bundle)",
	}

	flags := cmd.Flags()
	flags.String("config", "", "Name of config file (in JSON, YAML, or TOML format)")
	flags.String("ilp_address", "", "ILP address of this account")
	flags.String("secret_seed", "", "Root secret used to derive node signing keys")
	flags.String("admin_auth_token", "", "Static admin API token; must be set, but no endpoint of this node checks it")
	flags.String("database_url", "", "Account storage DSN")
	flags.String("http_bind_address", "", "Address to listen for ILP-over-HTTP connections")
	flags.String("settlement_api_bind_address", "", "Address to listen for the settlement engine API")
	flags.String("default_spsp_account", "", "Account SPSP payments to the root domain resolve to")
	flags.String("route_broadcast_interval", "", "Milliseconds between CCP route broadcasts")
	flags.String("exchange_rate.provider", "", "Exchange rate API to poll")
	flags.String("exchange_rate.poll_interval", "", "Milliseconds between exchange rate polls")
	flags.String("exchange_rate.spread", "", "Fractional spread added on top of the exchange rate")
	flags.String("prometheus.bind_address", "", "Address to host the Prometheus endpoint on")
	flags.String("prometheus.histogram_window", "", "Milliseconds of Prometheus histogram data retained")
	flags.String("prometheus.histogram_granularity", "", "Milliseconds of Prometheus histogram data rolled off at a time")

	return cmd
}
