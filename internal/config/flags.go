package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagMaps    = flag.String("maps", "", "Map directory")
	flagCharset = flag.String("charset", "", "Map file charset (utf-8, latin1, cp1252)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMaps != "" {
		cfg.Maps.Root = *flagMaps
	}
	if *flagCharset != "" {
		cfg.Maps.Charset = *flagCharset
	}
}
