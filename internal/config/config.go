package config

import (
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is loaded once at
// startup and passed by value into components; nothing reads viper after
// Load returns.
type Config struct {
	Index  IndexConfig  `yaml:"index" mapstructure:"index"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	OCR    OCRConfig    `yaml:"ocr" mapstructure:"ocr"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// IndexConfig configures the PDF indexer.
type IndexConfig struct {
	Workers        int    `yaml:"workers" mapstructure:"workers"`
	FileTimeoutSec int    `yaml:"file_timeout_secs" mapstructure:"file_timeout_secs"`
	TempDir        string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// MatchConfig carries the run-level matching parameters. It is immutable and
// handed explicitly into the matcher; there is no ambient tuning state.
type MatchConfig struct {
	AmountTol           string  `yaml:"amount_tol" mapstructure:"amount_tol"`
	TieBreakWeightFname float64 `yaml:"tiebreak_weight_fname" mapstructure:"tiebreak_weight_fname"`
	TieBreakMinSeller   float64 `yaml:"tiebreak_min_seller" mapstructure:"tiebreak_min_seller"`
}

// Validate rejects out-of-range matcher parameters. Called before any
// artifact is written.
func (c MatchConfig) Validate() error {
	if c.TieBreakWeightFname < 0 || c.TieBreakWeightFname > 1 {
		return eris.Errorf("config: tiebreak_weight_fname %v outside [0,1]", c.TieBreakWeightFname)
	}
	if c.TieBreakMinSeller < 0 || c.TieBreakMinSeller > 100 {
		return eris.Errorf("config: tiebreak_min_seller %v outside [0,100]", c.TieBreakMinSeller)
	}
	return nil
}

// ReportConfig configures the report builder.
type ReportConfig struct {
	TopMismatches int `yaml:"top_mismatches" mapstructure:"top_mismatches"`
}

// OCRConfig configures the fallback text extractor used when a PDF carries
// no embedded text.
type OCRConfig struct {
	Provider      string  `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string  `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxAttempts   int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// StoreConfig configures the local run registry.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POPAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("index.workers", runtime.NumCPU())
	v.SetDefault("index.file_timeout_secs", 30)
	v.SetDefault("index.temp_dir", "")
	v.SetDefault("match.amount_tol", "0.01")
	v.SetDefault("match.tiebreak_weight_fname", 0.3)
	v.SetDefault("match.tiebreak_min_seller", 0)
	v.SetDefault("report.top_mismatches", 50)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.rate_per_sec", 4)
	v.SetDefault("ocr.max_attempts", 2)
	v.SetDefault("store.path", "popaudit.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
