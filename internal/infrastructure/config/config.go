package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Render target kinds
const (
	RenderTargetChromedp = "chromedp"
	RenderTargetNone     = "none"
)

// Output sink kinds
const (
	OutputSinkFilesystem = "filesystem"
	OutputSinkS3         = "s3"
)

var supportedLanguages = []string{"fr", "en", "de"}

// Config holds all label printing configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Labels    LabelsConfig
	Render    RenderConfig
	Output    OutputConfig
	Report    ReportConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// LabelsConfig holds what goes on a label and how codes are generated
type LabelsConfig struct {
	TrackURL       string // tracking page the QR code points at
	Locale         string // fr, en or de
	TimeZone       string // IANA zone for printed dates; empty means UTC
	Brand          string
	Title          string
	Symbologies    []string
	MaxConcurrency int // in-flight records during code generation; 0 = unbounded
	PaperSize      string
	Orientation    string
}

// RenderConfig holds render target settings
type RenderConfig struct {
	Target       string // chromedp or none
	RemoteURL    string // DevTools websocket of an already running Chrome
	ExecPath     string
	NoSandbox    bool
	Timeout      time.Duration // one document from load to stored PDF
	ReadyTimeout time.Duration // wait for the ready notification
}

// OutputConfig holds where printed PDFs are kept
type OutputConfig struct {
	Sink     string // filesystem or s3
	BasePath string
	BaseURL  string
	S3       S3Config
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Bucket            string
	Region            string
	Endpoint          string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	Prefix            string
	PresignExpiration time.Duration
}

// ReportConfig holds batch report sinks
type ReportConfig struct {
	Redis RedisConfig
}

// RedisConfig holds the Redis stream that receives batch reports
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Stream   string
	MaxLen   int64
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	LogsEnabled       bool
	ExportInterval    time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LABEL_ prefix (e.g., LABEL_LABELS_TRACK_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return load(v)
}

// LoadFile loads configuration from the given file; environment variables
// still take precedence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("LABEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.s3.use_path_style", true)

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Version: v.GetString("app.version"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Labels: LabelsConfig{
			TrackURL:       v.GetString("labels.track_url"),
			Locale:         v.GetString("labels.locale"),
			TimeZone:       v.GetString("labels.timezone"),
			Brand:          v.GetString("labels.brand"),
			Title:          v.GetString("labels.title"),
			Symbologies:    splitList(v.GetStringSlice("labels.symbologies")),
			MaxConcurrency: v.GetInt("labels.max_concurrency"),
			PaperSize:      strings.ToUpper(v.GetString("labels.paper_size")),
			Orientation:    strings.ToUpper(v.GetString("labels.orientation")),
		},
		Render: RenderConfig{
			Target:       strings.ToLower(v.GetString("render.target")),
			RemoteURL:    v.GetString("render.remote_url"),
			ExecPath:     v.GetString("render.exec_path"),
			NoSandbox:    v.GetBool("render.no_sandbox"),
			Timeout:      v.GetDuration("render.timeout"),
			ReadyTimeout: v.GetDuration("render.ready_timeout"),
		},
		Output: OutputConfig{
			Sink:     strings.ToLower(v.GetString("output.sink")),
			BasePath: v.GetString("output.base_path"),
			BaseURL:  v.GetString("output.base_url"),
			S3: S3Config{
				Bucket:            v.GetString("output.s3.bucket"),
				Region:            v.GetString("output.s3.region"),
				Endpoint:          v.GetString("output.s3.endpoint"),
				AccessKey:         v.GetString("output.s3.access_key"),
				SecretKey:         v.GetString("output.s3.secret_key"),
				UseSSL:            v.GetBool("output.s3.use_ssl"),
				UsePathStyle:      v.GetBool("output.s3.use_path_style"),
				Prefix:            v.GetString("output.s3.prefix"),
				PresignExpiration: v.GetDuration("output.s3.presign_expiration"),
			},
		},
		Report: ReportConfig{
			Redis: RedisConfig{
				Enabled:  v.GetBool("report.redis.enabled"),
				Host:     v.GetString("report.redis.host"),
				Port:     v.GetInt("report.redis.port"),
				Password: v.GetString("report.redis.password"),
				DB:       v.GetInt("report.redis.db"),
				Stream:   v.GetString("report.redis.stream"),
				MaxLen:   v.GetInt64("report.redis.max_len"),
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "qds-print-sdk"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Labels.TrackURL == "" {
		cfg.Labels.TrackURL = "https://example.com"
	}
	if cfg.Labels.Locale == "" {
		cfg.Labels.Locale = "fr"
	}
	if len(cfg.Labels.Symbologies) == 0 {
		for _, s := range labeling.AllSymbologies() {
			cfg.Labels.Symbologies = append(cfg.Labels.Symbologies, s.String())
		}
	}
	if cfg.Labels.MaxConcurrency == 0 {
		cfg.Labels.MaxConcurrency = 8
	}
	if cfg.Labels.PaperSize == "" {
		cfg.Labels.PaperSize = labeling.PaperSizeLabel4x6.String()
	}
	if cfg.Labels.Orientation == "" {
		cfg.Labels.Orientation = labeling.OrientationPortrait.String()
	}

	if cfg.Render.Target == "" {
		cfg.Render.Target = RenderTargetChromedp
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 30 * time.Second
	}
	if cfg.Render.ReadyTimeout == 0 {
		cfg.Render.ReadyTimeout = 30 * time.Second
	}

	if cfg.Output.Sink == "" {
		cfg.Output.Sink = OutputSinkFilesystem
	}
	if cfg.Output.BasePath == "" {
		cfg.Output.BasePath = "./labels"
	}
	if cfg.Output.BaseURL == "" {
		cfg.Output.BaseURL = "/labels"
	}
	if cfg.Output.S3.Region == "" {
		cfg.Output.S3.Region = "us-east-1"
	}
	if cfg.Output.S3.PresignExpiration == 0 {
		cfg.Output.S3.PresignExpiration = 15 * time.Minute
	}

	if cfg.Report.Redis.Host == "" {
		cfg.Report.Redis.Host = "localhost"
	}
	if cfg.Report.Redis.Port == 0 {
		cfg.Report.Redis.Port = 6379
	}
	if cfg.Report.Redis.Stream == "" {
		cfg.Report.Redis.Stream = "labels:batches"
	}
	if cfg.Report.Redis.MaxLen == 0 {
		cfg.Report.Redis.MaxLen = 10000
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	track, err := url.Parse(c.Labels.TrackURL)
	if err != nil || track.Host == "" || (track.Scheme != "http" && track.Scheme != "https") {
		return fmt.Errorf("labels.track_url must be an absolute http(s) URL, got %q", c.Labels.TrackURL)
	}

	tag, err := language.Parse(c.Labels.Locale)
	if err != nil {
		return fmt.Errorf("labels.locale %q is not a valid language tag: %w", c.Labels.Locale, err)
	}
	if base, _ := tag.Base(); !slices.Contains(supportedLanguages, base.String()) {
		return fmt.Errorf("labels.locale must be one of %v, got %q", supportedLanguages, c.Labels.Locale)
	}
	if c.Labels.TimeZone != "" {
		if _, err := time.LoadLocation(c.Labels.TimeZone); err != nil {
			return fmt.Errorf("labels.timezone %q: %w", c.Labels.TimeZone, err)
		}
	}
	for _, s := range c.Labels.Symbologies {
		if !labeling.Symbology(s).IsValid() {
			return fmt.Errorf("labels.symbologies contains unsupported symbology %q", s)
		}
	}
	if c.Labels.MaxConcurrency < 0 {
		return fmt.Errorf("labels.max_concurrency cannot be negative")
	}
	if !labeling.PaperSize(c.Labels.PaperSize).IsValid() {
		return fmt.Errorf("labels.paper_size %q is not supported", c.Labels.PaperSize)
	}
	if !labeling.Orientation(c.Labels.Orientation).IsValid() {
		return fmt.Errorf("labels.orientation %q is not supported", c.Labels.Orientation)
	}

	switch c.Render.Target {
	case RenderTargetChromedp, RenderTargetNone:
	default:
		return fmt.Errorf("render.target must be %q or %q, got %q", RenderTargetChromedp, RenderTargetNone, c.Render.Target)
	}
	if c.Render.Timeout < 0 || c.Render.ReadyTimeout < 0 {
		return fmt.Errorf("render timeouts cannot be negative")
	}

	switch c.Output.Sink {
	case OutputSinkFilesystem:
	case OutputSinkS3:
		if c.Output.S3.Bucket == "" {
			return fmt.Errorf("output.s3.bucket is required when output.sink is s3")
		}
		if c.Output.S3.AccessKey == "" || c.Output.S3.SecretKey == "" {
			return fmt.Errorf("output.s3.access_key and output.s3.secret_key are required when output.sink is s3")
		}
	default:
		return fmt.Errorf("output.sink must be %q or %q, got %q", OutputSinkFilesystem, OutputSinkS3, c.Output.Sink)
	}

	if c.Report.Redis.Enabled && c.Report.Redis.MaxLen < 0 {
		return fmt.Errorf("report.redis.max_len cannot be negative")
	}

	if c.App.Env == "production" {
		if track.Scheme != "https" {
			return fmt.Errorf("labels.track_url must use https in production")
		}
		if c.Render.Target == RenderTargetNone {
			return fmt.Errorf("render.target cannot be %q in production", RenderTargetNone)
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// LabelSymbologies converts the configured names to symbologies
func (l *LabelsConfig) LabelSymbologies() []labeling.Symbology {
	out := make([]labeling.Symbology, 0, len(l.Symbologies))
	for _, s := range l.Symbologies {
		out = append(out, labeling.Symbology(s))
	}
	return out
}

// splitList accepts both TOML arrays and comma separated env values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
