package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "qds-print-sdk", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)

	assert.Equal(t, "https://example.com", cfg.Labels.TrackURL)
	assert.Equal(t, "fr", cfg.Labels.Locale)
	assert.Equal(t, []string{"QR", "CODE39"}, cfg.Labels.Symbologies)
	assert.Equal(t, 8, cfg.Labels.MaxConcurrency)
	assert.Equal(t, "LABEL_4X6", cfg.Labels.PaperSize)
	assert.Equal(t, "PORTRAIT", cfg.Labels.Orientation)

	assert.Equal(t, RenderTargetChromedp, cfg.Render.Target)
	assert.Equal(t, 30*time.Second, cfg.Render.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Render.ReadyTimeout)

	assert.Equal(t, OutputSinkFilesystem, cfg.Output.Sink)
	assert.Equal(t, "./labels", cfg.Output.BasePath)
	assert.True(t, cfg.Output.S3.UsePathStyle)
	assert.Equal(t, "us-east-1", cfg.Output.S3.Region)

	assert.False(t, cfg.Report.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Report.Redis.Addr())
	assert.Equal(t, "labels:batches", cfg.Report.Redis.Stream)
	assert.Equal(t, int64(10000), cfg.Report.Redis.MaxLen)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, "qds-print-sdk", cfg.Telemetry.ServiceName)
	assert.Equal(t, 60*time.Second, cfg.Telemetry.ExportInterval)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LABEL_LABELS_TRACK_URL", "https://track.example.org/p")
	t.Setenv("LABEL_LABELS_LOCALE", "en-GB")
	t.Setenv("LABEL_LABELS_SYMBOLOGIES", "qr")
	t.Setenv("LABEL_LABELS_MAX_CONCURRENCY", "2")
	t.Setenv("LABEL_LABELS_PAPER_SIZE", "a4")
	t.Setenv("LABEL_RENDER_TARGET", "none")
	t.Setenv("LABEL_RENDER_READY_TIMEOUT", "5s")
	t.Setenv("LABEL_REPORT_REDIS_ENABLED", "true")
	t.Setenv("LABEL_REPORT_REDIS_PORT", "6380")
	t.Setenv("LABEL_TELEMETRY_SAMPLING_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://track.example.org/p", cfg.Labels.TrackURL)
	assert.Equal(t, "en-GB", cfg.Labels.Locale)
	assert.Equal(t, []labeling.Symbology{labeling.SymbologyQR}, cfg.Labels.LabelSymbologies())
	assert.Equal(t, 2, cfg.Labels.MaxConcurrency)
	assert.Equal(t, "A4", cfg.Labels.PaperSize)
	assert.Equal(t, RenderTargetNone, cfg.Render.Target)
	assert.Equal(t, 5*time.Second, cfg.Render.ReadyTimeout)
	assert.True(t, cfg.Report.Redis.Enabled)
	assert.Equal(t, "localhost:6380", cfg.Report.Redis.Addr())
	assert.Equal(t, 0.25, cfg.Telemetry.SamplingRatio)
}

func TestLoad_CommaSeparatedSymbologies(t *testing.T) {
	t.Setenv("LABEL_LABELS_SYMBOLOGIES", "code39, qr")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"CODE39", "QR"}, cfg.Labels.Symbologies)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.toml")
	content := `
[app]
env = "staging"

[labels]
track_url = "https://track.example.net"
locale = "de"
timezone = "Europe/Berlin"
symbologies = ["CODE39"]
orientation = "landscape"

[output]
sink = "s3"

[output.s3]
bucket = "labels"
access_key = "key"
secret_key = "secret"
use_path_style = false
prefix = "printed"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, "de", cfg.Labels.Locale)
	assert.Equal(t, "Europe/Berlin", cfg.Labels.TimeZone)
	assert.Equal(t, []string{"CODE39"}, cfg.Labels.Symbologies)
	assert.Equal(t, "LANDSCAPE", cfg.Labels.Orientation)
	assert.Equal(t, OutputSinkS3, cfg.Output.Sink)
	assert.Equal(t, "labels", cfg.Output.S3.Bucket)
	assert.False(t, cfg.Output.S3.UsePathStyle)
	assert.Equal(t, "printed", cfg.Output.S3.Prefix)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "relative track url",
			env:     map[string]string{"LABEL_LABELS_TRACK_URL": "/track"},
			wantErr: "labels.track_url",
		},
		{
			name:    "unsupported locale",
			env:     map[string]string{"LABEL_LABELS_LOCALE": "ja"},
			wantErr: "labels.locale",
		},
		{
			name:    "unknown timezone",
			env:     map[string]string{"LABEL_LABELS_TIMEZONE": "Mars/Olympus"},
			wantErr: "labels.timezone",
		},
		{
			name:    "unsupported symbology",
			env:     map[string]string{"LABEL_LABELS_SYMBOLOGIES": "EAN13"},
			wantErr: "labels.symbologies",
		},
		{
			name:    "negative concurrency",
			env:     map[string]string{"LABEL_LABELS_MAX_CONCURRENCY": "-1"},
			wantErr: "labels.max_concurrency",
		},
		{
			name:    "unknown paper size",
			env:     map[string]string{"LABEL_LABELS_PAPER_SIZE": "B5"},
			wantErr: "labels.paper_size",
		},
		{
			name:    "unknown render target",
			env:     map[string]string{"LABEL_RENDER_TARGET": "printer"},
			wantErr: "render.target",
		},
		{
			name:    "unknown output sink",
			env:     map[string]string{"LABEL_OUTPUT_SINK": "ftp"},
			wantErr: "output.sink",
		},
		{
			name:    "s3 without bucket",
			env:     map[string]string{"LABEL_OUTPUT_SINK": "s3"},
			wantErr: "output.s3.bucket",
		},
		{
			name: "s3 without credentials",
			env: map[string]string{
				"LABEL_OUTPUT_SINK":      "s3",
				"LABEL_OUTPUT_S3_BUCKET": "labels",
			},
			wantErr: "output.s3.access_key",
		},
		{
			name:    "sampling ratio above one",
			env:     map[string]string{"LABEL_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "telemetry.sampling_ratio",
		},
		{
			name: "plain http track url in production",
			env: map[string]string{
				"LABEL_APP_ENV":          "production",
				"LABEL_LABELS_TRACK_URL": "http://track.example.com",
			},
			wantErr: "https in production",
		},
		{
			name: "no render target in production",
			env: map[string]string{
				"LABEL_APP_ENV":       "production",
				"LABEL_RENDER_TARGET": "none",
			},
			wantErr: "render.target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"QR", "CODE39"}, splitList([]string{"qr,code39"}))
	assert.Equal(t, []string{"QR", "CODE39"}, splitList([]string{"QR", " code39 "}))
	assert.Nil(t, splitList([]string{"", " , "}))
}
