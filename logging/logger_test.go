package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		format     string
		wantFormat string
		expectJSON bool
	}{
		{
			name:       "JSON format logger",
			level:      "INFO",
			format:     "json",
			wantFormat: "json",
			expectJSON: true,
		},
		{
			name:       "Text format logger",
			level:      "DEBUG",
			format:     "text",
			wantFormat: "text",
		},
		{
			name:       "unknown format falls back to text",
			level:      "WARN",
			format:     "yaml",
			wantFormat: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := SetupLogger(tt.level, tt.format, &buf)

			if logger.Format() != tt.wantFormat {
				t.Errorf("expected format %s, got %s", tt.wantFormat, logger.Format())
			}

			logger.Error("test message", "key", "value")
			output := buf.String()

			if tt.expectJSON {
				if !strings.Contains(output, `"msg":"test message"`) {
					t.Errorf("expected JSON output, got: %s", output)
				}
			} else {
				if !strings.Contains(output, "test message") {
					t.Errorf("expected text output to contain message, got: %s", output)
				}
			}
		})
	}
}

func TestSetupLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("ERROR", "text", &buf)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at error level, got: %s", buf.String())
	}

	logger.Error("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected error output, got: %s", buf.String())
	}
}
