package libship

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/schema"
	"github.com/libship/libship/forge"
	"github.com/libship/libship/lint"
)

// Event names delivered by the host environment.
const (
	EventPullRequest = "pull_request"
	EventPush        = "push"
)

const inputPrefix = "INPUT_"

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Config drives a single pipeline run. It is built once and passed into the
// pipeline explicitly; nothing below the CLI reads the environment.
type Config struct {
	LintMode     string `schema:"lint-mode"`
	SourceBranch string `schema:"source-branch"`
	TargetBranch string `schema:"target-branch"`
	LibraryPath  string `schema:"library-path"`
	Artifact     string `schema:"artifact"`
	Mirror       string `schema:"mirror"`
	Notify       string `schema:"notify"`
	LogLevel     string `schema:"log-level"`
	LogFormat    string `schema:"log-format"`

	// Pull request trigger details.
	PRVersion   string `schema:"pr-version"`
	BaseVersion string `schema:"base-version"`
	PRNumber    int    `schema:"pr-number"`

	// Event context from the host environment.
	Repository string `schema:"-"`
	EventName  string `schema:"-"`
	Ref        string `schema:"-"`
}

// DefaultConfig returns the documented action defaults.
func DefaultConfig() Config {
	return Config{
		LintMode:     string(lint.ModeUpdate),
		SourceBranch: "develop",
		TargetBranch: "main",
		LibraryPath:  ".",
		Artifact:     "on",
		LogLevel:     "INFO",
		LogFormat:    "text",
	}
}

// actionInputs collects INPUT_* variables into url.Values so the action's
// `with:` block can be decoded like any other schema source.
func actionInputs(environ []string) url.Values {
	values := url.Values{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, inputPrefix) || value == "" {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, inputPrefix))
		values.Set(name, value)
	}
	return values
}

// OverrideWithEnv applies action inputs and event context from the host
// environment on top of the current values.
func (c *Config) OverrideWithEnv() error {
	if err := decoder.Decode(c, actionInputs(os.Environ())); err != nil {
		return fmt.Errorf("failed to decode action inputs: %w", err)
	}

	if v := os.Getenv("GITHUB_REPOSITORY"); v != "" {
		c.Repository = v
	}
	if v := os.Getenv("GITHUB_EVENT_NAME"); v != "" {
		c.EventName = v
	}
	if v := os.Getenv("GITHUB_REF"); v != "" {
		c.Ref = v
	}

	return nil
}

// Validate rejects configurations the pipeline cannot act on.
func (c *Config) Validate() error {
	if _, _, err := forge.SplitRepository(c.Repository); err != nil {
		return err
	}
	if _, err := lint.ParseMode(c.LintMode); err != nil {
		return err
	}
	if c.Artifact != "on" && c.Artifact != "off" {
		return fmt.Errorf("unsupported artifact setting: %q (on|off)", c.Artifact)
	}
	if c.SourceBranch == "" || c.TargetBranch == "" {
		return fmt.Errorf("source and target branches are required")
	}
	return nil
}
