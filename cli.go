package libship

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/libship/libship/logging"
)

const (
	// ExitOK for exit code
	ExitOK int = 0

	// ExitErr for exit code
	ExitErr int = 1
)

// CLI struct
type CLI struct {
	outStream, errStream io.Writer
	Command              string
	LintMode             string `long:"lint-mode" short:"m" arg:"(submit|update|off)" description:"Library-manager ruleset for arduino-lint (default: update)"`
	SourceBranch         string `long:"source-branch" short:"s" description:"Branch the release pull request is opened from (default: develop)"`
	TargetBranch         string `long:"target-branch" short:"t" description:"Branch releases are published on (default: main)"`
	LibraryPath          string `long:"library-path" short:"p" description:"Directory containing library.properties (default: .)"`
	Repository           string `long:"repository" short:"r" description:"Repository as owner/name (default: GITHUB_REPOSITORY)"`
	Mirror               string `long:"mirror" description:"Storage URL to mirror the release asset to (s3:// or gs://)"`
	Notify               string `long:"notify" description:"Notifier URL for release outcomes (slack:// or smtp://)"`
	LogLevel             string `long:"log-level" short:"l" arg:"(debug|info|warn|error)" description:"Level displayed as log"`
	LogFormat            string `long:"log-format" arg:"(text|json)" description:"Format of log output"`
	Help                 bool   `long:"help" short:"h" description:"show this help message and exit"`
	Version              bool   `long:"version" short:"v" description:"prints the version number"`
}

// RunCLI runs as CLI
func RunCLI(o, e io.Writer, a []string) int {
	cli := &CLI{outStream: o, errStream: e}
	return cli.run(a)
}

func (c *CLI) buildHelp(names []string) []string {
	var help []string
	t := reflect.TypeOf(CLI{})

	for _, name := range names {
		f, ok := t.FieldByName(name)
		if !ok {
			continue
		}

		tag := f.Tag
		if tag == "" {
			continue
		}

		var o, a string
		if a = tag.Get("arg"); a != "" {
			a = fmt.Sprintf("=%s", a)
		}
		if s := tag.Get("short"); s != "" {
			o = fmt.Sprintf("-%s, --%s%s", tag.Get("short"), tag.Get("long"), a)
		} else {
			o = fmt.Sprintf("--%s%s", tag.Get("long"), a)
		}

		desc := tag.Get("description")
		if i := strings.Index(desc, "\n"); i >= 0 {
			var buf bytes.Buffer
			buf.WriteString(desc[:i+1])
			desc = desc[i+1:]
			const indent = "                        "
			for {
				if i = strings.Index(desc, "\n"); i >= 0 {
					buf.WriteString(indent)
					buf.WriteString(desc[:i+1])
					desc = desc[i+1:]
					continue
				}
				break
			}
			if len(desc) > 0 {
				buf.WriteString(indent)
				buf.WriteString(desc)
			}
			desc = buf.String()
		}
		help = append(help, fmt.Sprintf("  %-40s %s", o, desc))
	}

	return help
}

func (c *CLI) showHelp() {
	opts := strings.Join(c.buildHelp([]string{
		"LintMode",
		"SourceBranch",
		"TargetBranch",
		"LibraryPath",
		"Repository",
		"Mirror",
		"Notify",
		"LogLevel",
		"LogFormat",
	}), "\n")

	help := `
Usage: libship [--version] [--help] command <options>

Commands:
  run      Validate and perform the release for the triggering event
  check    Validate only, never issue a mutating API call

Options:
%s
`
	fmt.Fprintf(c.outStream, help, opts)
}

func (c *CLI) run(a []string) int {
	p := flags.NewParser(c, flags.PrintErrors|flags.PassDoubleDash)
	args, err := p.ParseArgs(a)
	if err != nil || c.Help {
		c.showHelp()
		return ExitErr
	}

	if c.Version {
		fmt.Fprintf(c.errStream, "%s version %s [%v, %v]\n", name, version, commit, date)
		return ExitOK
	}

	if len(args) == 0 || (args[0] != "run" && args[0] != "check") {
		fmt.Fprintf(c.errStream, "Error: command is not available\n")
		c.showHelp()
		return ExitErr
	}

	c.Command = args[0]

	conf := DefaultConfig()
	if c.LintMode != "" {
		conf.LintMode = c.LintMode
	}
	if c.SourceBranch != "" {
		conf.SourceBranch = c.SourceBranch
	}
	if c.TargetBranch != "" {
		conf.TargetBranch = c.TargetBranch
	}
	if c.LibraryPath != "" {
		conf.LibraryPath = c.LibraryPath
	}
	if c.Repository != "" {
		conf.Repository = c.Repository
	}
	if c.Mirror != "" {
		conf.Mirror = c.Mirror
	}
	if c.Notify != "" {
		conf.Notify = c.Notify
	}
	if c.LogLevel != "" {
		conf.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		conf.LogFormat = c.LogFormat
	}

	if err := conf.OverrideWithEnv(); err != nil {
		fmt.Fprintf(c.errStream, "Error: %s\n", err)
		return ExitErr
	}
	if err := conf.Validate(); err != nil {
		fmt.Fprintf(c.errStream, "Error: %s\n", err)
		return ExitErr
	}

	logger := logging.SetupLogger(conf.LogLevel, conf.LogFormat, c.errStream)

	if c.Command == "run" {
		Banner(c.errStream)
	}

	d := New(conf, logger)
	if err := d.Run(context.Background(), c.Command == "check"); err != nil {
		fmt.Fprintf(c.errStream, "Error: %s\n", err)
		return ExitErr
	}

	return ExitOK
}
