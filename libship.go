package libship

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/libship/libship/artifact"
	"github.com/libship/libship/forge"
	"github.com/libship/libship/gate"
	"github.com/libship/libship/lint"
	"github.com/libship/libship/logging"
	"github.com/libship/libship/metadata"
	"github.com/libship/libship/notifier"
	"github.com/libship/libship/storage"
)

const tagRefPrefix = "refs/tags/"

// Libship runs the release pipeline for one trigger event.
type Libship struct {
	config   Config
	forge    forge.Forge
	notifier notifier.Sender
	logger   *logging.Logger
}

// New returns a Libship for the given configuration.
func New(c Config, logger *logging.Logger) *Libship {
	return &Libship{
		config: c,
		logger: logger,
	}
}

// Run dispatches on the trigger event. checkOnly stops the pipeline after
// validation, before any mutating API call, and suppresses notifications.
func (l *Libship) Run(ctx context.Context, checkOnly bool) error {
	if l.notifier == nil {
		l.notifier = notifier.New(ctx, l.config.Notify, l.logger.Logger)
	}

	var err error
	switch l.config.EventName {
	case EventPullRequest:
		err = l.handlePullRequest(ctx, checkOnly)
	case EventPush:
		err = l.handleTagPush(ctx, checkOnly)
	default:
		l.logger.Warn("Unsupported event, skipping", slog.String("event", l.config.EventName))
		return nil
	}

	if err != nil && !checkOnly {
		l.notifier.Send(ctx, fmt.Sprintf("Release failed: %s", err))
	}
	return err
}

// remote builds the forge on first use, so a check run that needs no API
// call works without a token.
func (l *Libship) remote() (forge.Forge, error) {
	if l.forge == nil {
		f, err := forge.NewGitHub(l.config.Repository, l.logger)
		if err != nil {
			return nil, err
		}
		l.forge = f
	}
	return l.forge, nil
}

// handleTagPush releases a pushed version tag: gate against the latest
// published release, validate the tree, then PR, merge and release.
func (l *Libship) handleTagPush(ctx context.Context, checkOnly bool) error {
	if !strings.HasPrefix(l.config.Ref, tagRefPrefix) {
		l.logger.Info("Push is not a tag push, skipping", slog.String("ref", l.config.Ref))
		return nil
	}
	tag := strings.TrimPrefix(l.config.Ref, tagRefPrefix)
	l.logger.Info("Detected tag", slog.String("tag", tag))
	if !checkOnly {
		l.notifier.Send(ctx, fmt.Sprintf("Release started for %s %s", l.config.Repository, tag))
	}

	lib, err := metadata.Load(l.config.LibraryPath)
	if err != nil {
		return err
	}

	f, err := l.remote()
	if err != nil {
		return err
	}
	previous, err := f.LatestReleaseVersion(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("Latest release", slog.String("version", previous), slog.String("branch", l.config.TargetBranch))

	cand, err := l.validate(ctx, previous, tag)
	if err != nil {
		return err
	}

	if checkOnly {
		l.logger.Info("Check passed, skipping release mechanics")
		return nil
	}

	title := fmt.Sprintf("Release: %s", tag)
	body := fmt.Sprintf("Automated release for version %s.", tag)
	number, err := f.CreatePullRequest(ctx, title, l.config.SourceBranch, l.config.TargetBranch, body)
	if err != nil {
		if forge.IsAlreadyExists(err) {
			l.logger.Warn("A pull request is already open for the source branch, leaving it in flight")
			return nil
		}
		return err
	}

	if err := f.WaitMergeable(ctx, number); err != nil {
		return err
	}
	if err := f.MergePullRequest(ctx, number); err != nil {
		return err
	}

	return l.release(ctx, cand, lib)
}

// handlePullRequest releases an approved release pull request: gate the
// head version against the base, validate the tree, then merge and release.
func (l *Libship) handlePullRequest(ctx context.Context, checkOnly bool) error {
	lib, err := metadata.Load(l.config.LibraryPath)
	if err != nil {
		return err
	}

	candidate := l.config.PRVersion
	if candidate == "" {
		candidate = lib.Version
	}
	if !checkOnly {
		l.notifier.Send(ctx, fmt.Sprintf("Release started for %s %s", l.config.Repository, candidate))
	}

	previous := l.config.BaseVersion
	if previous == "" {
		f, err := l.remote()
		if err != nil {
			return err
		}
		previous, err = f.LatestReleaseVersion(ctx)
		if err != nil {
			return err
		}
	}

	cand, err := l.validate(ctx, previous, candidate)
	if err != nil {
		return err
	}

	if checkOnly {
		l.logger.Info("Check passed, skipping release mechanics")
		return nil
	}

	if l.config.PRNumber == 0 {
		return fmt.Errorf("pr-number input is required for %s events", EventPullRequest)
	}

	f, err := l.remote()
	if err != nil {
		return err
	}
	if err := f.MergePullRequest(ctx, l.config.PRNumber); err != nil {
		return err
	}

	return l.release(ctx, cand, lib)
}

// validate is the non-mutating half of the pipeline: version gate, then
// code style. Any failure here prevents every mutating call that follows.
func (l *Libship) validate(ctx context.Context, previous, candidate string) (*gate.SemVer, error) {
	cand, err := gate.Validate(previous, candidate)
	if err != nil {
		return nil, err
	}
	if cand.PreRelease != "" {
		l.logger.Warn("Candidate is a pre-release", slog.String("version", cand.String()))
	}
	l.logger.Info("Version validation passed",
		slog.String("previous", previous), slog.String("candidate", candidate))

	mode, err := lint.ParseMode(l.config.LintMode)
	if err != nil {
		return nil, err
	}
	if err := lint.New(mode, l.config.LibraryPath, l.logger).Run(ctx); err != nil {
		return nil, err
	}

	return cand, nil
}

// release creates the release, uploads the packaged asset and mirrors it.
func (l *Libship) release(ctx context.Context, cand *gate.SemVer, lib *metadata.Library) error {
	f, err := l.remote()
	if err != nil {
		return err
	}
	id, err := f.CreateRelease(ctx, cand.String(), l.config.TargetBranch, cand.PreRelease != "")
	if err != nil {
		return err
	}

	if l.config.Artifact == "on" {
		name, data, err := artifact.Package(ctx, l.config.LibraryPath, l.libraryName(lib), cand.String())
		if err != nil {
			return err
		}
		if err := f.UploadReleaseAsset(ctx, id, name, data); err != nil {
			return err
		}

		if l.config.Mirror != "" {
			up, err := storage.New(ctx, l.config.Mirror, l.logger)
			if err != nil {
				return err
			}
			if err := up.Upload(ctx, name, data); err != nil {
				return err
			}
		}
	}

	l.notifier.Send(ctx, fmt.Sprintf("Released %s %s", l.libraryName(lib), cand))
	l.logger.Info("Release completed", slog.String("version", cand.String()))
	return nil
}

func (l *Libship) libraryName(lib *metadata.Library) string {
	if lib.Name != "" {
		return lib.Name
	}
	_, repo, err := forge.SplitRepository(l.config.Repository)
	if err != nil {
		return "library"
	}
	return repo
}
