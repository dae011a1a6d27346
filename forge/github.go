package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/carlescere/scheduler"
	"github.com/google/go-github/v73/github"
	"github.com/google/go-querystring/query"
	"github.com/libship/libship/client"
	"github.com/libship/libship/logging"
)

const (
	mergeMethod      = "squash"
	pollIntervalSec  = 5
	mergeableTimeout = 2 * time.Minute
)

// GitHub implements Forge on the GitHub REST API.
type GitHub struct {
	owner  string
	repo   string
	cl     *github.Client
	logger *logging.Logger
}

// SplitRepository splits an "owner/name" repository string.
func SplitRepository(repository string) (string, string, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository: %q (format: owner/name)", repository)
	}
	return owner, repo, nil
}

// NewGitHub returns a GitHub forge for an "owner/name" repository.
func NewGitHub(repository string, log *logging.Logger) (*GitHub, error) {
	owner, repo, err := SplitRepository(repository)
	if err != nil {
		return nil, err
	}

	cl, err := client.NewGitHub()
	if err != nil {
		return nil, err
	}

	return &GitHub{
		owner:  owner,
		repo:   repo,
		cl:     cl,
		logger: log,
	}, nil
}

// LatestReleaseVersion returns the latest published release tag. A 404 means
// the repository has never released, which maps to InitialVersion.
func (g *GitHub) LatestReleaseVersion(ctx context.Context) (string, error) {
	release, res, err := g.cl.Repositories.GetLatestRelease(ctx, g.owner, g.repo)
	if err != nil {
		if res != nil && res.StatusCode == 404 {
			g.logger.Info("No releases found, assuming initial version", slog.String("version", InitialVersion))
			return InitialVersion, nil
		}
		return "", fmt.Errorf("failed github.Repositories.GetLatestRelease: %w", err)
	}
	return release.GetTagName(), nil
}

func (g *GitHub) CreatePullRequest(ctx context.Context, title, head, base, body string) (int, error) {
	pr, _, err := g.cl.PullRequests.Create(ctx, g.owner, g.repo, &github.NewPullRequest{
		Title: github.Ptr(title),
		Head:  github.Ptr(head),
		Base:  github.Ptr(base),
		Body:  github.Ptr(body),
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "pull request already exists") {
			return 0, fmt.Errorf("%w for %s into %s", ErrPullRequestExists, head, base)
		}
		return 0, fmt.Errorf("failed github.PullRequests.Create: %w", err)
	}

	g.logger.Info("Created pull request", slog.Int("number", pr.GetNumber()))
	return pr.GetNumber(), nil
}

// WaitMergeable polls until GitHub has computed mergeability for the pull
// request. The mergeable field is null right after creation while the merge
// commit is prepared in the background.
func (g *GitHub) WaitMergeable(ctx context.Context, number int) error {
	done := make(chan error, 1)

	job, err := scheduler.Every(pollIntervalSec).Seconds().Run(func() {
		pr, _, err := g.cl.PullRequests.Get(ctx, g.owner, g.repo, number)
		if err != nil {
			select {
			case done <- fmt.Errorf("failed github.PullRequests.Get: %w", err):
			default:
			}
			return
		}
		if pr.Mergeable == nil {
			g.logger.Debug("Mergeability not computed yet", slog.Int("number", number))
			return
		}
		var result error
		if !pr.GetMergeable() {
			result = fmt.Errorf("pull request #%d is not mergeable", number)
		}
		select {
		case done <- result:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start mergeability poll: %w", err)
	}
	defer func() { job.Quit <- true }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(mergeableTimeout):
		return fmt.Errorf("timed out waiting for mergeability of pull request #%d", number)
	}
}

func (g *GitHub) MergePullRequest(ctx context.Context, number int) error {
	result, _, err := g.cl.PullRequests.Merge(ctx, g.owner, g.repo, number, "", &github.PullRequestOptions{
		MergeMethod: mergeMethod,
	})
	if err != nil {
		return fmt.Errorf("failed github.PullRequests.Merge: %w", err)
	}
	if !result.GetMerged() {
		return fmt.Errorf("pull request #%d was not merged: %s", number, result.GetMessage())
	}

	g.logger.Info("Merged pull request", slog.Int("number", number))
	return nil
}

// CreateRelease publishes a release for tag. The tag is normalized to its
// v-prefixed form.
func (g *GitHub) CreateRelease(ctx context.Context, tag, target string, prerelease bool) (int64, error) {
	tag = "v" + strings.TrimPrefix(tag, "v")

	release := &github.RepositoryRelease{
		TagName:    github.Ptr(tag),
		Name:       github.Ptr(fmt.Sprintf("Release %s", tag)),
		Body:       github.Ptr(fmt.Sprintf("Automated release for version %s.", tag)),
		Draft:      github.Ptr(false),
		Prerelease: github.Ptr(prerelease),
	}
	if target != "" {
		release.TargetCommitish = github.Ptr(target)
	}

	created, _, err := g.cl.Repositories.CreateRelease(ctx, g.owner, g.repo, release)
	if err != nil {
		return 0, fmt.Errorf("failed github.Repositories.CreateRelease: %w", err)
	}

	g.logger.Info("Created release", slog.String("tag", tag), slog.Int64("id", created.GetID()))
	return created.GetID(), nil
}

func (g *GitHub) UploadReleaseAsset(ctx context.Context, releaseID int64, name string, data []byte) error {
	s := fmt.Sprintf("repos/%s/%s/releases/%d/assets", g.owner, g.repo, releaseID)
	opt := &github.UploadOptions{Name: name}

	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	qs, err := query.Values(opt)
	if err != nil {
		return err
	}
	u.RawQuery = qs.Encode()

	req, err := g.cl.NewUploadRequest(u.String(), bytes.NewReader(data), int64(len(data)), "application/zip")
	if err != nil {
		return err
	}

	asset := new(github.ReleaseAsset)
	if _, err := g.cl.Do(ctx, req, asset); err != nil {
		return fmt.Errorf("failed to upload release asset %s: %w", name, err)
	}

	g.logger.Info("Uploaded release asset", slog.String("name", name))
	return nil
}

// IsAlreadyExists reports whether err is the duplicate pull request sentinel.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrPullRequestExists)
}
