// Package forge performs the release mechanics against the hosting
// platform: latest release lookup, pull request creation and merging, and
// release creation with asset upload.
package forge

import (
	"context"
	"errors"
)

// InitialVersion is reported when the repository has no release yet, so a
// first tag can pass the version gate.
const InitialVersion = "0.0.0"

// ErrPullRequestExists signals that a pull request for the source branch is
// already open. The pipeline treats this as already-in-flight, not a failure.
var ErrPullRequestExists = errors.New("a pull request already exists")

// Forge abstracts the hosting platform so the pipeline can be tested
// without the network.
type Forge interface {
	// LatestReleaseVersion returns the tag of the latest published release,
	// or InitialVersion when none exists.
	LatestReleaseVersion(ctx context.Context) (string, error)
	// CreatePullRequest opens head into base and returns the PR number.
	CreatePullRequest(ctx context.Context, title, head, base, body string) (int, error)
	// WaitMergeable blocks until the platform has computed mergeability for
	// the pull request, failing when it comes back unmergeable.
	WaitMergeable(ctx context.Context, number int) error
	// MergePullRequest squash-merges the pull request.
	MergePullRequest(ctx context.Context, number int) error
	// CreateRelease publishes a release for tag and returns its ID.
	CreateRelease(ctx context.Context, tag, target string, prerelease bool) (int64, error)
	// UploadReleaseAsset attaches data to the release under name.
	UploadReleaseAsset(ctx context.Context, releaseID int64, name string, data []byte) error
}
