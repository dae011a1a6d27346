package libship

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/libship/libship/forge"
	"github.com/libship/libship/gate"
	"github.com/libship/libship/logging"
)

type fakeForge struct {
	latest   string
	prExists bool
	calls    []string
}

func (f *fakeForge) LatestReleaseVersion(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "LatestReleaseVersion")
	return f.latest, nil
}

func (f *fakeForge) CreatePullRequest(ctx context.Context, title, head, base, body string) (int, error) {
	f.calls = append(f.calls, "CreatePullRequest")
	if f.prExists {
		return 0, fmt.Errorf("%w for %s into %s", forge.ErrPullRequestExists, head, base)
	}
	return 42, nil
}

func (f *fakeForge) WaitMergeable(ctx context.Context, number int) error {
	f.calls = append(f.calls, "WaitMergeable")
	return nil
}

func (f *fakeForge) MergePullRequest(ctx context.Context, number int) error {
	f.calls = append(f.calls, fmt.Sprintf("MergePullRequest(%d)", number))
	return nil
}

func (f *fakeForge) CreateRelease(ctx context.Context, tag, target string, prerelease bool) (int64, error) {
	f.calls = append(f.calls, fmt.Sprintf("CreateRelease(%s)", tag))
	return 777, nil
}

func (f *fakeForge) UploadReleaseAsset(ctx context.Context, releaseID int64, name string, data []byte) error {
	f.calls = append(f.calls, fmt.Sprintf("UploadReleaseAsset(%s)", name))
	return nil
}

func (f *fakeForge) mutatingCalls() []string {
	var mutating []string
	for _, c := range f.calls {
		if c != "LatestReleaseVersion" {
			mutating = append(mutating, c)
		}
	}
	return mutating
}

type fakeSender struct {
	messages []string
}

func (s *fakeSender) Send(ctx context.Context, message string) {
	s.messages = append(s.messages, message)
}

func testLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	properties := "name=Servo\nversion=1.3.0\n"
	if err := os.WriteFile(filepath.Join(dir, "library.properties"), []byte(properties), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func testConfig(t *testing.T) Config {
	t.Helper()
	c := DefaultConfig()
	c.Repository = "acme/Servo"
	c.LintMode = "off"
	c.LibraryPath = testLibrary(t)
	return c
}

func testPipeline(t *testing.T, conf Config, f *fakeForge) *Libship {
	t.Helper()
	l := New(conf, logging.SetupLogger("ERROR", "text", os.Stderr))
	l.forge = f
	return l
}

func TestRunTagPush(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/tags/v1.3.0"

	f := &fakeForge{latest: "v1.2.5"}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := []string{
		"LatestReleaseVersion",
		"CreatePullRequest",
		"WaitMergeable",
		"MergePullRequest(42)",
		"CreateRelease(v1.3.0)",
		"UploadReleaseAsset(Servo-1.3.0.zip)",
	}
	if diff := cmp.Diff(expected, f.calls); diff != "" {
		t.Error(diff)
	}
}

func TestRunTagPushRejectsRegression(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/tags/v1.2.0"

	f := &fakeForge{latest: "v1.2.5"}
	l := testPipeline(t, conf, f)

	err := l.Run(context.Background(), false)
	if !errors.Is(err, gate.ErrNotAnIncrement) {
		t.Fatalf("expected ErrNotAnIncrement, got %v", err)
	}
	if calls := f.mutatingCalls(); calls != nil {
		t.Errorf("mutating calls issued after rejection: %v", calls)
	}
}

func TestRunTagPushNonTagRef(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/heads/develop"

	f := &fakeForge{latest: "v1.2.5"}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if f.calls != nil {
		t.Errorf("expected no API calls, got %v", f.calls)
	}
}

func TestRunTagPushExistingPullRequest(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/tags/v1.3.0"

	f := &fakeForge{latest: "v1.2.5", prExists: true}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err != nil {
		t.Fatalf("expected in-flight PR to be tolerated, got %s", err)
	}

	expected := []string{"LatestReleaseVersion", "CreatePullRequest"}
	if diff := cmp.Diff(expected, f.calls); diff != "" {
		t.Error(diff)
	}
}

func TestRunPullRequest(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPullRequest
	conf.PRVersion = "1.3.0"
	conf.BaseVersion = "1.2.5"
	conf.PRNumber = 7

	f := &fakeForge{}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := []string{
		"MergePullRequest(7)",
		"CreateRelease(1.3.0)",
		"UploadReleaseAsset(Servo-1.3.0.zip)",
	}
	if diff := cmp.Diff(expected, f.calls); diff != "" {
		t.Error(diff)
	}
}

func TestRunPullRequestVersionFromMetadata(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPullRequest
	conf.BaseVersion = "1.2.5"
	conf.PRNumber = 7
	// no pr-version input: the candidate comes from library.properties

	f := &fakeForge{}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(f.calls) == 0 || f.calls[1] != "CreateRelease(1.3.0)" {
		t.Errorf("expected release of metadata version, got %v", f.calls)
	}
}

func TestRunPullRequestMissingNumber(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPullRequest
	conf.PRVersion = "1.3.0"
	conf.BaseVersion = "1.2.5"

	f := &fakeForge{}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	if calls := f.mutatingCalls(); calls != nil {
		t.Errorf("mutating calls issued: %v", calls)
	}
}

func TestRunCheckOnly(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/tags/v1.3.0"

	f := &fakeForge{latest: "v1.2.5"}
	l := testPipeline(t, conf, f)
	s := &fakeSender{}
	l.notifier = s

	if err := l.Run(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if calls := f.mutatingCalls(); calls != nil {
		t.Errorf("check must never mutate, got %v", calls)
	}
	if s.messages != nil {
		t.Errorf("check must never notify, got %v", s.messages)
	}
}

func TestRunCheckWithoutForge(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	conf := testConfig(t)
	conf.EventName = EventPullRequest
	conf.PRVersion = "1.3.0"
	conf.BaseVersion = "1.2.5"

	// no forge injected and no token available: the check needs no API call
	l := New(conf, logging.SetupLogger("ERROR", "text", os.Stderr))
	if err := l.Run(context.Background(), true); err != nil {
		t.Fatalf("expected tokenless check to pass, got %s", err)
	}
}

func TestRunNotifiesStartAndSuccess(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/tags/v1.3.0"

	f := &fakeForge{latest: "v1.2.5"}
	l := testPipeline(t, conf, f)
	s := &fakeSender{}
	l.notifier = s

	if err := l.Run(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := []string{
		"Release started for acme/Servo v1.3.0",
		"Released Servo v1.3.0",
	}
	if diff := cmp.Diff(expected, s.messages); diff != "" {
		t.Error(diff)
	}
}

func TestRunNotifiesFailure(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/tags/v1.2.0"

	f := &fakeForge{latest: "v1.2.5"}
	l := testPipeline(t, conf, f)
	s := &fakeSender{}
	l.notifier = s

	if err := l.Run(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}

	if len(s.messages) != 2 {
		t.Fatalf("expected start and failure messages, got %v", s.messages)
	}
	if s.messages[0] != "Release started for acme/Servo v1.2.0" {
		t.Errorf("unexpected start message: %q", s.messages[0])
	}
	if !strings.HasPrefix(s.messages[1], "Release failed:") {
		t.Errorf("unexpected failure message: %q", s.messages[1])
	}
}

func TestRunUnsupportedEvent(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = "workflow_dispatch"

	f := &fakeForge{}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if f.calls != nil {
		t.Errorf("expected no API calls, got %v", f.calls)
	}
}

func TestRunMissingMetadata(t *testing.T) {
	conf := testConfig(t)
	conf.EventName = EventPush
	conf.Ref = "refs/tags/v1.3.0"
	conf.LibraryPath = t.TempDir() // no library.properties

	f := &fakeForge{latest: "v1.2.5"}
	l := testPipeline(t, conf, f)

	if err := l.Run(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	if calls := f.mutatingCalls(); calls != nil {
		t.Errorf("mutating calls issued: %v", calls)
	}
}
