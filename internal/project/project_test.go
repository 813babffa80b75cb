package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/company/gopm/internal/manifest"
	"github.com/company/gopm/internal/search"
	"github.com/company/gopm/internal/vcs"
	"github.com/company/gopm/internal/vcs/vcstest"
)

type fakePrompter struct {
	pick     int
	pickErr  error
	confirm  bool
	selected [][]search.Result
	asked    []string
}

func (f *fakePrompter) SelectResult(results []search.Result) (int, error) {
	f.selected = append(f.selected, results)
	return f.pick, f.pickErr
}

func (f *fakePrompter) Confirm(title string) (bool, error) {
	f.asked = append(f.asked, title)
	return f.confirm, nil
}

type fakeProvider struct {
	results []search.Result
	terms   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(ctx context.Context, term string) ([]search.Result, error) {
	f.terms = append(f.terms, term)
	return f.results, nil
}

func makeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readManifest(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, manifest.FileName))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newTestProject(t *testing.T, fake *vcstest.Fake, opts ...Option) (*Project, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithVCS(fake), WithScratchDir(t.TempDir())}, opts...)
	return New(dir, opts...), dir
}

func TestInstallFromSearch(t *testing.T) {
	fake := vcstest.New()
	fake.Add("https://example.com/a.git", makeRepo(t, map[string]string{
		"addons/foo/foo.gd": "foo",
		"godotmodules.txt":  "https://example.com/b.git deadbeef\n",
	}), "c0ffee")
	fake.Add("https://example.com/b.git", makeRepo(t, map[string]string{
		"addons/bar/bar.gd": "bar",
	}), "deadbeef")

	provider := &fakeProvider{results: []search.Result{
		{Provider: "fake", Name: "other/thing", CloneURL: "https://example.com/thing.git", DefaultVersion: "main"},
		{Provider: "fake", Name: "user/a", CloneURL: "https://example.com/a.git", DefaultVersion: "c0ffee"},
	}}
	prompter := &fakePrompter{pick: 1}
	p, dir := newTestProject(t, fake, WithProviders(provider), WithPrompter(prompter))

	res, err := p.Install(context.Background(), "a")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	want := manifest.Dependency{URI: "https://example.com/a.git", Version: "c0ffee"}
	if res.Dependency != want {
		t.Errorf("Dependency = %+v, want %+v", res.Dependency, want)
	}
	if got := readManifest(t, dir); got != "https://example.com/a.git c0ffee\n" {
		t.Errorf("manifest = %q", got)
	}
	if len(res.Tree.Children) != 1 || res.Tree.Children[0].Depth != 1 {
		t.Errorf("tree = %+v, want one nested dependency at depth 1", res.Tree)
	}
	for _, name := range []string{"foo", "bar"} {
		if _, err := os.Stat(filepath.Join(dir, "addons", name)); err != nil {
			t.Errorf("addon %s should be installed: %v", name, err)
		}
	}
	if len(prompter.selected) != 1 || len(prompter.selected[0]) != 2 {
		t.Errorf("prompter should be shown both results, got %v", prompter.selected)
	}
}

func TestInstallPinsBranchToCommit(t *testing.T) {
	const head = "c0ffee1234567890c0ffee1234567890c0ffee12"
	fake := vcstest.New()
	fake.Add("https://example.com/a.git", makeRepo(t, map[string]string{"addons/foo/foo.gd": "foo"}), head).Branch = "main"

	provider := &fakeProvider{results: []search.Result{
		{Provider: "fake", Name: "user/a", CloneURL: "https://example.com/a.git", DefaultVersion: "main"},
	}}
	p, dir := newTestProject(t, fake, WithProviders(provider), WithPrompter(&fakePrompter{}))

	res, err := p.Install(context.Background(), "a")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if res.Dependency.Version != head {
		t.Errorf("Version = %q, want %q", res.Dependency.Version, head)
	}
	if got, want := readManifest(t, dir), "https://example.com/a.git "+head+"\n"; got != want {
		t.Errorf("manifest = %q, want %q", got, want)
	}

	results, err := p.Upgrade(context.Background())
	if err != nil {
		t.Fatalf("Upgrade() error: %v", err)
	}
	if len(results) != 1 || !results[0].UpToDate {
		t.Errorf("results = %+v, want the fresh install to be up to date", results)
	}
}

func TestInstallNoResults(t *testing.T) {
	fake := vcstest.New()
	p, dir := newTestProject(t, fake, WithProviders(&fakeProvider{}), WithPrompter(&fakePrompter{}))
	writeManifest(t, dir, "https://example.com/x.git 1\n")

	_, err := p.Install(context.Background(), "nothing-matches")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if got := readManifest(t, dir); got != "https://example.com/x.git 1\n" {
		t.Errorf("manifest changed: %q", got)
	}
	if len(fake.Clones) != 0 {
		t.Errorf("nothing should be cloned, got %v", fake.Clones)
	}
}

func TestInstallNoSelection(t *testing.T) {
	provider := &fakeProvider{results: []search.Result{{Name: "user/a", CloneURL: "https://example.com/a.git", DefaultVersion: "main"}}}
	p, dir := newTestProject(t, vcstest.New(), WithProviders(provider), WithPrompter(&fakePrompter{pickErr: ErrNoSelection}))

	if _, err := p.Install(context.Background(), "a"); !errors.Is(err, ErrNoSelection) {
		t.Errorf("error = %v, want ErrNoSelection", err)
	}
	if manifest.Exists(dir) {
		t.Error("manifest should not be created")
	}
}

func TestInstallCollision(t *testing.T) {
	fake := vcstest.New()
	fake.Add("https://mirror.example.com/a.git", makeRepo(t, map[string]string{"addons/foo/f.gd": "f"}), "1")
	provider := &fakeProvider{results: []search.Result{{Name: "mirror/a", CloneURL: "https://mirror.example.com/a.git", DefaultVersion: "1"}}}
	p, dir := newTestProject(t, fake, WithProviders(provider), WithPrompter(&fakePrompter{pick: 0}))
	writeManifest(t, dir, "https://example.com/a.git c0ffee\n")

	_, err := p.Install(context.Background(), "a")
	var coll *CollisionError
	if !errors.As(err, &coll) {
		t.Fatalf("error = %v, want *CollisionError", err)
	}
	if coll.Name != "a" {
		t.Errorf("Name = %q, want a", coll.Name)
	}
	if got := readManifest(t, dir); got != "https://example.com/a.git c0ffee\n" {
		t.Errorf("manifest changed: %q", got)
	}
	if len(fake.Clones) != 0 {
		t.Error("a colliding package must not be cloned")
	}
}

func TestInstallLocalPath(t *testing.T) {
	local := makeRepo(t, map[string]string{"addons/tool/t.gd": "t"})
	fake := vcstest.New()
	fake.Add(local, local, "0123456789abcdef0123456789abcdef01234567")

	p, dir := newTestProject(t, fake)
	res, err := p.Install(context.Background(), local)
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if res.Dependency.Version != "0123456789abcdef0123456789abcdef01234567" {
		t.Errorf("Version = %q, want the checked-out commit", res.Dependency.Version)
	}
	if got := readManifest(t, dir); got != local+" 0123456789abcdef0123456789abcdef01234567\n" {
		t.Errorf("manifest = %q", got)
	}
	if n := fake.CloneCount(local); n != 2 {
		t.Errorf("local repo cloned %d times, want 2 (tip probe and install)", n)
	}
}

func TestInstallFailureLeavesManifest(t *testing.T) {
	provider := &fakeProvider{results: []search.Result{{Name: "user/gone", CloneURL: "https://example.com/gone.git", DefaultVersion: "main"}}}
	p, dir := newTestProject(t, vcstest.New(), WithProviders(provider), WithPrompter(&fakePrompter{pick: 0}))

	_, err := p.Install(context.Background(), "gone")
	var gitErr *vcs.Error
	if !errors.As(err, &gitErr) {
		t.Fatalf("error = %v, want *vcs.Error", err)
	}
	if manifest.Exists(dir) {
		t.Error("a failed install must not record the package")
	}
}

func TestUpdate(t *testing.T) {
	fake := vcstest.New()
	fake.Add("https://example.com/a.git", makeRepo(t, map[string]string{
		"addons/foo/foo.gd": "foo",
		"godotmodules.txt":  "https://example.com/b.git deadbeef\n",
	}), "c0ffee")
	fake.Add("https://example.com/b.git", makeRepo(t, map[string]string{
		"addons/bar/bar.gd": "bar",
	}), "deadbeef")
	fake.Add("https://example.com/c.git", makeRepo(t, map[string]string{"README": "none"}), "1")

	p, dir := newTestProject(t, fake)
	writeManifest(t, dir, "https://example.com/a.git c0ffee\nhttps://example.com/c.git 1\n")

	trees, err := p.Update(context.Background())
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("got %d trees, want 2", len(trees))
	}
	if names := trees[0].Children[0].Addons; len(names) != 1 || names[0].Name != "bar" {
		t.Errorf("nested addons = %+v, want bar", names)
	}
	if len(trees[1].Addons) != 0 {
		t.Errorf("c should have no addons, got %+v", trees[1].Addons)
	}
	for _, name := range []string{"foo", "bar"} {
		if _, err := os.Stat(filepath.Join(dir, "addons", name)); err != nil {
			t.Errorf("addon %s should be installed: %v", name, err)
		}
	}
	if got := readManifest(t, dir); got != "https://example.com/a.git c0ffee\nhttps://example.com/c.git 1\n" {
		t.Errorf("update must not rewrite the manifest, got %q", got)
	}
}

func TestUpdateEmpty(t *testing.T) {
	p, _ := newTestProject(t, vcstest.New())
	_, err := p.Update(context.Background())
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("error = %v, want *NotFoundError", err)
	}
}

func TestUpdateMalformedManifest(t *testing.T) {
	p, dir := newTestProject(t, vcstest.New())
	writeManifest(t, dir, "https://example.com/a.git\n")

	_, err := p.Update(context.Background())
	var perr *manifest.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error = %v, want *manifest.ParseError", err)
	}
}

func TestUpgrade(t *testing.T) {
	const tip = "fedcba9876543210fedcba9876543210fedcba98"
	fake := vcstest.New()
	fake.Add("https://example.com/old.git", makeRepo(t, map[string]string{"addons/old/o.gd": "o"}), tip)
	fake.Add("https://example.com/current.git", makeRepo(t, map[string]string{"addons/cur/c.gd": "c"}), "0123456789abcdef")

	p, dir := newTestProject(t, fake)
	writeManifest(t, dir, "https://example.com/old.git 1111111\nhttps://example.com/current.git 0123456\n")

	results, err := p.Upgrade(context.Background())
	if err != nil {
		t.Fatalf("Upgrade() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].UpToDate || results[0].From != "1111111" || results[0].To != tip || results[0].Tree == nil {
		t.Errorf("results[0] = %+v, want upgrade to tip", results[0])
	}
	if !results[1].UpToDate || results[1].Tree != nil {
		t.Errorf("results[1] = %+v, want up to date", results[1])
	}

	want := "https://example.com/old.git " + tip + "\nhttps://example.com/current.git 0123456\n"
	if got := readManifest(t, dir); got != want {
		t.Errorf("manifest = %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "addons", "cur")); !os.IsNotExist(err) {
		t.Error("an up-to-date package must not be re-resolved")
	}
	if n := fake.CloneCount("https://example.com/current.git"); n != 1 {
		t.Errorf("current cloned %d times, want 1", n)
	}
}

func TestOutdated(t *testing.T) {
	fake := vcstest.New()
	fake.Add("https://example.com/a.git", makeRepo(t, nil), "abcdef0123456789")

	p, dir := newTestProject(t, fake)
	writeManifest(t, dir, "https://example.com/a.git latest\n")

	results, err := p.Outdated(context.Background())
	if err != nil {
		t.Fatalf("Outdated() error: %v", err)
	}
	if len(results) != 1 || results[0].UpToDate || results[0].To != "abcdef0123456789" {
		t.Errorf("results = %+v", results)
	}
	if got := readManifest(t, dir); got != "https://example.com/a.git latest\n" {
		t.Errorf("outdated must not modify the manifest, got %q", got)
	}
}

func TestRemove(t *testing.T) {
	const content = "https://example.com/godot-dialogs.git 1\nhttps://example.com/gut.git 2\nhttps://example.com/godot-utils.git 3\n"

	t.Run("single match", func(t *testing.T) {
		prompter := &fakePrompter{confirm: true}
		p, dir := newTestProject(t, vcstest.New(), WithPrompter(prompter))
		writeManifest(t, dir, content)
		addon := filepath.Join(dir, "addons", "gut", "g.gd")
		os.MkdirAll(filepath.Dir(addon), 0755)
		os.WriteFile(addon, []byte("g"), 0644)

		removed, err := p.Remove(context.Background(), "GUT")
		if err != nil {
			t.Fatalf("Remove() error: %v", err)
		}
		if removed.Name() != "gut" {
			t.Errorf("removed %q, want gut", removed.Name())
		}
		want := "https://example.com/godot-dialogs.git 1\nhttps://example.com/godot-utils.git 3\n"
		if got := readManifest(t, dir); got != want {
			t.Errorf("manifest = %q, want %q", got, want)
		}
		if _, err := os.Stat(addon); err != nil {
			t.Error("remove must leave installed addons alone")
		}
		if !reflect.DeepEqual(prompter.asked, []string{`Really remove "gut"?`}) {
			t.Errorf("asked = %v", prompter.asked)
		}
	})

	t.Run("declined", func(t *testing.T) {
		p, dir := newTestProject(t, vcstest.New(), WithPrompter(&fakePrompter{confirm: false}))
		writeManifest(t, dir, content)

		if _, err := p.Remove(context.Background(), "gut"); !errors.Is(err, ErrCancelled) {
			t.Errorf("error = %v, want ErrCancelled", err)
		}
		if got := readManifest(t, dir); got != content {
			t.Errorf("manifest changed: %q", got)
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		prompter := &fakePrompter{confirm: true}
		p, dir := newTestProject(t, vcstest.New(), WithPrompter(prompter))
		writeManifest(t, dir, content)

		_, err := p.Remove(context.Background(), "godot")
		var amb *AmbiguousError
		if !errors.As(err, &amb) {
			t.Fatalf("error = %v, want *AmbiguousError", err)
		}
		if !reflect.DeepEqual(amb.Names(), []string{"godot-dialogs", "godot-utils"}) {
			t.Errorf("Names() = %v", amb.Names())
		}
		if len(prompter.asked) != 0 {
			t.Error("ambiguous matches must not prompt")
		}
		if got := readManifest(t, dir); got != content {
			t.Errorf("manifest changed: %q", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		p, dir := newTestProject(t, vcstest.New(), WithPrompter(&fakePrompter{confirm: true}))
		writeManifest(t, dir, content)

		_, err := p.Remove(context.Background(), "nope")
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("error = %v, want *NotFoundError", err)
		}
	})
}

func TestList(t *testing.T) {
	p, dir := newTestProject(t, vcstest.New())
	deps, err := p.List()
	if err != nil || len(deps) != 0 {
		t.Fatalf("List() = %v, %v; want empty", deps, err)
	}

	writeManifest(t, dir, "https://example.com/a.git 1\n\nhttps://example.com/b.git latest\n")
	deps, err = p.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(deps) != 2 || deps[1].Version != "latest" {
		t.Errorf("List() = %v", deps)
	}
}
