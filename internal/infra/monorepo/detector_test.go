package monorepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
)

type fakeFetcher struct {
	files map[string]string
	dirs  map[string][]domain.FileContent
}

func (f *fakeFetcher) GetFileContent(_ context.Context, _, _, path, _ string) (*domain.FileContent, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, nil
	}
	return &domain.FileContent{Path: path, Content: content}, nil
}

func (f *fakeFetcher) ListDirectory(_ context.Context, _, _, path, _ string) ([]domain.FileContent, error) {
	return f.dirs[path], nil
}

func TestDetect_PnpmWorkspace(t *testing.T) {
	fetcher := &fakeFetcher{
		files: map[string]string{
			"pnpm-workspace.yaml": "packages:\n  - \"packages/*\"\n  - tools/cli\n",
		},
		dirs: map[string][]domain.FileContent{
			"packages": {
				{Path: "packages/core", Name: "core", IsDir: true},
				{Path: "packages/ui", Name: "ui", IsDir: true},
				{Path: "packages/README.md", Name: "README.md"},
			},
		},
	}

	d := New(fetcher, nil)
	layout, err := d.Detect(context.Background(), domain.RepoRef{Owner: "acme", Repo: "mono"})
	require.NoError(t, err)
	require.NotNil(t, layout)

	assert.Equal(t, "pnpm", layout.Kind)
	paths := make([]string, 0, len(layout.Packages))
	for _, pkg := range layout.Packages {
		paths = append(paths, pkg.Path)
	}
	assert.ElementsMatch(t, []string{"packages/core", "packages/ui", "tools/cli"}, paths,
		"globs expand to subdirectories, plain entries pass through")
}

func TestDetect_NpmWorkspacesField(t *testing.T) {
	fetcher := &fakeFetcher{
		files: map[string]string{
			"package.json": `{"name":"mono","workspaces":["apps/web","apps/api"]}`,
		},
	}

	d := New(fetcher, nil)
	layout, err := d.Detect(context.Background(), domain.RepoRef{Owner: "a", Repo: "m"})
	require.NoError(t, err)
	require.NotNil(t, layout)
	assert.Equal(t, "npm", layout.Kind)
	assert.Len(t, layout.Packages, 2)
	assert.Equal(t, "web", layout.Packages[0].Name)
}

func TestDetect_GoWork(t *testing.T) {
	fetcher := &fakeFetcher{
		files: map[string]string{
			"go.work": "go 1.24\n\n// local modules\nuse (\n\t./service // api surface\n\t./shared\n)\n",
		},
	}

	d := New(fetcher, nil)
	layout, err := d.Detect(context.Background(), domain.RepoRef{Owner: "a", Repo: "m"})
	require.NoError(t, err)
	require.NotNil(t, layout)
	assert.Equal(t, "gowork", layout.Kind)
	assert.Equal(t, []Package{
		{Name: "service", Path: "service"},
		{Name: "shared", Path: "shared"},
	}, layout.Packages)
}

func TestDetect_CargoWorkspace(t *testing.T) {
	fetcher := &fakeFetcher{
		files: map[string]string{
			"Cargo.toml": "[workspace]\nmembers = [\"crates/parser\", \"crates/cli\"] # keep sorted\n\n[workspace.dependencies]\nserde = \"1\"\n",
		},
	}

	d := New(fetcher, nil)
	layout, err := d.Detect(context.Background(), domain.RepoRef{Owner: "a", Repo: "m"})
	require.NoError(t, err)
	require.NotNil(t, layout)
	assert.Equal(t, "cargo", layout.Kind)
	require.Len(t, layout.Packages, 2, "trailing comment tokens are not members")
	assert.Equal(t, "crates/parser", layout.Packages[0].Path)
	assert.Equal(t, "crates/cli", layout.Packages[1].Path)
}

func TestDetect_CargoWorkspaceMalformed(t *testing.T) {
	fetcher := &fakeFetcher{
		files: map[string]string{
			"Cargo.toml": "[package\nname = broken",
		},
	}

	d := New(fetcher, nil)
	layout, err := d.Detect(context.Background(), domain.RepoRef{Owner: "a", Repo: "m"})
	require.NoError(t, err)
	assert.Nil(t, layout)
}

func TestDetect_SinglePackageRepo(t *testing.T) {
	fetcher := &fakeFetcher{
		files: map[string]string{
			"package.json": `{"name":"simple","version":"1.0.0"}`,
		},
	}

	d := New(fetcher, nil)
	layout, err := d.Detect(context.Background(), domain.RepoRef{Owner: "a", Repo: "s"})
	require.NoError(t, err)
	assert.Nil(t, layout, "no workspace manifest means no layout")
}
