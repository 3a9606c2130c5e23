// Package monorepo detects workspace layouts and lists member packages.
// It is a standalone probe surfaced through its own CLI command; the
// generation pipeline does not consult it.
package monorepo

import (
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"toolforge/internal/domain"
)

// FileFetcher is the slice of the repository client the detector needs.
type FileFetcher interface {
	GetFileContent(ctx context.Context, owner, repo, filePath, ref string) (*domain.FileContent, error)
	ListDirectory(ctx context.Context, owner, repo, dirPath, ref string) ([]domain.FileContent, error)
}

// Package is one workspace member.
type Package struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Layout describes a detected workspace.
type Layout struct {
	Kind     string    `json:"kind"` // pnpm, lerna, npm, gowork, cargo
	Packages []Package `json:"packages"`
}

type Detector struct {
	fetcher FileFetcher
	logger  *zap.Logger
}

func New(fetcher FileFetcher, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{fetcher: fetcher, logger: logger.Named("monorepo")}
}

// Detect probes the known workspace manifests in order and returns the
// first layout found, or nil for single-package repositories.
func (d *Detector) Detect(ctx context.Context, ref domain.RepoRef) (*Layout, error) {
	probes := []struct {
		file  string
		parse func(content string) (kind string, globs []string)
	}{
		{"pnpm-workspace.yaml", parsePnpmWorkspace},
		{"lerna.json", parseLernaConfig},
		{"package.json", parseNpmWorkspaces},
		{"go.work", parseGoWork},
		{"Cargo.toml", parseCargoWorkspace},
	}

	for _, probe := range probes {
		file, err := d.fetcher.GetFileContent(ctx, ref.Owner, ref.Repo, probe.file, ref.Branch)
		if err != nil {
			return nil, err
		}
		if file == nil {
			continue
		}
		kind, globs := probe.parse(file.Content)
		if kind == "" {
			continue
		}

		packages, err := d.expand(ctx, ref, globs)
		if err != nil {
			return nil, err
		}
		d.logger.Debug("workspace detected",
			zap.String("kind", kind),
			zap.Int("packages", len(packages)))
		return &Layout{Kind: kind, Packages: packages}, nil
	}
	return nil, nil
}

// expand resolves member patterns: a trailing /* lists the directory, a
// plain entry is a member as-is.
func (d *Detector) expand(ctx context.Context, ref domain.RepoRef, globs []string) ([]Package, error) {
	var packages []Package
	seen := map[string]struct{}{}

	add := func(memberPath string) {
		memberPath = strings.Trim(memberPath, "/")
		if memberPath == "" {
			return
		}
		if _, dup := seen[memberPath]; dup {
			return
		}
		seen[memberPath] = struct{}{}
		packages = append(packages, Package{Name: path.Base(memberPath), Path: memberPath})
	}

	for _, glob := range globs {
		glob = strings.Trim(strings.TrimSpace(glob), `"'`)
		if glob == "" || strings.HasPrefix(glob, "!") {
			continue
		}
		if !strings.Contains(glob, "*") {
			add(glob)
			continue
		}

		base := strings.TrimSuffix(glob, "/**")
		base = strings.TrimSuffix(base, "/*")
		if strings.Contains(base, "*") {
			// Patterns with infix wildcards are ignored.
			continue
		}
		entries, err := d.fetcher.ListDirectory(ctx, ref.Owner, ref.Repo, base, ref.Branch)
		if err != nil {
			return packages, err
		}
		for _, entry := range entries {
			if entry.IsDir {
				add(entry.Path)
			}
		}
	}
	return packages, nil
}

func parsePnpmWorkspace(content string) (string, []string) {
	var doc struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil || len(doc.Packages) == 0 {
		return "", nil
	}
	return "pnpm", doc.Packages
}

func parseLernaConfig(content string) (string, []string) {
	var doc struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil || len(doc.Packages) == 0 {
		return "", nil
	}
	return "lerna", doc.Packages
}

func parseNpmWorkspaces(content string) (string, []string) {
	var doc struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil || len(doc.Workspaces) == 0 {
		return "", nil
	}

	// workspaces is either an array or {packages: [...]}.
	var list []string
	if err := json.Unmarshal(doc.Workspaces, &list); err != nil {
		var nested struct {
			Packages []string `json:"packages"`
		}
		if err := json.Unmarshal(doc.Workspaces, &nested); err != nil {
			return "", nil
		}
		list = nested.Packages
	}
	if len(list) == 0 {
		return "", nil
	}
	return "npm", list
}

func parseGoWork(content string) (string, []string) {
	work, err := modfile.ParseWork("go.work", []byte(content), nil)
	if err != nil || len(work.Use) == 0 {
		return "", nil
	}
	members := make([]string, 0, len(work.Use))
	for _, use := range work.Use {
		members = append(members, strings.TrimPrefix(use.Path, "./"))
	}
	return "gowork", members
}

func parseCargoWorkspace(content string) (string, []string) {
	var doc struct {
		Workspace struct {
			Members []string `toml:"members"`
		} `toml:"workspace"`
	}
	if err := toml.Unmarshal([]byte(content), &doc); err != nil || len(doc.Workspace.Members) == 0 {
		return "", nil
	}
	return "cargo", doc.Workspace.Members
}
