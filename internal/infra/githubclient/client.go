// Package githubclient fetches repository evidence from the GitHub API.
// Structured reads go through go-github; raw file bodies go through a
// resty client against raw.githubusercontent.com. Missing resources
// (404) surface as nil results, never as errors.
package githubclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"toolforge/internal/domain"
)

const rawContentBase = "https://raw.githubusercontent.com"

type Client struct {
	gh     *github.Client
	raw    *resty.Client
	logger *zap.Logger
}

type Options struct {
	// Token is an optional GitHub API token. Unauthenticated access works
	// with tighter rate limits.
	Token  string
	Logger *zap.Logger
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := http.DefaultClient
	if opts.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), src)
	}

	raw := resty.New().SetBaseURL(rawContentBase)
	if opts.Token != "" {
		raw.SetAuthToken(opts.Token)
	}

	return &Client{
		gh:     github.NewClient(httpClient),
		raw:    raw,
		logger: logger.Named("githubclient"),
	}
}

// GetMetadata fetches repository metadata.
func (c *Client) GetMetadata(ctx context.Context, owner, repo string) (domain.RepoMetadata, error) {
	const op = "githubclient.GetMetadata"

	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return domain.RepoMetadata{}, domain.E(codeFor(err), op, fmt.Sprintf("get %s/%s", owner, repo), err)
	}

	meta := domain.RepoMetadata{
		Owner:         owner,
		Repo:          repo,
		Stars:         r.GetStargazersCount(),
		Language:      r.GetLanguage(),
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
	}
	if license := r.GetLicense(); license != nil {
		meta.License = license.GetSPDXID()
	}
	return meta, nil
}

// GetReadme returns the repository README, or nil when the repository has
// none.
func (c *Client) GetReadme(ctx context.Context, owner, repo, ref string) (*domain.FileContent, error) {
	const op = "githubclient.GetReadme"

	readme, _, err := c.gh.Repositories.GetReadme(ctx, owner, repo, refOpts(ref))
	if is404(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.E(codeFor(err), op, "", err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return nil, domain.E(domain.CodeParseError, op, "decode readme", err)
	}
	return &domain.FileContent{
		Path:    readme.GetPath(),
		Name:    readme.GetName(),
		Content: content,
		Size:    readme.GetSize(),
	}, nil
}

// GetFileContent returns a single file, or nil when the path does not
// exist. A 404 is an expected probe outcome, never an error.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, filePath, ref string) (*domain.FileContent, error) {
	const op = "githubclient.GetFileContent"

	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, filePath, refOpts(ref))
	if is404(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.E(codeFor(err), op, filePath, err)
	}
	if file == nil {
		// The path resolved to a directory.
		return nil, nil
	}

	content, err := file.GetContent()
	if err != nil {
		// Large files come back without inline content; fall back to the
		// raw host.
		return c.rawFile(ctx, owner, repo, filePath, ref, file.GetSize())
	}
	return &domain.FileContent{
		Path:    file.GetPath(),
		Name:    file.GetName(),
		Content: content,
		Size:    file.GetSize(),
	}, nil
}

// rawFile downloads a file body from raw.githubusercontent.com.
func (c *Client) rawFile(ctx context.Context, owner, repo, filePath, ref string, size int) (*domain.FileContent, error) {
	const op = "githubclient.rawFile"

	if ref == "" {
		ref = "HEAD"
	}
	resp, err := c.raw.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/%s/%s/%s/%s", owner, repo, ref, filePath))
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, op, filePath, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, domain.E(domain.CodeUnavailable, op,
			fmt.Sprintf("%s: status %d", filePath, resp.StatusCode()), nil)
	}
	return &domain.FileContent{
		Path:    filePath,
		Name:    path.Base(filePath),
		Content: string(resp.Body()),
		Size:    size,
	}, nil
}

// ListDirectory lists immediate entries of a directory. A missing path
// yields an empty listing.
func (c *Client) ListDirectory(ctx context.Context, owner, repo, dirPath, ref string) ([]domain.FileContent, error) {
	const op = "githubclient.ListDirectory"

	_, entries, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, dirPath, refOpts(ref))
	if is404(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.E(codeFor(err), op, dirPath, err)
	}

	out := make([]domain.FileContent, 0, len(entries))
	for _, entry := range entries {
		out = append(out, domain.FileContent{
			Path:  entry.GetPath(),
			Name:  entry.GetName(),
			Size:  entry.GetSize(),
			IsDir: entry.GetType() == "dir",
		})
	}
	return out, nil
}

// specProbes are the conventional locations API specifications live at.
var specProbes = []struct {
	path   string
	format string
}{
	{"openapi.yaml", "openapi"},
	{"openapi.yml", "openapi"},
	{"openapi.json", "openapi"},
	{"swagger.yaml", "openapi"},
	{"swagger.json", "openapi"},
	{"api/openapi.yaml", "openapi"},
	{"docs/openapi.yaml", "openapi"},
	{"spec/openapi.yaml", "openapi"},
	{"schema.graphql", "graphql"},
	{"schema.gql", "graphql"},
	{"graphql/schema.graphql", "graphql"},
}

// FindAPISpecs probes the conventional spec paths and returns every
// document found. Probe misses are silent.
func (c *Client) FindAPISpecs(ctx context.Context, owner, repo, ref string) ([]domain.APISpec, error) {
	var specs []domain.APISpec
	for _, probe := range specProbes {
		file, err := c.GetFileContent(ctx, owner, repo, probe.path, ref)
		if err != nil {
			return specs, err
		}
		if file == nil {
			continue
		}
		c.logger.Debug("api spec found", zap.String("path", probe.path))
		specs = append(specs, domain.APISpec{
			Path:    file.Path,
			Content: file.Content,
			Format:  probe.format,
		})
	}
	return specs, nil
}

// SearchFiles walks the tree breadth-first up to maxDepth and returns
// files whose name matches the pattern (case-insensitive substring, or a
// path.Match glob when the pattern contains meta characters). Matched
// files come back with content.
func (c *Client) SearchFiles(ctx context.Context, owner, repo, pattern, ref string, maxDepth int) ([]domain.FileContent, error) {
	if maxDepth <= 0 {
		maxDepth = domain.DefaultSearchDepth
	}

	type dir struct {
		path  string
		depth int
	}
	queue := []dir{{path: "", depth: 0}}
	var matches []domain.FileContent

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries, err := c.ListDirectory(ctx, owner, repo, current.path, ref)
		if err != nil {
			return matches, err
		}
		for _, entry := range entries {
			if entry.IsDir {
				if current.depth+1 < maxDepth && !skipDir(entry.Name) {
					queue = append(queue, dir{path: entry.Path, depth: current.depth + 1})
				}
				continue
			}
			if !matchesPattern(entry.Name, pattern) {
				continue
			}
			file, err := c.GetFileContent(ctx, owner, repo, entry.Path, ref)
			if err != nil {
				return matches, err
			}
			if file != nil {
				matches = append(matches, *file)
			}
		}
	}
	return matches, nil
}

// skipDir filters tree noise that never holds extractable surface.
func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", "dist", "build", ".github", "target", "__pycache__":
		return true
	}
	return false
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if strings.ContainsAny(pattern, "*?[") {
		ok, err := path.Match(pattern, name)
		return err == nil && ok
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

func refOpts(ref string) *github.RepositoryContentGetOptions {
	if ref == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: ref}
}

func is404(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func codeFor(err error) domain.ErrorCode {
	switch {
	case errors.Is(err, context.Canceled):
		return domain.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return domain.CodeDeadlineExceeded
	case is404(err):
		return domain.CodeNotFound
	default:
		return domain.CodeUnavailable
	}
}
