package githubclient

import (
	"fmt"
	"regexp"
	"strings"

	"toolforge/internal/domain"
)

var (
	httpsURLRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([\w.-]+)/([\w.-]+?)(?:\.git)?(?:/tree/([\w./-]+?))?/?$`)
	sshURLRe   = regexp.MustCompile(`^git@github\.com:([\w.-]+)/([\w.-]+?)(?:\.git)?$`)
	shortRe    = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)$`)
)

// ParseRepoURL accepts https URLs (with optional /tree/<branch>[/<path>]
// suffix), ssh URLs, and owner/repo shorthand. Anything else is
// ErrInvalidRepoURL.
func ParseRepoURL(raw string) (domain.RepoRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.RepoRef{}, fmt.Errorf("empty input: %w", domain.ErrInvalidRepoURL)
	}

	if m := httpsURLRe.FindStringSubmatch(trimmed); m != nil {
		ref := domain.RepoRef{Owner: m[1], Repo: m[2]}
		if m[3] != "" {
			branch, path, _ := strings.Cut(m[3], "/")
			ref.Branch = branch
			ref.Path = path
		}
		return ref, nil
	}
	if m := sshURLRe.FindStringSubmatch(trimmed); m != nil {
		return domain.RepoRef{Owner: m[1], Repo: m[2]}, nil
	}
	if !strings.Contains(trimmed, "://") && !strings.Contains(trimmed, "@") {
		if m := shortRe.FindStringSubmatch(trimmed); m != nil {
			return domain.RepoRef{Owner: m[1], Repo: strings.TrimSuffix(m[2], ".git")}, nil
		}
	}
	return domain.RepoRef{}, fmt.Errorf("%q: %w", raw, domain.ErrInvalidRepoURL)
}
