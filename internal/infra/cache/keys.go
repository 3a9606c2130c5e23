package cache

import "strings"

// Key builds a cache key of the form owner/repo/kind[/part...]. Keeping
// owner/repo as the leading segments lets InvalidateRepo remove every
// entry for a repository with one prefix scan.
func Key(owner, repo, kind string, parts ...string) string {
	segments := make([]string, 0, 3+len(parts))
	segments = append(segments, owner, repo, kind)
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, "/")
}

// RepoPrefix is the key prefix covering all entries for a repository.
func RepoPrefix(owner, repo string) string {
	return owner + "/" + repo + "/"
}
