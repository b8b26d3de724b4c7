package vcs

import "regexp"

var (
	sshShorthandRe = regexp.MustCompile(`^git@([^:]+):([^/]+)/(.+?)(\.git)?$`)
	httpsRe        = regexp.MustCompile(`^https://([^/]+)/([^/]+)/(.+?)(\.git)?$`)
	sshURLRe       = regexp.MustCompile(`^ssh://[^@]+@([^/]+)/([^/]+)/(.+?)(\.git)?$`)
)

// RemoteInfo is the parsed form of a remote URL.
type RemoteInfo struct {
	Host        string
	Org         string
	Repo        string
	DisplayName string
	BrowseURL   string
}

// ParseRemoteURL recognizes git@host:org/repo(.git)?, https://host/org/repo(.git)?,
// and ssh://user@host/org/repo(.git)? forms (spec.md §4.1).
func ParseRemoteURL(raw string) (*RemoteInfo, error) {
	for _, re := range []*regexp.Regexp{sshShorthandRe, httpsRe, sshURLRe} {
		if m := re.FindStringSubmatch(raw); m != nil {
			host, org, repo := m[1], m[2], m[3]
			return &RemoteInfo{
				Host:        host,
				Org:         org,
				Repo:        repo,
				DisplayName: org + "/" + repo,
				BrowseURL:   "https://" + host + "/" + org + "/" + repo,
			}, nil
		}
	}
	return nil, &UnparseableRemote{URL: raw}
}
