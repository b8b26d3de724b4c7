package syncserver

import "encoding/base64"

// encodeRepoID turns a repo's absolute filesystem path into the URL-safe,
// filename-safe id spec.md §4.7 uses for :repo_id path segments — and,
// doubling as the reviewstore repoKey, for the on-disk storage directory.
func encodeRepoID(repoPath string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(repoPath))
}

// decodeRepoID reverses encodeRepoID.
func decodeRepoID(id string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
