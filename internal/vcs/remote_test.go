package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemoteURL_SSHShorthand(t *testing.T) {
	info, err := ParseRemoteURL("git@github.com:acme/widgets.git")
	require.NoError(t, err)
	assert.Equal(t, "github.com", info.Host)
	assert.Equal(t, "acme", info.Org)
	assert.Equal(t, "widgets", info.Repo)
	assert.Equal(t, "acme/widgets", info.DisplayName)
	assert.Equal(t, "https://github.com/acme/widgets", info.BrowseURL)
}

func TestParseRemoteURL_HTTPS(t *testing.T) {
	info, err := ParseRemoteURL("https://gitlab.com/acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "gitlab.com", info.Host)
	assert.Equal(t, "acme", info.Org)
	assert.Equal(t, "widgets", info.Repo)
}

func TestParseRemoteURL_SSHURL(t *testing.T) {
	info, err := ParseRemoteURL("ssh://git@example.com/acme/widgets.git")
	require.NoError(t, err)
	assert.Equal(t, "example.com", info.Host)
	assert.Equal(t, "acme", info.Org)
	assert.Equal(t, "widgets", info.Repo)
}

func TestParseRemoteURL_Unparseable(t *testing.T) {
	_, err := ParseRemoteURL("not a remote")
	require.Error(t, err)
	var target *UnparseableRemote
	assert.ErrorAs(t, err, &target)
}
