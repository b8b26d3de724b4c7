package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadTaxonomy_BuiltinsValid(t *testing.T) {
	tax := LoadTaxonomy(nil)
	assert.True(t, tax.Valid("move:code"))
	assert.True(t, tax.Valid("imports:reordered"))
	assert.False(t, tax.Valid("nonsense:label"))
}

func TestLoadTaxonomy_CustomMerged(t *testing.T) {
	tax := LoadTaxonomy([]string{"team:db-migration"})
	assert.True(t, tax.Valid("team:db-migration"))
	assert.True(t, tax.Valid("move:code"))
}

func TestValidateAll_DropsUnknown(t *testing.T) {
	tax := LoadTaxonomy(nil)
	valid, dropped := tax.ValidateAll([]string{"comments:added", "bogus:thing"})
	assert.Equal(t, []string{"comments:added"}, valid)
	assert.Equal(t, []string{"bogus:thing"}, dropped)
}

func TestPromptLabels_ExcludesStaticOnly(t *testing.T) {
	tax := LoadTaxonomy(nil)
	prompt := tax.PromptLabels()
	for _, l := range prompt {
		assert.False(t, staticOnlyLabels[l], "static-only label %q leaked into AI prompt taxonomy", l)
	}
	assert.Contains(t, prompt, "comments:added")
}
