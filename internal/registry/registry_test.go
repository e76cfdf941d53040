package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

func TestLoadBuildsFullCatalog(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	models := reg.List()
	assert.Len(t, models, 8)

	guided := 0
	for _, m := range models {
		if m.HasSystemPrompt {
			guided++
		}
	}
	assert.Equal(t, 4, guided)
}

func TestFind(t *testing.T) {
	reg, err := New([]domain.ModelConfig{
		{Name: "A", Provider: domain.ProviderOpenAI},
		{Name: "B", Provider: domain.ProviderGemini},
	})
	require.NoError(t, err)

	require.NotNil(t, reg.Find("A"))
	assert.Equal(t, domain.ProviderOpenAI, reg.Find("A").Provider)
	assert.Nil(t, reg.Find("missing"))
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New([]domain.ModelConfig{
		{Name: "A", Provider: domain.ProviderOpenAI},
		{Name: "A", Provider: domain.ProviderGemini},
	})
	assert.Error(t, err)
}
