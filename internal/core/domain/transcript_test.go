package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptCategory_IsValid(t *testing.T) {
	tests := []struct {
		category TranscriptCategory
		valid    bool
	}{
		{CategoryOnboarding, true},
		{CategoryImprovement, true},
		{CategoryGenerated, true},
		{TranscriptCategory("landing_page"), false},
		{TranscriptCategory(""), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.category), func(t *testing.T) {
			assert.Equal(t, tc.valid, tc.category.IsValid())
		})
	}
}

func TestTranscriptCategory_Derives(t *testing.T) {
	assert.True(t, CategoryOnboarding.Derives())
	assert.True(t, CategoryImprovement.Derives())
	assert.False(t, CategoryGenerated.Derives())
}

func TestCategoryProcessingOrder(t *testing.T) {
	// Improvement reads artifacts that onboarding writes, so onboarding
	// must come first. Generated is terminal and goes last.
	assert.Equal(t, []TranscriptCategory{
		CategoryOnboarding,
		CategoryImprovement,
		CategoryGenerated,
	}, CategoryProcessingOrder)
}

func TestChatHistory_Last(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		h := &ChatHistory{}
		assert.Nil(t, h.Last())
	})

	t.Run("returns most recent", func(t *testing.T) {
		h := &ChatHistory{Messages: []ChatMessage{
			{Role: RoleSystem, Content: "be helpful"},
			{Role: RoleUser, Content: "hello"},
		}}
		last := h.Last()
		assert.NotNil(t, last)
		assert.Equal(t, RoleUser, last.Role)
	})
}
