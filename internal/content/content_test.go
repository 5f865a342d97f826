package content

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/typefall/internal/config"
	"github.com/tomz197/typefall/internal/stats"
)

func TestBankServesEveryTopic(t *testing.T) {
	b := NewBank(1)
	ctx := context.Background()

	for _, topic := range Topics {
		for _, d := range config.Difficulties {
			c, err := b.Generate(ctx, Request{Topic: topic, Difficulty: d, Mode: stats.ModeSurvival})
			require.NoError(t, err, topic.String())
			assert.NotEmpty(t, c.Words, "%s/%s", topic, d)
			assert.LessOrEqual(t, len(c.Words), SurvivalWordCount)
			for _, w := range c.Words {
				assert.Equal(t, strings.TrimSpace(w), w)
				assert.NotEmpty(t, w)
			}

			c, err = b.Generate(ctx, Request{Topic: topic, Difficulty: d, Mode: stats.ModeClassic})
			require.NoError(t, err)
			assert.NotEmpty(t, c.Text)
			assert.NotContains(t, c.Text, "\n")
			assert.NotContains(t, c.Text, "  ")
		}
	}
}

func TestBankDifficultyBands(t *testing.T) {
	b := NewBank(1)
	ctx := context.Background()

	easy, err := b.Generate(ctx, Request{Topic: TopicStory, Difficulty: config.Easy, Mode: stats.ModeSurvival})
	require.NoError(t, err)
	for _, w := range easy.Words {
		assert.LessOrEqual(t, utf8.RuneCountInString(w), 5, w)
	}

	hard, err := b.Generate(ctx, Request{Topic: TopicStory, Difficulty: config.Hard, Mode: stats.ModeSurvival})
	require.NoError(t, err)
	for _, w := range hard.Words {
		assert.GreaterOrEqual(t, utf8.RuneCountInString(w), 6, w)
	}
}

func TestBankUnknownTopic(t *testing.T) {
	b, err := ParseBank([]byte("topics:\n  story:\n    words: [a]\n"), 1)
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), Request{Topic: TopicCode, Mode: stats.ModeSurvival})
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestBankCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBank(1).Generate(ctx, Request{Topic: TopicStory})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBankFallsBackWhenEmpty(t *testing.T) {
	b, err := ParseBank([]byte("topics:\n  jokes:\n    words: ['  ', '']\n"), 1)
	require.NoError(t, err)
	ctx := context.Background()

	c, err := b.Generate(ctx, Request{Topic: TopicJokes, Mode: stats.ModeSurvival})
	require.NoError(t, err)
	assert.Equal(t, FallbackWords, c.Words)

	c, err = b.Generate(ctx, Request{Topic: TopicJokes, Mode: stats.ModeClassic})
	require.NoError(t, err)
	assert.Equal(t, FallbackText, c.Text)
}

func TestParseBankRejectsEmpty(t *testing.T) {
	_, err := ParseBank([]byte("topics: {}\n"), 1)
	assert.Error(t, err)

	_, err = ParseBank([]byte("topics: ["), 1)
	assert.Error(t, err)
}

func TestLoadBankMissingFile(t *testing.T) {
	_, err := LoadBank("/nonexistent/bank.yaml", 1)
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	in := []string{" go ", "", "\trust\n", "   "}
	assert.Equal(t, []string{"go", "rust"}, SanitizeWords(in))
	assert.Equal(t, " go ", in[0])

	assert.Equal(t, "a b c", SanitizeText("  a\n\n b\t c  "))
	assert.Equal(t, "", SanitizeText(" \n "))
}

func TestTopicString(t *testing.T) {
	assert.Equal(t, "Fun Facts", TopicFacts.String())
	assert.Equal(t, "Inspirational Quotes", TopicQuotes.String())
	assert.Equal(t, "Topic(9)", Topic(9).String())
}

func TestParseTopic(t *testing.T) {
	got, err := ParseTopic("fun facts")
	require.NoError(t, err)
	assert.Equal(t, TopicFacts, got)

	got, err = ParseTopic("code")
	require.NoError(t, err)
	assert.Equal(t, TopicCode, got)

	_, err = ParseTopic("poetry")
	assert.ErrorIs(t, err, ErrUnknownTopic)
}
