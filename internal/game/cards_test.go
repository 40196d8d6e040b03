package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCardSet(t *testing.T) {
	path := writeTempYAML(t, "cards.yaml", `
cards:
  - id: reverend
    name: Reverend
    power: 3
    ability: Allies in this row and column gain Support.
  - id: grunt
    name: Grunt
    power: 2
`)
	set, err := LoadCardSet(path)
	require.NoError(t, err)
	assert.Len(t, set.Cards, 2)

	tpl, ok := set.Template("grunt")
	require.True(t, ok)
	assert.Equal(t, 2, tpl.Power)

	_, ok = set.Template("missing")
	assert.False(t, ok)
}

func TestLoadCardSetRejectsDuplicates(t *testing.T) {
	path := writeTempYAML(t, "cards.yaml", `
cards:
  - id: grunt
    name: Grunt
    power: 2
  - id: grunt
    name: Grunt Again
    power: 3
`)
	_, err := LoadCardSet(path)
	assert.ErrorContains(t, err, "duplicate template id")
}

func TestLoadDeckFile(t *testing.T) {
	path := writeTempYAML(t, "decks.yaml", `
decks:
  - name: aggro
    cards:
      - id: grunt
        count: 4
      - id: reverend
`)
	df, err := LoadDeckFile(path)
	require.NoError(t, err)

	deck, ok := df.DeckByName("aggro")
	require.True(t, ok)
	assert.Len(t, deck.Cards, 2)

	_, ok = df.DeckByName("control")
	assert.False(t, ok)
}

func TestBuildDeck(t *testing.T) {
	set := DefaultCardSet()

	t.Run("expands counts with unique instance ids", func(t *testing.T) {
		deck, err := set.BuildDeck(DeckList{
			Name:  "test",
			Cards: []DeckEntry{{ID: "enforcer", Count: 2}, {ID: HeroReverend}},
		}, "p1")
		require.NoError(t, err)
		require.Len(t, deck, 3)

		assert.Equal(t, "p1-enforcer-1", deck[0].ID)
		assert.Equal(t, "p1-enforcer-2", deck[1].ID)
		assert.Equal(t, "p1-reverend-1", deck[2].ID)
		assert.Equal(t, "enforcer", deck[0].BaseID)

		ids := make(map[string]bool)
		for _, c := range deck {
			assert.False(t, ids[c.ID])
			ids[c.ID] = true
		}
	})

	t.Run("unknown template fails", func(t *testing.T) {
		_, err := set.BuildDeck(DeckList{
			Name:  "bad",
			Cards: []DeckEntry{{ID: "nonexistent"}},
		}, "p1")
		assert.ErrorContains(t, err, "unknown card id")
	})
}

func TestDefaultCardSetIncludesHeroes(t *testing.T) {
	set := DefaultCardSet()
	_, ok := set.Template(HeroReverend)
	assert.True(t, ok)
	_, ok = set.Template(HeroMrPearl)
	assert.True(t, ok)

	deck, err := set.BuildDeck(DefaultDeckList(), "p1")
	require.NoError(t, err)
	assert.Len(t, deck, 20)
}
