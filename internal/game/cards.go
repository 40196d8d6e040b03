package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CardTemplate is a card definition. Ability text is opaque to the engine
// except for the two hero template ids.
type CardTemplate struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Power   int    `yaml:"power"`
	Ability string `yaml:"ability,omitempty"`
}

// CardSet is the top-level card definition file.
type CardSet struct {
	Cards []CardTemplate `yaml:"cards"`

	byID map[string]CardTemplate
}

// DeckFile is the top-level YAML structure for deck lists.
type DeckFile struct {
	Decks []DeckList `yaml:"decks"`
}

// DeckList names an ordered list of card entries.
type DeckList struct {
	Name  string      `yaml:"name"`
	Cards []DeckEntry `yaml:"cards"`
}

// DeckEntry is one template and its copy count.
type DeckEntry struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// LoadCardSet parses a YAML card-set file and indexes it by template id.
func LoadCardSet(path string) (*CardSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var set CardSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse card set YAML: %w", err)
	}
	if err := set.index(); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *CardSet) index() error {
	s.byID = make(map[string]CardTemplate, len(s.Cards))
	for _, t := range s.Cards {
		if t.ID == "" {
			return fmt.Errorf("card set: template %q has no id", t.Name)
		}
		if _, dup := s.byID[t.ID]; dup {
			return fmt.Errorf("card set: duplicate template id %q", t.ID)
		}
		s.byID[t.ID] = t
	}
	return nil
}

// Template looks up a card template by id.
func (s *CardSet) Template(id string) (CardTemplate, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// LoadDeckFile parses a YAML deck list file.
func LoadDeckFile(path string) (*DeckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}
	return &df, nil
}

// DeckByName returns the named deck list.
func (df *DeckFile) DeckByName(name string) (DeckList, bool) {
	for _, d := range df.Decks {
		if d.Name == name {
			return d, true
		}
	}
	return DeckList{}, false
}

// BuildDeck instantiates a deck list into card instances. The prefix keeps
// instance ids unique across players ("p1-reverend-1", ...). Order follows
// the list; shuffling is the caller's job.
func (s *CardSet) BuildDeck(list DeckList, prefix string) ([]*Card, error) {
	var deck []*Card
	for _, entry := range list.Cards {
		tpl, ok := s.Template(entry.ID)
		if !ok {
			return nil, fmt.Errorf("deck %q: unknown card id %q", list.Name, entry.ID)
		}
		count := entry.Count
		if count <= 0 {
			count = 1
		}
		for i := 1; i <= count; i++ {
			deck = append(deck, &Card{
				ID:     fmt.Sprintf("%s-%s-%d", prefix, tpl.ID, i),
				BaseID: tpl.ID,
				Power:  tpl.Power,
			})
		}
	}
	return deck, nil
}

// DefaultCardSet is the built-in card pool used when no card-set file is
// configured. Powers are placeholders for local play; real deployments ship
// a card-set file.
func DefaultCardSet() *CardSet {
	set := &CardSet{Cards: []CardTemplate{
		{ID: HeroReverend, Name: "Reverend", Power: 3, Ability: "Allies in this row and column gain Support."},
		{ID: HeroMrPearl, Name: "Mr. Pearl", Power: 4, Ability: "Other allies in this row and column gain +1 power."},
		{ID: "enforcer", Name: "Enforcer", Power: 5},
		{ID: "lookout", Name: "Lookout", Power: 2},
		{ID: "smuggler", Name: "Smuggler", Power: 3},
		{ID: "saboteur", Name: "Saboteur", Power: 2, Ability: "Stun an adjacent enemy."},
		{ID: "quartermaster", Name: "Quartermaster", Power: 4},
		{ID: "deckhand", Name: "Deckhand", Power: 1},
	}}
	// The built-in pool is hand-written; index can only fail on bad data.
	if err := set.index(); err != nil {
		panic(err)
	}
	return set
}

// DefaultDeckList is the deck every seat receives when no deck file is
// configured: 20 cards, one copy of each hero.
func DefaultDeckList() DeckList {
	return DeckList{
		Name: "starter",
		Cards: []DeckEntry{
			{ID: HeroReverend, Count: 1},
			{ID: HeroMrPearl, Count: 1},
			{ID: "enforcer", Count: 3},
			{ID: "lookout", Count: 3},
			{ID: "smuggler", Count: 3},
			{ID: "saboteur", Count: 3},
			{ID: "quartermaster", Count: 3},
			{ID: "deckhand", Count: 3},
		},
	}
}
