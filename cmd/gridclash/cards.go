package main

import (
	"fmt"

	"github.com/lox/gridclash/internal/game"
)

// CardsCmd validates card-set and deck files and prints their contents.
type CardsCmd struct {
	CardSet string `kong:"short='s',help='Path to a YAML card-set file (defaults to the built-in set)'"`
	Decks   string `kong:"short='d',help='Path to a YAML deck list file'"`
}

func (c *CardsCmd) Run() error {
	set := game.DefaultCardSet()
	if c.CardSet != "" {
		loaded, err := game.LoadCardSet(c.CardSet)
		if err != nil {
			return err
		}
		set = loaded
	}

	fmt.Printf("Card set: %d templates\n", len(set.Cards))
	for _, tpl := range set.Cards {
		if tpl.Ability != "" {
			fmt.Printf("  %-16s power %d  %s\n", tpl.ID, tpl.Power, tpl.Ability)
		} else {
			fmt.Printf("  %-16s power %d\n", tpl.ID, tpl.Power)
		}
	}

	decks := []game.DeckList{game.DefaultDeckList()}
	if c.Decks != "" {
		df, err := game.LoadDeckFile(c.Decks)
		if err != nil {
			return err
		}
		decks = df.Decks
	}

	for _, deck := range decks {
		// Building the deck proves every entry resolves against the set.
		cards, err := set.BuildDeck(deck, "check")
		if err != nil {
			return err
		}
		fmt.Printf("Deck %q: %d cards\n", deck.Name, len(cards))
	}

	return nil
}
