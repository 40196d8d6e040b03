package game

// PlayerID identifies a player within a match. Zero means "no player".
type PlayerID int

// HostPlayerID is the seat that substitute (dummy) players delegate their
// auto-draw preference to. The first human to join a session takes this seat.
const HostPlayerID PlayerID = 1

// StatusType tags a status entry on a card.
type StatusType string

const (
	StatusSupport StatusType = "support"
	StatusThreat  StatusType = "threat"
	StatusStun    StatusType = "stun"
)

// Derived reports whether the status type is owned by the status engine.
// Derived statuses are erased and rebuilt on every recompute; anything else
// is persistent and only ever set by game actions.
func (t StatusType) Derived() bool {
	return t == StatusSupport || t == StatusThreat
}

// Status is a tagged status entry attributed to the player that caused it.
type Status struct {
	Type    StatusType `json:"type"`
	AddedBy PlayerID   `json:"addedBy"`
}

// Template ids of the two heroes the status engine recognises. All other
// ability text is opaque data.
const (
	HeroReverend = "reverend" // grants Support along its row and column
	HeroMrPearl  = "mr_pearl" // grants +1 bonus power along its row and column
)

// Card is a single card instance, either in a hand, a deck, or on the board.
// BonusPower and derived statuses are scratch state: they are zeroed and
// rebuilt by Recompute and must never be treated as ground truth.
type Card struct {
	ID         string
	BaseID     string
	Owner      PlayerID // zero when unplaced or neutral
	FaceDown   bool
	Power      int
	BonusPower int
	Statuses   []Status
}

// HasStatus reports whether the card carries a status of the given type.
func (c *Card) HasStatus(t StatusType) bool {
	for _, s := range c.Statuses {
		if s.Type == t {
			return true
		}
	}
	return false
}

// Stunned is a shorthand for the persistent Stun status. A stunned card
// neither grants Support nor poses Threat, though it can still receive both.
func (c *Card) Stunned() bool {
	return c.HasStatus(StatusStun)
}

// addStatus records a status at most once per type, keeping the first
// attribution when multiple triggers apply.
func (c *Card) addStatus(t StatusType, by PlayerID) {
	if c.HasStatus(t) {
		return
	}
	c.Statuses = append(c.Statuses, Status{Type: t, AddedBy: by})
}

// removeStatus drops every status entry of the given type.
func (c *Card) removeStatus(t StatusType) {
	kept := c.Statuses[:0]
	for _, s := range c.Statuses {
		if s.Type != t {
			kept = append(kept, s)
		}
	}
	c.Statuses = kept
}

// clone returns a deep copy; the status slice is never shared.
func (c *Card) clone() *Card {
	dup := *c
	dup.Statuses = make([]Status, len(c.Statuses))
	copy(dup.Statuses, c.Statuses)
	return &dup
}
