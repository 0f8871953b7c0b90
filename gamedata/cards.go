package gamedata

import "fmt"

// CardKind is the type tag of a card id.
type CardKind int

const (
	CardItem CardKind = iota
	CardSpell
	CardFairy
	CardBlank
)

// ParseCardKind reads a card kind argument. Only the exact tokens 0 to 3
// are accepted.
func ParseCardKind(token string) (CardKind, bool) {
	switch token {
	case "0":
		return CardItem, true
	case "1":
		return CardSpell, true
	case "2":
		return CardFairy, true
	case "3":
		return CardBlank, true
	}
	return 0, false
}

func (k CardKind) String() string {
	switch k {
	case CardItem:
		return "Item"
	case CardSpell:
		return "Spell"
	case CardFairy:
		return "Fairy"
	case CardBlank:
		return "Blank"
	default:
		return fmt.Sprintf("CardKind(%d)", int(k))
	}
}

// EntityID strips the entity id from a full card id as stored in the
// fairy, spell and item tables.
func EntityID(cardID int64) int64 {
	return (cardID >> 16) & 0xffff
}
