package actor

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// Stats holds the six core ability scores.
type Stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats to a map for d20.Actor compatibility.
func (s *Stats) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// PCSpec is the serializable specification for a player character.
type PCSpec struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Stats       Stats    `json:"stats,omitempty"`
	HP          int      `json:"hp,omitempty"`
	MaxHP       int      `json:"max_hp,omitempty"`
	AC          int      `json:"ac,omitempty"`
	Inventory   []string `json:"inventory,omitempty"`
}

// PC is the runtime representation of a player character.
type PC struct {
	Spec  *PCSpec
	Actor *d20.Actor // built at runtime from the spec
}

// DefaultPCSpec is the character used when a session is created without an
// explicit one.
func DefaultPCSpec() *PCSpec {
	return &PCSpec{
		ID:    "wanderer",
		Name:  "Wanderer",
		Stats: Stats{Strength: 10, Dexterity: 12, Constitution: 10, Intelligence: 12, Wisdom: 11, Charisma: 10},
		MaxHP: 12,
		HP:    12,
		AC:    11,
	}
}

// NewPCFromSpec builds the runtime PC, including its d20.Actor.
func NewPCFromSpec(spec *PCSpec) (*PC, error) {
	if spec == nil {
		return nil, fmt.Errorf("pc spec is required")
	}

	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(spec.Stats.ToAttributes()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &PC{Spec: spec, Actor: actor}, nil
}
