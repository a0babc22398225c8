package domain

import (
	"strings"
	"time"
)

// Card is a catalog entry. IDs come from the external catalog (e.g. "base-4").
type Card struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SetName        string    `json:"set_name"`
	CardType       string    `json:"card_type"`
	Rarity         string    `json:"rarity"`
	EnergyType     string    `json:"energy_type"`
	HP             int       `json:"hp"`
	AttackNames    []string  `json:"attack_names"` // stored as JSON text
	Description    string    `json:"description"`
	EvolutionStage string    `json:"evolution_stage"`
	Weakness       string    `json:"weakness"`
	Resistance     string    `json:"resistance"`
	RetreatCost    int       `json:"retreat_cost"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks the fields the catalog requires before an import.
func (c *Card) Validate() error {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.SetName = strings.TrimSpace(c.SetName)
	if c.ID == "" {
		return Validation("card id is required")
	}
	if c.Name == "" {
		return Validation("card %s: name is required", c.ID)
	}
	if c.SetName == "" {
		return Validation("card %s: set name is required", c.ID)
	}
	if c.HP < 0 || c.RetreatCost < 0 {
		return Validation("card %s: hp and retreat cost must not be negative", c.ID)
	}
	return nil
}

// CascadeResult counts the dependent rows removed together with a parent.
type CascadeResult struct {
	Entries     int64 `json:"entries"`
	Decks       int64 `json:"decks"`
	Allocations int64 `json:"allocations"`
}
