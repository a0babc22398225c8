// Package importer reads catalog files for the card import command.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
)

// LoadFile picks the reader by extension: .json or .csv.
func LoadFile(path string) ([]domain.Card, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(fp)
	case ".csv":
		return ReadCSV(fp)
	}
	return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

func ReadJSON(r io.Reader) ([]domain.Card, error) {
	var cards []domain.Card
	if err := json.NewDecoder(r).Decode(&cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return cards, nil
}

// ReadCSV reads a headered CSV. Columns are matched by name, unknown columns
// are ignored and attack_names holds a "/" separated list.
func ReadCSV(r io.Reader) ([]domain.Card, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv has no header")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("csv header is missing the id column")
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := make([]domain.Card, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		hp, err := atoiCell(get(row, "hp"))
		if err != nil {
			return nil, fmt.Errorf("line %d: hp: %w", line, err)
		}
		retreat, err := atoiCell(get(row, "retreat_cost"))
		if err != nil {
			return nil, fmt.Errorf("line %d: retreat_cost: %w", line, err)
		}

		out = append(out, domain.Card{
			ID:             get(row, "id"),
			Name:           get(row, "name"),
			SetName:        get(row, "set_name"),
			CardType:       get(row, "card_type"),
			Rarity:         get(row, "rarity"),
			EnergyType:     get(row, "energy_type"),
			HP:             hp,
			AttackNames:    parseListCell(get(row, "attack_names")),
			Description:    get(row, "description"),
			EvolutionStage: get(row, "evolution_stage"),
			Weakness:       get(row, "weakness"),
			Resistance:     get(row, "resistance"),
			RetreatCost:    retreat,
		})
	}
	return out, nil
}

func atoiCell(s string) (int, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseListCell(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, "/") {
		if t := strings.TrimSpace(p); t != "" && t != "-" {
			out = append(out, t)
		}
	}
	return out
}
