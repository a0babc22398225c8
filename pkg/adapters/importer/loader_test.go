package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	data := `id,name,set_name,hp,attack_names,retreat_cost,extra
base-4,Charizard,Base,120,Fire Spin / Scratch,3,ignored
base-58,Pikachu,Base,40,-,,
`
	cards, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, "base-4", cards[0].ID)
	assert.Equal(t, 120, cards[0].HP)
	assert.Equal(t, []string{"Fire Spin", "Scratch"}, cards[0].AttackNames)
	assert.Equal(t, 3, cards[0].RetreatCost)

	assert.Equal(t, "Pikachu", cards[1].Name)
	assert.Empty(t, cards[1].AttackNames)
	assert.Zero(t, cards[1].RetreatCost)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("name,set_name\nCharizard,Base\n"))
	assert.ErrorContains(t, err, "id column")

	_, err = ReadCSV(strings.NewReader("id,name,hp\nbase-4,Charizard,lots\n"))
	assert.ErrorContains(t, err, "line 2: hp")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "cards.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id":"base-2","name":"Blastoise","set_name":"Base","hp":100}]`), 0o600))

	cards, err := LoadFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 100, cards[0].HP)

	txtPath := filepath.Join(dir, "cards.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o600))
	_, err = LoadFile(txtPath)
	assert.ErrorContains(t, err, "unsupported")
}
