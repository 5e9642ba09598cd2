package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforma-dev/reforma/internal/record"
)

const today = "2026-03-01"

func parse(t *testing.T, c record.Collection, text string) []record.Record {
	t.Helper()
	recs, err := DefaultRegistry(today).Parse(c, text)
	require.NoError(t, err)
	return recs
}

func TestExpenseParser_File(t *testing.T) {
	data, err := os.ReadFile("testdata/expenses.csv")
	require.NoError(t, err)

	recs := parse(t, record.Expenses, string(data))
	require.Len(t, recs, 3)

	assert.Equal(t, "Cimento CP-II", recs[0]["description"])
	assert.Equal(t, 35.90, recs[0]["amount"])
	assert.Equal(t, "2026-02-20", recs[0]["date"])
	assert.Equal(t, "material", recs[0]["category"])
	assert.Equal(t, "bath", recs[0]["room"])
	assert.Equal(t, "pix", recs[0]["paymentMethod"])

	assert.Equal(t, 250.0, recs[1]["amount"])
	assert.Equal(t, "labor", recs[1]["category"])
	assert.Equal(t, "general", recs[1]["room"])
	assert.Equal(t, "cash", recs[1]["paymentMethod"])

	assert.Equal(t, 1200.0, recs[2]["amount"])
	assert.Equal(t, today, recs[2]["date"])
	assert.Equal(t, "freight", recs[2]["category"])
	assert.Equal(t, "card", recs[2]["paymentMethod"])
}

func TestExpenseParser_Delimiters(t *testing.T) {
	for name, text := range map[string]string{
		"tab":       "Tinta\t89,90\nLixa\t12",
		"semicolon": "Tinta;89,90\nLixa;12",
		"comma":     "Tinta,89,90\nLixa,12",
	} {
		recs := parse(t, record.Expenses, text)
		require.Len(t, recs, 2, name)
		assert.Equal(t, "Tinta", recs[0]["description"], name)
		assert.Equal(t, 89.90, recs[0]["amount"], name)
		assert.Equal(t, 12.0, recs[1]["amount"], name)
	}
}

func TestExpenseParser_FreeText(t *testing.T) {
	text := "Nota da loja\nCimento banheiro R$ 35,90\nEntrega | 50,00\nok\n"
	recs := parse(t, record.Expenses, text)
	require.Len(t, recs, 2)

	assert.Equal(t, "Cimento banheiro", recs[0]["description"])
	assert.Equal(t, 35.90, recs[0]["amount"])
	assert.Equal(t, "bath", recs[0]["room"])
	assert.Equal(t, today, recs[0]["date"])

	assert.Equal(t, "Entrega", recs[1]["description"])
	assert.Equal(t, "freight", recs[1]["category"])
}

func TestMaterialParser(t *testing.T) {
	text := "nome;qtd;unidade;preco;comodo;status\nPiso porcelanato;12,5;m2;R$ 59,90;bedroom;bought\nRejunte;;;;\nTijolo churrasqueira;500"
	recs := parse(t, record.Materials, text)
	require.Len(t, recs, 3)

	assert.Equal(t, 12.5, recs[0]["quantity"])
	assert.Equal(t, "m2", recs[0]["unit"])
	assert.Equal(t, 59.90, recs[0]["unitPrice"])
	assert.Equal(t, "bought", recs[0]["status"])

	assert.Equal(t, 1.0, recs[1]["quantity"])
	assert.Equal(t, "un", recs[1]["unit"])
	assert.Equal(t, 0.0, recs[1]["unitPrice"])
	assert.Equal(t, "pending", recs[1]["status"])
	assert.Equal(t, "general", recs[1]["room"])

	assert.Equal(t, 500.0, recs[2]["quantity"])
	assert.Equal(t, "bbq", recs[2]["room"])
}

func TestMaterialParser_FreeText(t *testing.T) {
	recs := parse(t, record.Materials, "Cimento 10 saco R$ 35,90\nAreia fina 2 m3\nxx")
	require.Len(t, recs, 2)

	assert.Equal(t, "Cimento", recs[0]["name"])
	assert.Equal(t, 10.0, recs[0]["quantity"])
	assert.Equal(t, "saco", recs[0]["unit"])
	assert.Equal(t, 35.90, recs[0]["unitPrice"])

	assert.Equal(t, "Areia fina", recs[1]["name"])
	assert.Equal(t, 2.0, recs[1]["quantity"])
	assert.Equal(t, "m3", recs[1]["unit"])
	assert.Equal(t, 0.0, recs[1]["unitPrice"])
}

func TestTaskParser(t *testing.T) {
	recs := parse(t, record.Tasks, "Tarefa;Comodo;Inicio;Fim\nAssentar piso do banheiro;;2026-03-02;2026-03-05;Joao\nPintar;bedroom")
	require.Len(t, recs, 2)

	assert.Equal(t, "bath", recs[0]["room"])
	assert.Equal(t, "2026-03-05", recs[0]["endDate"])
	assert.Equal(t, "Joao", recs[0]["assignee"])
	assert.Equal(t, "pending", recs[0]["status"])
	assert.Equal(t, "bedroom", recs[1]["room"])

	// Tasks have no free-text form.
	assert.Empty(t, parse(t, record.Tasks, "just a sentence"))
}

func TestProfessionalParser(t *testing.T) {
	recs := parse(t, record.Professionals, "Joao;pedreiro;9999-0000;;R$ 250,00\nMaria;eletricista;;contract;3.500,00")
	require.Len(t, recs, 2)

	assert.Equal(t, "daily", recs[0]["billingType"])
	assert.Equal(t, 250.0, recs[0]["rate"])
	assert.Equal(t, "contract", recs[1]["billingType"])
	assert.Equal(t, 3500.0, recs[1]["rate"])
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(today)
	assert.Equal(t, []record.Collection{"expenses", "materials", "professionals", "tasks"}, r.Collections())
	assert.Nil(t, r.Get(record.Quotes))

	_, err := r.Parse(record.Quotes, "x;y")
	assert.Error(t, err)

	c, ok := r.CollectionFor("materials-bath.csv")
	require.True(t, ok)
	assert.Equal(t, record.Materials, c)
	_, ok = r.CollectionFor("bank.csv")
	assert.False(t, ok)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&TaskParser{})
	assert.Panics(t, func() { r.Register(&TaskParser{}) })
}

func TestScan_FindsImportFiles(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "expenses.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "materials.TXT"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "photo.jpg"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "expenses.csv", files[0].Name)
	assert.Equal(t, "materials.TXT", files[1].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "expenses.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "expenses.csv"))

	_, err := os.Stat(filepath.Join(importDir, "expenses.csv"))
	assert.True(t, os.IsNotExist(err))

	info, err := os.Stat(filepath.Join(dir, "import", "processed", "expenses.csv"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
