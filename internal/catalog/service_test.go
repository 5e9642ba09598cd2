package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforma-dev/reforma/internal/kv"
	"github.com/reforma-dev/reforma/internal/record"
)

func newService(t *testing.T) (*Service, *record.Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	store := record.NewStore(mem)
	return NewService(store), store, mem
}

func slugs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Slug
	}
	return out
}

func TestDefaults(t *testing.T) {
	svc, _, _ := newService(t)
	assert.Equal(t, []string{"material", "labor", "freight", "tools", "other"}, slugs(svc.Categories()))
	assert.Equal(t, []string{"bbq", "bath", "bedroom", "general"}, slugs(svc.Rooms()))

	e, ok := svc.Get(KindRoom, "bath")
	require.True(t, ok)
	assert.Equal(t, "Bathroom", e.Label)
	assert.False(t, svc.Exists(KindCategory, "permits"))
}

func TestAdd(t *testing.T) {
	svc, store, _ := newService(t)

	slug, err := svc.Add(KindCategory, "  Licença  de Obra ")
	require.NoError(t, err)
	assert.Equal(t, "licenca-de-obra", slug)

	_, err = svc.Add(KindCategory, "licença de obra")
	require.NoError(t, err)
	_, err = svc.Add(KindCategory, "Material")
	require.NoError(t, err)

	assert.Equal(t, []string{"licenca-de-obra"}, store.Config().CustomCategories)
	e, ok := svc.Get(KindCategory, "licenca-de-obra")
	require.True(t, ok)
	assert.True(t, e.Custom)

	_, err = svc.Add(KindRoom, "Varanda")
	require.NoError(t, err)
	assert.Equal(t, []string{"bbq", "bath", "bedroom", "general", "varanda"}, slugs(svc.Rooms()))
}

func TestAdd_TooShort(t *testing.T) {
	svc, store, _ := newService(t)
	for _, name := range []string{"", " ", "x", " é "} {
		_, err := svc.Add(KindRoom, name)
		assert.ErrorIs(t, err, ErrTooShort, name)
	}
	assert.Empty(t, store.Config().CustomRooms)
}

func TestAdd_SaveError(t *testing.T) {
	svc, _, mem := newService(t)
	mem.FailWrites = errors.New("full")
	_, err := svc.Add(KindCategory, "permits")
	assert.ErrorIs(t, err, record.ErrSave)
}

func TestRemove(t *testing.T) {
	svc, store, _ := newService(t)
	_, err := svc.Add(KindRoom, "garage")
	require.NoError(t, err)
	require.NoError(t, store.SaveConfig(record.Config{DarkMode: true, CustomRooms: store.Config().CustomRooms}))

	removed, err := svc.Remove(KindRoom, "garage")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, store.Config().CustomRooms)
	assert.True(t, store.Config().DarkMode)

	removed, err = svc.Remove(KindRoom, "bath")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.True(t, svc.Exists(KindRoom, "bath"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "area-de-servico", Slugify("Área de  Serviço"))
	assert.Equal(t, "wc", Slugify("WC"))
}
