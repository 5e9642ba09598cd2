package record

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_Default(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, Budget{}, s.Budget())
	assert.True(t, s.Budget().Total().IsZero())
}

func TestBudget_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	b := Budget{BBQ: 5000, Bath: 8000, Bedroom: 3000, General: 1500}
	require.NoError(t, s.SaveBudget(b))

	got := s.Budget()
	assert.Equal(t, b, got)
	assert.True(t, got.Total().Equal(decimal.NewFromInt(17500)))
	assert.True(t, got.For(RoomBath).Equal(decimal.NewFromInt(8000)))
	assert.True(t, got.For("garage").IsZero())
}

func TestBudget_Set(t *testing.T) {
	b, err := Budget{}.Set(RoomBedroom, decimal.RequireFromString("2500.50"))
	require.NoError(t, err)
	assert.InDelta(t, 2500.50, b.Bedroom, 0.001)

	_, err = b.Set("garage", decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestBudget_Corrupt(t *testing.T) {
	s, mem := newTestStore(t)
	require.NoError(t, mem.Set(StorageKey(SectionBudget), []byte(`{"bbq":"lots"`)))
	assert.Equal(t, Budget{}, s.Budget())

	require.NoError(t, mem.Set(StorageKey(SectionBudget), []byte(`null`)))
	assert.Equal(t, Budget{}, s.Budget())
}

func TestConfig_DefaultAndRoundTrip(t *testing.T) {
	s, mem := newTestStore(t)
	assert.False(t, s.Config().DarkMode)

	cfg := Config{DarkMode: true, CustomCategories: []string{"permits"}}
	require.NoError(t, s.SaveConfig(cfg))
	assert.Equal(t, cfg, s.Config())

	raw, _, _ := mem.Get(StorageKey(SectionConfig))
	assert.JSONEq(t, `{"darkMode":true,"customCategories":["permits"]}`, string(raw))

	require.NoError(t, mem.Set(StorageKey(SectionConfig), []byte("garbage")))
	assert.Equal(t, Config{}, s.Config())
}

func TestSections_Raw(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Nil(t, s.ReadSection("expenses"))

	require.NoError(t, s.WriteSection("expenses", []byte(`[{"id":"a"}]`)))
	assert.JSONEq(t, `[{"id":"a"}]`, string(s.ReadSection("expenses")))
	assert.Len(t, s.ListAll(Expenses), 1)

	assert.ErrorIs(t, s.WriteSection("expenses", []byte(`{bad`)), ErrSave)
}
