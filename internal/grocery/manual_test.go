package grocery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManualItem(t *testing.T) {
	it, err := NewManualItem("  Dish soap ", " 1 ", "Household")
	require.NoError(t, err)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, "Dish soap", it.Item)
	assert.Equal(t, "1", it.Quantity)
	assert.Equal(t, CategoryOther, it.Category)
	assert.False(t, it.Checked)

	it, err = NewManualItem("milk", "", "dairy")
	require.NoError(t, err)
	assert.Equal(t, CategoryDairy, it.Category)

	_, err = NewManualItem("   ", "1", "")
	assert.ErrorIs(t, err, ErrEmptyItem)
}

func TestList_ManualItems(t *testing.T) {
	list := Build(tacoNight(), Options{})
	soap, err := NewManualItem("soap", "", "")
	require.NoError(t, err)
	list.AddManualItem(soap)

	assert.Equal(t, 3, list.Remaining())

	require.NoError(t, list.SetChecked(soap.ID, true))
	assert.True(t, list.ManualItems[0].Checked)
	assert.Equal(t, 2, list.Remaining())

	err = list.SetChecked("missing", true)
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, list.RemoveManualItem(soap.ID))
	assert.Empty(t, list.ManualItems)
	assert.ErrorIs(t, list.RemoveManualItem(soap.ID), ErrItemNotFound)
}

func TestList_ToggleByName(t *testing.T) {
	list := Build(tacoNight(), Options{})
	onion, err := NewManualItem("ONION", "", "")
	require.NoError(t, err)
	list.AddManualItem(onion)

	got, err := list.ToggleByName(" onion ")
	require.NoError(t, err)
	assert.True(t, got.Checked)
	assert.Equal(t, "onion", got.Item, "aggregated items are matched first")
	assert.False(t, list.ManualItems[0].Checked)

	got, err = list.ToggleByName("Onion")
	require.NoError(t, err)
	assert.False(t, got.Checked)

	_, err = list.ToggleByName("caviar")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestList_ClearChecked(t *testing.T) {
	list := Build(tacoNight(), Options{})
	extra, err := NewManualItem("foil", "", "")
	require.NoError(t, err)
	extra.Checked = true
	list.AddManualItem(extra)
	for _, it := range list.Items {
		require.NoError(t, list.SetChecked(it.ID, true))
	}
	assert.Equal(t, 0, list.Remaining())

	list.ClearChecked()
	assert.Equal(t, 3, list.Remaining())
	assert.Len(t, list.Categorized(), 2)
}
