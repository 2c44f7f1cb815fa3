package filter

import (
	"testing"

	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	restaurants = []models.Restaurant{
		{ID: "canteen", Name: "Student Center Canteen"},
		{ID: "depot", Name: models.StationeryDepotName},
		{ID: "bookshop", Name: "Notebook Corner"},
	}
	items = []models.MenuItem{
		{ID: "f1", RestaurantID: "canteen", Name: "Chicken Momos", Category: models.CategoryFastFood},
		{ID: "f2", RestaurantID: "canteen", Name: "Masala Dosa", Category: models.CategoryMeals, IsVeg: true},
		{ID: "f3", RestaurantID: "canteen", Name: "Chicken Thali", Category: models.CategoryMeals},
		{ID: "s1", RestaurantID: "depot", Name: "A4 Ruled NOTEBOOK", Category: models.CategoryNotebooks, IsVeg: true},
		{ID: "s2", RestaurantID: "bookshop", Name: "Gel Pen", Category: models.CategoryPens, IsVeg: true},
	}
)

func ids(items []models.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"no filters", Query{Section: models.SectionHome}, []string{"f1", "f2", "f3", "s1", "s2"}},
		{"food veg only", Query{Section: models.SectionFood, VegOnly: true}, []string{"f2"}},
		{"food section", Query{Section: models.SectionFood}, []string{"f1", "f2", "f3"}},
		{"stationery section", Query{Section: models.SectionStationery}, []string{"s1", "s2"}},
		{"orders section has no restriction", Query{Section: models.SectionOrders}, []string{"f1", "f2", "f3", "s1", "s2"}},
		// matches item name, category label and restaurant name
		{"notebook on home", Query{Text: "notebook", Section: models.SectionHome}, []string{"s1", "s2"}},
		{"category label", Query{Text: "meals"}, []string{"f2", "f3"}},
		{"restaurant name", Query{Text: "CANTEEN"}, []string{"f1", "f2", "f3"}},
		{"text narrowed by section", Query{Text: "chicken", Section: models.SectionStationery}, []string{}},
		{"restaurant scope", Query{RestaurantID: "canteen", Text: "chicken"}, []string{"f1", "f3"}},
		{"restaurant scope ignores section", Query{RestaurantID: "depot", Section: models.SectionFood}, []string{"s1"}},
		{"restaurant scope veg", Query{RestaurantID: "canteen", VegOnly: true}, []string{"f2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(items, restaurants, tt.q)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	input := make([]models.MenuItem, len(items))
	copy(input, items)

	_ = Apply(input, restaurants, Query{Section: models.SectionFood, VegOnly: true})
	_ = Apply(input, restaurants, Query{Section: models.SectionFood, VegOnly: true})

	assert.Equal(t, items, input)
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(items[:3])
	require.Len(t, groups, 2)
	assert.Equal(t, models.CategoryFastFood, groups[0].Category)
	assert.Equal(t, []string{"f2", "f3"}, ids(groups[1].Items))
}
