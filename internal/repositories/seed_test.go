package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTable[T any] struct {
	rows      []T
	log       *[]string
	name      string
	createErr error
}

func (m *memTable[T]) BulkCreate(_ context.Context, rows []T) error {
	*m.log = append(*m.log, "create "+m.name)
	if m.createErr != nil {
		return m.createErr
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memTable[T]) GetAll(context.Context) ([]T, error) { return m.rows, nil }
func (m *memTable[T]) Count(context.Context) (int, error)  { return len(m.rows), nil }

func (m *memTable[T]) DeleteAll(context.Context) error {
	*m.log = append(*m.log, "delete "+m.name)
	m.rows = nil
	return nil
}

type memMenuItems struct {
	memTable[models.MenuItem]
}

func (m *memMenuItems) GetByRestaurantID(_ context.Context, id string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, it := range m.rows {
		if it.RestaurantID == id {
			out = append(out, it)
		}
	}
	return out, nil
}

func newSeedStore(log *[]string) (SeedStore, *memTable[models.Restaurant]) {
	restaurants := &memTable[models.Restaurant]{log: log, name: "restaurants"}
	return SeedStore{
		Restaurants: restaurants,
		MenuItems:   &memMenuItems{memTable[models.MenuItem]{log: log, name: "menu_items"}},
		Partners:    &memTable[models.DeliveryPartner]{log: log, name: "delivery_partners"},
	}, restaurants
}

func TestSeedStoreRoundTrip(t *testing.T) {
	var log []string
	store, _ := newSeedStore(&log)
	ctx := context.Background()

	empty, err := store.Empty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	seed := Seed{
		Restaurants: []models.Restaurant{{ID: "r1", Name: "Student Center Canteen"}},
		MenuItems:   []models.MenuItem{{ID: "m1", RestaurantID: "r1", Name: "Chicken Momos", Price: 80}},
		Partners:    []models.DeliveryPartner{{ID: "dp1", Name: "Rahul", Status: models.PartnerStatusAvailable}},
	}
	require.NoError(t, store.Save(ctx, seed))

	assert.Equal(t, []string{
		"delete menu_items", "delete restaurants", "delete delivery_partners",
		"create restaurants", "create menu_items", "create delivery_partners",
	}, log)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, loaded)

	empty, _ = store.Empty(ctx)
	assert.False(t, empty)
}

func TestSeedStoreSaveStopsOnFailure(t *testing.T) {
	var log []string
	store, restaurants := newSeedStore(&log)
	restaurants.createErr = errors.New("unique violation")

	err := store.Save(context.Background(), Seed{Restaurants: []models.Restaurant{{ID: "r1"}}})
	assert.ErrorContains(t, err, "failed to store restaurants")
	assert.NotContains(t, log, "create menu_items")
}
