// Package factories generates the campus reference data a session starts
// from: food courts, their menus, the stationery depot, delivery partners
// and the customers who order.
package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
)

// newFaker returns a faker whose output is fixed by seed.
func newFaker(seed int64) faker.Faker {
	return faker.NewWithSeed(rand.NewSource(seed))
}

func chance(fake faker.Faker, p float64) bool {
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return fake.Float64(4, 0, 1) < p
}
