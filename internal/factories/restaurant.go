package factories

import (
	"fmt"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/chrisdamba/pupulse/internal/models"
)

type kitchen struct {
	name       string
	cuisine    string
	location   string
	categories []models.Category
}

var campusKitchens = []kitchen{
	{"Student Center Canteen", "North Indian, Chinese", "Student Center", []models.Category{models.CategoryFastFood, models.CategoryMeals, models.CategoryBeverages}},
	{"Night Canteen", "Fast Food, Rolls", "Boys Hostel Block", []models.Category{models.CategoryFastFood, models.CategoryBeverages}},
	{"Library Café", "Coffee, Snacks", "Library Lawn", []models.Category{models.CategoryBeverages, models.CategoryFastFood}},
	{"Hostel 4 Mess", "Thali, Home Style", "Boys Hostel 4", []models.Category{models.CategoryMeals}},
	{"Southern Spice", "South Indian", "Arts Block", []models.Category{models.CategoryMeals, models.CategoryBeverages}},
	{"Juice Junction", "Shakes, Juices", "Sports Complex", []models.Category{models.CategoryBeverages}},
	{"Momo Point", "Tibetan, Fast Food", "Girls Hostel Gate", []models.Category{models.CategoryFastFood}},
	{"Dhaba 24x7", "Punjabi", "Main Gate", []models.Category{models.CategoryMeals, models.CategoryFastFood}},
}

var depot = kitchen{
	name:       models.StationeryDepotName,
	cuisine:    "Stationery",
	location:   "Admin Block",
	categories: models.StationeryCategories,
}

type RestaurantFactory struct {
	fake faker.Faker
}

func NewRestaurantFactory(seed int64) *RestaurantFactory {
	return &RestaurantFactory{fake: newFaker(seed)}
}

// CreateRestaurants returns up to n food courts followed by the stationery
// depot, which every campus has.
func (rf *RestaurantFactory) CreateRestaurants(n int) []models.Restaurant {
	if n > len(campusKitchens) {
		n = len(campusKitchens)
	}
	if n < 0 {
		n = 0
	}
	out := make([]models.Restaurant, 0, n+1)
	for _, k := range campusKitchens[:n] {
		out = append(out, rf.create(k))
	}
	return append(out, rf.create(depot))
}

func (rf *RestaurantFactory) create(k kitchen) models.Restaurant {
	minutes := rf.fake.IntBetween(10, 25)
	slug := strings.ToLower(strings.NewReplacer(" ", "-", "é", "e").Replace(k.name))
	return models.Restaurant{
		ID:           cuid.New(),
		Name:         k.name,
		Cuisine:      k.cuisine,
		Rating:       rf.fake.Float64(1, 35, 49) / 10,
		DeliveryTime: fmt.Sprintf("%d-%d min", minutes, minutes+10),
		Location:     k.location,
		Image:        fmt.Sprintf("https://images.pupulse.app/restaurants/%s.jpg", slug),
		CoverImage:   fmt.Sprintf("https://images.pupulse.app/restaurants/%s-cover.jpg", slug),
	}
}

// categoriesFor returns the categories a restaurant serves, by name.
func categoriesFor(r models.Restaurant) []models.Category {
	if r.Name == depot.name {
		return depot.categories
	}
	for _, k := range campusKitchens {
		if k.name == r.Name {
			return k.categories
		}
	}
	return models.FoodCategories
}
