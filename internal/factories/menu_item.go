package factories

import (
	"fmt"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/chrisdamba/pupulse/internal/models"
)

type dish struct {
	name string
	veg  bool
}

var dishes = map[models.Category][]dish{
	models.CategoryFastFood: {
		{"Chicken Momos", false}, {"Veg Momos", true}, {"Veg Burger", true},
		{"Aloo Tikki Burger", true}, {"French Fries", true}, {"Chicken Roll", false},
		{"Paneer Roll", true}, {"Masala Maggi", true}, {"Grilled Sandwich", true},
	},
	models.CategoryBeverages: {
		{"Cold Coffee", true}, {"Masala Chai", true}, {"Mango Shake", true},
		{"Fresh Lime Soda", true}, {"Oreo Shake", true}, {"Cappuccino", true},
	},
	models.CategoryMeals: {
		{"Veg Thali", true}, {"Chicken Biryani", false}, {"Rajma Chawal", true},
		{"Chole Bhature", true}, {"Masala Dosa", true}, {"Paneer Butter Masala", true},
		{"Egg Curry Rice", false},
	},
	models.CategoryNotebooks: {
		{"Spiral Notebook A4", true}, {"Long Notebook 200 Pages", true},
		{"Lab Record", true}, {"Sketch Book", true},
	},
	models.CategoryPens: {
		{"Gel Pen (Blue)", true}, {"Ball Pen Pack of 5", true},
		{"Highlighter Set", true}, {"Mechanical Pencil", true},
	},
	models.CategoryFiles: {
		{"Clear Bag Folder", true}, {"Spring File", true},
		{"Project File", true}, {"Document Wallet", true},
	},
}

var priceRange = map[models.Category][2]int{
	models.CategoryFastFood:  {40, 150},
	models.CategoryBeverages: {20, 120},
	models.CategoryMeals:     {80, 220},
	models.CategoryNotebooks: {30, 120},
	models.CategoryPens:      {10, 90},
	models.CategoryFiles:     {15, 80},
}

type MenuItemFactory struct {
	fake faker.Faker
}

func NewMenuItemFactory(seed int64) *MenuItemFactory {
	return &MenuItemFactory{fake: newFaker(seed)}
}

// CreateMenu returns up to n distinct items drawn from the categories the
// restaurant serves.
func (mf *MenuItemFactory) CreateMenu(r models.Restaurant, n int) []models.MenuItem {
	var pool []models.MenuItem
	for _, c := range categoriesFor(r) {
		for _, d := range dishes[c] {
			pool = append(pool, mf.create(r, c, d))
		}
	}
	for i := len(pool) - 1; i > 0; i-- {
		j := mf.fake.IntBetween(0, i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}

func (mf *MenuItemFactory) create(r models.Restaurant, c models.Category, d dish) models.MenuItem {
	prices := priceRange[c]
	// round to the nearest 5 rupees, like a printed menu
	price := mf.fake.IntBetween(prices[0], prices[1]) / 5 * 5
	slug := strings.ToLower(strings.Join(strings.Fields(d.name), "-"))
	return models.MenuItem{
		ID:           cuid.New(),
		RestaurantID: r.ID,
		Name:         d.name,
		Description:  mf.fake.Lorem().Sentence(8),
		Price:        price,
		Image:        fmt.Sprintf("https://images.pupulse.app/menu/%s.jpg", slug),
		Category:     c,
		IsVeg:        d.veg,
		Rating:       mf.fake.Float64(1, 32, 50) / 10,
		Votes:        mf.fake.IntBetween(5, 900),
	}
}
