package models

// Category is the catalog category an item is listed under.
type Category string

const (
	CategoryFastFood  Category = "Fast Food"
	CategoryBeverages Category = "Beverages"
	CategoryMeals     Category = "Meals"
	CategoryNotebooks Category = "Notebooks"
	CategoryPens      Category = "Pens"
	CategoryFiles     Category = "Files"
)

// FoodCategories and StationeryCategories are listed in menu display order.
var (
	FoodCategories       = []Category{CategoryFastFood, CategoryBeverages, CategoryMeals}
	StationeryCategories = []Category{CategoryNotebooks, CategoryPens, CategoryFiles}
)

func (c Category) IsFood() bool {
	for _, fc := range FoodCategories {
		if c == fc {
			return true
		}
	}
	return false
}

func (c Category) IsStationery() bool {
	for _, sc := range StationeryCategories {
		if c == sc {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	return c.IsFood() || c.IsStationery()
}

// Section is the top-level customer navigation tab.
type Section string

const (
	SectionHome       Section = "home"
	SectionFood       Section = "food"
	SectionStationery Section = "stationery"
	SectionOrders     Section = "orders"
)

type PartnerStatus string

const (
	PartnerStatusAvailable PartnerStatus = "available"
	PartnerStatusBusy      PartnerStatus = "busy"
	PartnerStatusOffline   PartnerStatus = "offline"
)

const (
	DefaultDeliveryFee          = 20
	DefaultPartnerDeliveryBonus = 40

	StationeryDepotName = "Stationery Depot"
)
