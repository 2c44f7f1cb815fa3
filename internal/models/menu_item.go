package models

type MenuItem struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurant_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        int      `json:"price"`
	Image        string   `json:"image"`
	Category     Category `json:"category"`
	IsVeg        bool     `json:"is_veg"`
	Rating       float64  `json:"rating"`
	Votes        int      `json:"votes,omitempty"`
}

// CartItem is a menu item together with the quantity held in the cart.
type CartItem struct {
	MenuItem
	Quantity int `json:"quantity"`
}

func (ci CartItem) LineTotal() int {
	return ci.Price * ci.Quantity
}
