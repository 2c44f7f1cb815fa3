package models

type Restaurant struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Cuisine      string  `json:"cuisine"`
	Rating       float64 `json:"rating"`
	DeliveryTime string  `json:"delivery_time"`
	Location     string  `json:"location"`
	Image        string  `json:"image"`
	CoverImage   string  `json:"cover_image,omitempty"`
}
