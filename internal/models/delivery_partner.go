package models

type DeliveryPartner struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Phone           string        `json:"phone"`
	Status          PartnerStatus `json:"status"`
	Earnings        int           `json:"earnings"`
	TotalDeliveries int           `json:"total_deliveries"`
	Avatar          string        `json:"avatar"`
}

func (p DeliveryPartner) IsAvailable() bool {
	return p.Status == PartnerStatusAvailable
}
