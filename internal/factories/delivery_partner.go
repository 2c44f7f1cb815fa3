package factories

import (
	"fmt"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/chrisdamba/pupulse/internal/models"
)

type DeliveryPartnerFactory struct {
	fake faker.Faker
}

func NewDeliveryPartnerFactory(seed int64) *DeliveryPartnerFactory {
	return &DeliveryPartnerFactory{fake: newFaker(seed)}
}

// CreateDeliveryPartners returns n partners. The first is always available;
// roughly one in five of the rest starts offline.
func (df *DeliveryPartnerFactory) CreateDeliveryPartners(n int) []models.DeliveryPartner {
	out := make([]models.DeliveryPartner, 0, n)
	for i := 0; i < n; i++ {
		status := models.PartnerStatusAvailable
		if i > 0 && chance(df.fake, 0.2) {
			status = models.PartnerStatusOffline
		}
		out = append(out, df.create(status))
	}
	return out
}

func (df *DeliveryPartnerFactory) create(status models.PartnerStatus) models.DeliveryPartner {
	id := cuid.New()
	return models.DeliveryPartner{
		ID:     id,
		Name:   df.fake.Person().Name(),
		Phone:  df.fake.Numerify("+91 9#########"),
		Status: status,
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", id),
	}
}
