package factories

import (
	"fmt"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/chrisdamba/pupulse/internal/orders"
)

var hostels = []string{
	"Boys Hostel 1", "Boys Hostel 2", "Boys Hostel 3", "Boys Hostel 4",
	"Girls Hostel 1", "Girls Hostel 2", "Girls Hostel 3", "International Hostel",
}

// Customer is a simulated student with a few ordering habits.
type Customer struct {
	ID      string
	Name    string
	Phone   string
	Hostel  string
	Room    string
	VegOnly bool
	Section models.Section
	// Forgetful customers sometimes leave the room number blank at checkout.
	Forgetful bool
}

func (c Customer) Checkout() orders.Checkout {
	return orders.Checkout{Hostel: c.Hostel, Room: c.Room, Name: c.Name, Phone: c.Phone}
}

type CustomerFactory struct {
	fake     faker.Faker
	vegShare float64
}

func NewCustomerFactory(seed int64, vegShare float64) *CustomerFactory {
	return &CustomerFactory{fake: newFaker(seed), vegShare: vegShare}
}

func (cf *CustomerFactory) CreateCustomer() Customer {
	section := models.SectionFood
	switch r := cf.fake.IntBetween(1, 10); {
	case r <= 2:
		section = models.SectionStationery
	case r <= 4:
		section = models.SectionHome
	}
	return Customer{
		ID:        cuid.New(),
		Name:      cf.fake.Person().Name(),
		Phone:     cf.fake.Numerify("+91 8#########"),
		Hostel:    cf.fake.RandomStringElement(hostels),
		Room:      fmt.Sprintf("%d%02d", cf.fake.IntBetween(1, 4), cf.fake.IntBetween(1, 40)),
		VegOnly:   chance(cf.fake, cf.vegShare),
		Section:   section,
		Forgetful: chance(cf.fake, 0.05),
	}
}
