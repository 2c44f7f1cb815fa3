// Package simulator drives a campus ordering session end to end: customers
// browse and check out, the admin dispatches partners and partners deliver,
// all on a simulated clock.
package simulator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/chrisdamba/pupulse/internal/catalog"
	"github.com/chrisdamba/pupulse/internal/events"
	"github.com/chrisdamba/pupulse/internal/factories"
	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/chrisdamba/pupulse/internal/orders"
	"github.com/chrisdamba/pupulse/internal/output"
	"github.com/chrisdamba/pupulse/internal/repositories"
	"github.com/chrisdamba/pupulse/internal/repositories/postgres"
	"github.com/chrisdamba/pupulse/internal/session"
)

const maxAssignAttempts = 30

// SeedStore is where the catalog and partner roster are kept between runs.
type SeedStore interface {
	Empty(ctx context.Context) (bool, error)
	Save(ctx context.Context, seed repositories.Seed) error
	Load(ctx context.Context) (repositories.Seed, error)
}

// Summary is what a finished run reports.
type Summary struct {
	Stats             session.Stats
	Delivered         int
	Cancelled         int
	ValidationRetries int
	Written           map[string]int
	WriteFailures     int
}

type Simulator struct {
	Config      *models.Config
	CurrentTime time.Time
	Rng         *rand.Rand
	Actions     *models.ActionQueue
	Customers   map[string]factories.Customer

	store     *session.Store
	writer    *output.EventWriter
	dest      output.OutputDestination
	seedStore SeedStore
	logger    *slog.Logger
	progress  io.Writer
	bar       *progressbar.ProgressBar

	assignAttempts map[string]int
	picks          map[string]int
	summary        Summary
}

type Option func(*Simulator)

// WithOutput replaces the destination configured by output_destination.
func WithOutput(dest output.OutputDestination) Option {
	return func(s *Simulator) { s.dest = dest }
}

// WithSeedStore loads the session's reference data from store, filling it
// from the factories first when it is empty.
func WithSeedStore(store SeedStore) Option {
	return func(s *Simulator) { s.seedStore = store }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithProgressWriter sets where the progress bar is drawn. Use io.Discard to
// hide it.
func WithProgressWriter(w io.Writer) Option {
	return func(s *Simulator) { s.progress = w }
}

func NewSimulator(config *models.Config, opts ...Option) *Simulator {
	sim := &Simulator{
		Config:         config,
		CurrentTime:    config.StartDate,
		Rng:            rand.New(rand.NewSource(int64(config.Seed))),
		Actions:        models.NewActionQueue(),
		Customers:      make(map[string]factories.Customer),
		logger:         slog.Default(),
		progress:       os.Stderr,
		assignAttempts: make(map[string]int),
		picks:          make(map[string]int),
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.CurrentTime.IsZero() {
		sim.CurrentTime = time.Now().UTC().Truncate(time.Minute)
	}
	return sim
}

// GenerateSeed builds a campus catalog and partner roster from the factories.
// The same config seed always yields the same names and prices.
func GenerateSeed(cfg *models.Config) repositories.Seed {
	seed := int64(cfg.Seed)
	restaurants := factories.NewRestaurantFactory(seed).CreateRestaurants(cfg.InitialRestaurants)

	menuFactory := factories.NewMenuItemFactory(seed + 1)
	var items []models.MenuItem
	for _, r := range restaurants {
		items = append(items, menuFactory.CreateMenu(r, cfg.ItemsPerRestaurant)...)
	}

	partners := factories.NewDeliveryPartnerFactory(seed + 2).CreateDeliveryPartners(cfg.InitialPartners)
	return repositories.Seed{Restaurants: restaurants, MenuItems: items, Partners: partners}
}

// LoadSeed returns a session's reference data: from store when one is given,
// from Postgres when database.url is set, otherwise straight from the
// factories. An empty store is filled from the factories first.
func LoadSeed(ctx context.Context, cfg *models.Config, store SeedStore) (repositories.Seed, error) {
	if store == nil {
		if cfg.Database.URL == "" {
			return GenerateSeed(cfg), nil
		}
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return repositories.Seed{}, err
		}
		defer pool.Close()
		store = postgres.NewSeedStore(pool)
	}

	empty, err := store.Empty(ctx)
	if err != nil {
		return repositories.Seed{}, err
	}
	if empty {
		if err := store.Save(ctx, GenerateSeed(cfg)); err != nil {
			return repositories.Seed{}, err
		}
		slog.Info("seeded catalog store")
	}
	return store.Load(ctx)
}

// NewSession wires a catalog, an order engine and the session store around
// seed. Order and catalog events both go to publisher.
func NewSession(cfg *models.Config, seed repositories.Seed, now func() time.Time, publisher events.Publisher, logger *slog.Logger) (*session.Store, error) {
	cat, err := catalog.New(seed.Restaurants, seed.MenuItems)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	engine, err := orders.NewEngine(seed.Partners,
		orders.WithDeliveryFee(cfg.DeliveryFee),
		orders.WithDeliveryBonus(cfg.PartnerDeliveryBonus),
		orders.WithClock(now),
		orders.WithRand(rand.New(rand.NewSource(int64(cfg.Seed)+3))),
		orders.WithPublisher(publisher),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build order engine: %w", err)
	}
	return session.New(cat, engine,
		session.WithPublisher(publisher),
		session.WithClock(now),
		session.WithLogger(logger),
	), nil
}

func (s *Simulator) now() time.Time { return s.CurrentTime }

func (s *Simulator) initializeData(ctx context.Context) error {
	seed, err := LoadSeed(ctx, s.Config, s.seedStore)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}
	store, err := NewSession(s.Config, seed, s.now, s.writer, s.logger)
	if err != nil {
		return err
	}
	s.store = store

	s.logger.Info("session initialised",
		"restaurants", len(seed.Restaurants),
		"menuItems", len(seed.MenuItems),
		"partners", len(seed.Partners),
	)
	return nil
}

// scheduleSession queues one checkout per simulated order plus a few admin
// and partner chores spread over the same window.
func (s *Simulator) scheduleSession() {
	customerFactory := factories.NewCustomerFactory(int64(s.Config.Seed)+4, s.Config.VegShare)

	at := s.CurrentTime
	for i := 0; i < s.Config.SimulatedOrders; i++ {
		at = at.Add(time.Duration(1+s.Rng.Intn(5)) * time.Minute)
		c := customerFactory.CreateCustomer()
		s.Customers[c.ID] = c
		s.Actions.Enqueue(&models.Action{Time: at, Type: models.ActionCustomerCheckout, ActorID: c.ID})
	}
	span := at.Sub(s.CurrentTime)
	if span <= 0 {
		return
	}

	s.Actions.Enqueue(&models.Action{Time: s.CurrentTime.Add(span / 2), Type: models.ActionAdminDeleteItem})

	partners := s.store.Admin().Partners()
	if len(partners) > 0 {
		p := partners[s.Rng.Intn(len(partners))]
		s.Actions.Enqueue(&models.Action{Time: s.CurrentTime.Add(span / 3), Type: models.ActionPartnerGoOffline, ActorID: p.ID})
	}
}

func (s *Simulator) openOutput() error {
	if s.dest == nil {
		dest, err := output.New(s.Config)
		if err != nil {
			return err
		}
		s.dest = dest
	}
	s.writer = output.NewEventWriter(s.dest, s.logger)
	return nil
}

func (s *Simulator) Run(ctx context.Context) (Summary, error) {
	if err := s.openOutput(); err != nil {
		return Summary{}, fmt.Errorf("failed to open output: %w", err)
	}
	defer func() {
		if err := s.writer.Close(); err != nil {
			s.logger.Error("failed to close output", "error", err)
		}
	}()

	if err := s.initializeData(ctx); err != nil {
		return Summary{}, err
	}
	s.scheduleSession()

	s.bar = progressbar.NewOptions(s.Config.SimulatedOrders,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription("simulating orders"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	s.logger.Info("simulation starts", "start", s.CurrentTime.Format(time.RFC3339), "orders", s.Config.SimulatedOrders)

	for {
		if err := ctx.Err(); err != nil {
			return s.finish(), err
		}
		next := s.Actions.Peek()
		if next == nil {
			break
		}
		if next.Time.After(s.CurrentTime) {
			s.CurrentTime = next.Time
		}
		s.processAction(s.Actions.Dequeue())
	}

	_ = s.bar.Finish()
	return s.finish(), nil
}

func (s *Simulator) finish() Summary {
	s.summary.Stats = s.store.Admin().Stats()
	s.summary.Written = s.writer.Written()
	s.summary.WriteFailures = s.writer.Failures()

	s.logger.Info("simulation completed",
		"end", s.CurrentTime.Format(time.RFC3339),
		"orders", s.summary.Stats.TotalOrders,
		"revenue", s.summary.Stats.Revenue,
		"activePartners", s.summary.Stats.ActivePartners,
		"delivered", s.summary.Delivered,
		"cancelled", s.summary.Cancelled,
		"validationRetries", s.summary.ValidationRetries,
		"writeFailures", s.summary.WriteFailures,
	)
	return s.summary
}

// orderSettled advances the progress bar once an order is delivered,
// cancelled or could not be placed.
func (s *Simulator) orderSettled() {
	if s.bar != nil {
		_ = s.bar.Add(1)
	}
}

func (s *Simulator) after(minMinutes, maxMinutes int) time.Time {
	return s.CurrentTime.Add(time.Duration(minMinutes+s.Rng.Intn(maxMinutes-minMinutes+1)) * time.Minute)
}
