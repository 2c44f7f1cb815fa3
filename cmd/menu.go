package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/pupulse/internal/events"
	"github.com/chrisdamba/pupulse/internal/filter"
	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/chrisdamba/pupulse/internal/session"
	"github.com/chrisdamba/pupulse/internal/simulator"
)

func newMenuCmd(a *app) *cobra.Command {
	var (
		search     string
		restaurant string
		section    string
		vegOnly    bool
	)

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Browse the campus catalog",
		Example: `  pupulse menu --section food --veg
  pupulse menu --search momos
  pupulse menu --restaurant "Stationery Depot"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := parseSection(section)
			if err != nil {
				return err
			}
			store, err := openSession(cmd, a)
			if err != nil {
				return err
			}
			cv := store.Customer()

			q := filter.Query{Text: search, Section: sec, VegOnly: vegOnly}
			out := cmd.OutOrStdout()
			if restaurant != "" {
				r, ok := findRestaurant(cv.Restaurants(), restaurant)
				if !ok {
					return fmt.Errorf("no restaurant matches %q", restaurant)
				}
				q.RestaurantID = r.ID
				fmt.Fprintf(out, "%s · %s · ★ %.1f · %s\n", r.Name, r.Cuisine, r.Rating, r.DeliveryTime)
			}

			items := cv.Browse(q)
			if len(items) == 0 {
				fmt.Fprintln(out, "No items found")
				return nil
			}
			printMenu(out, filter.GroupByCategory(items), restaurantNames(cv.Restaurants()), q.RestaurantID == "")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&search, "search", "s", "", "Match item, category or restaurant names")
	flags.StringVarP(&restaurant, "restaurant", "r", "", "Show one restaurant's menu (name or ID)")
	flags.StringVar(&section, "section", string(models.SectionHome), "home, food or stationery")
	flags.BoolVar(&vegOnly, "veg", false, "Only vegetarian items")
	return cmd
}

// openSession builds a session over the configured catalog. Nothing the
// session emits is kept.
func openSession(cmd *cobra.Command, a *app) (*session.Store, error) {
	seed, err := simulator.LoadSeed(cmd.Context(), a.cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return simulator.NewSession(a.cfg, seed, time.Now, events.Discard, a.logger)
}

func parseSection(s string) (models.Section, error) {
	switch sec := models.Section(strings.ToLower(s)); sec {
	case "", models.SectionHome:
		return models.SectionHome, nil
	case models.SectionFood, models.SectionStationery:
		return sec, nil
	default:
		return "", fmt.Errorf("unknown section %q", s)
	}
}

func findRestaurant(restaurants []models.Restaurant, key string) (models.Restaurant, bool) {
	for _, r := range restaurants {
		if r.ID == key || strings.EqualFold(r.Name, key) {
			return r, true
		}
	}
	return models.Restaurant{}, false
}

func restaurantNames(restaurants []models.Restaurant) map[string]string {
	names := make(map[string]string, len(restaurants))
	for _, r := range restaurants {
		names[r.ID] = r.Name
	}
	return names
}

func printMenu(w io.Writer, groups []filter.CategoryGroup, names map[string]string, withRestaurant bool) {
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s\n", g.Category)
		for _, it := range g.Items {
			mark := "  "
			if it.Category.IsFood() {
				mark = "🔴"
				if it.IsVeg {
					mark = "🟢"
				}
			}
			line := fmt.Sprintf("  %s %-28s ₹%-5d ★ %.1f", mark, it.Name, it.Price, it.Rating)
			if withRestaurant {
				line += "  " + names[it.RestaurantID]
			}
			fmt.Fprintln(w, line)
		}
	}
}
