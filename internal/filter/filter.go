// Package filter derives the visible menu from the catalog and the
// customer's browsing state. Everything here is a pure function of its inputs.
package filter

import (
	"strings"

	"github.com/chrisdamba/pupulse/internal/models"
)

type Query struct {
	Text string
	// RestaurantID scopes the listing to one restaurant's menu (detail view).
	RestaurantID string
	Section      models.Section
	VegOnly      bool
}

// Apply narrows items in four stages: restaurant scope, free text, section,
// veg-only. The section restriction applies to the main listing only and is
// skipped while a restaurant scope is active.
func Apply(items []models.MenuItem, restaurants []models.Restaurant, q Query) []models.MenuItem {
	names := make(map[string]string, len(restaurants))
	for _, r := range restaurants {
		names[r.ID] = strings.ToLower(r.Name)
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if q.RestaurantID != "" && it.RestaurantID != q.RestaurantID {
			continue
		}
		if text != "" && !matchesText(it, names[it.RestaurantID], text) {
			continue
		}
		if q.RestaurantID == "" && !inSection(it.Category, q.Section) {
			continue
		}
		if q.VegOnly && !it.IsVeg {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesText(it models.MenuItem, restaurantName, text string) bool {
	return strings.Contains(strings.ToLower(it.Name), text) ||
		strings.Contains(strings.ToLower(string(it.Category)), text) ||
		(restaurantName != "" && strings.Contains(restaurantName, text))
}

func inSection(c models.Category, s models.Section) bool {
	switch s {
	case models.SectionFood:
		return c.IsFood()
	case models.SectionStationery:
		return c.IsStationery()
	default:
		return true
	}
}

// CategoryGroup is one heading of a restaurant menu.
type CategoryGroup struct {
	Category models.Category
	Items    []models.MenuItem
}

// GroupByCategory buckets items by category, keeping the order in which
// categories first appear.
func GroupByCategory(items []models.MenuItem) []CategoryGroup {
	index := make(map[models.Category]int)
	var groups []CategoryGroup
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(groups)
			index[it.Category] = i
			groups = append(groups, CategoryGroup{Category: it.Category})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
