package retail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/storeops/storectl/internal/backend"
	"github.com/storeops/storectl/internal/listview"
)

// ErrUnknownCollection is returned by Lookup for names it does not know.
var ErrUnknownCollection = errors.New("unknown collection")

// Collection describes one admin list page: where its records come from,
// how they render and which row actions apply.
type Collection struct {
	Name    string
	Aliases []string
	Title   string
	Headers []string
	Path    string
	Query   map[string]string
	// DefaultMode applies when neither flags nor configuration pick one.
	DefaultMode listview.SearchMode
	Actions     []ActionSpec

	fetch func(ctx context.Context, api backend.API, path string, query map[string]string) ([]Record, error)
}

func fetchAs[T Record](ctx context.Context, api backend.API, path string, query map[string]string) ([]Record, error) {
	items, err := backend.FetchList[T](ctx, api, path, query)
	if err != nil {
		return nil, err
	}
	rv := make([]Record, len(items))
	for i, it := range items {
		rv[i] = it
	}
	return rv, nil
}

var userHeaders = []string{"ID", "NAME", "USERNAME", "EMAIL", "PHONE", "ROLE", "REGISTERED"}

var itemHeaders = []string{"ID", "NAME", "SKU", "CATEGORY", "STOCK", "PRICE"}

var registry = []*Collection{
	{
		Name:        "active-users",
		Aliases:     []string{"users"},
		Title:       "Active users",
		Headers:     userHeaders,
		Path:        "/users",
		Query:       map[string]string{"status": "active"},
		DefaultMode: listview.ModeRank,
		Actions:     []ActionSpec{deleteAction},
		fetch:       fetchAs[User],
	},
	{
		Name:        "pending-approvals",
		Aliases:     []string{"pending"},
		Title:       "Pending approvals",
		Headers:     userHeaders,
		Path:        "/users",
		Query:       map[string]string{"status": "pending"},
		DefaultMode: listview.ModeRank,
		Actions:     []ActionSpec{approveUser, rejectUser},
		fetch:       fetchAs[User],
	},
	{
		Name:        "rejected-users",
		Aliases:     []string{"rejected"},
		Title:       "Rejected users",
		Headers:     userHeaders,
		Path:        "/users",
		Query:       map[string]string{"status": "rejected"},
		DefaultMode: listview.ModeExclude,
		Actions:     []ActionSpec{approveUser, deleteAction},
		fetch:       fetchAs[User],
	},
	{
		Name:        "lost-items",
		Aliases:     []string{"losses"},
		Title:       "Lost items",
		Headers:     []string{"ID", "ITEM", "QTY", "REASON", "REPORTED BY", "DATE", "VALUE"},
		Path:        "/lost-items",
		DefaultMode: listview.ModeExclude,
		Actions:     []ActionSpec{deleteAction},
		fetch:       fetchAs[LostItem],
	},
	{
		Name:        "credit-customers",
		Aliases:     []string{"credit"},
		Title:       "Credit customers",
		Headers:     []string{"ID", "NAME", "PHONE", "LIMIT", "BALANCE", "AVAILABLE", "DUE"},
		Path:        "/credit-customers",
		DefaultMode: listview.ModeExclude,
		fetch:       fetchAs[CreditCustomer],
	},
	{
		Name:        "weighable-items",
		Aliases:     []string{"weighable"},
		Title:       "Weighable items",
		Headers:     itemHeaders,
		Path:        "/items",
		Query:       map[string]string{"type": "weighable"},
		DefaultMode: listview.ModeExclude,
		Actions:     []ActionSpec{deleteAction},
		fetch:       fetchAs[Item],
	},
	{
		Name:        "unit-items",
		Aliases:     []string{"units"},
		Title:       "Unit items",
		Headers:     itemHeaders,
		Path:        "/items",
		Query:       map[string]string{"type": "unit"},
		DefaultMode: listview.ModeExclude,
		Actions:     []ActionSpec{deleteAction},
		fetch:       fetchAs[Item],
	},
	{
		Name:        "commodity-requests",
		Aliases:     []string{"requests"},
		Title:       "Commodity requests",
		Headers:     []string{"ID", "ITEM", "QTY", "REQUESTED BY", "STATUS", "DATE"},
		Path:        "/commodity-requests",
		DefaultMode: listview.ModeRank,
		Actions:     []ActionSpec{approveRequest, rejectRequest},
		fetch:       fetchAs[CommodityRequest],
	},
	{
		Name:        "expiring-products",
		Aliases:     []string{"expiring"},
		Title:       "Expiring products",
		Headers:     []string{"ID", "PRODUCT", "BATCH", "QTY", "EXPIRES", "DAYS LEFT"},
		Path:        "/products/expiring",
		DefaultMode: listview.ModeExclude,
		fetch:       fetchAs[ExpiringProduct],
	},
	{
		Name:        "inventory-costs",
		Aliases:     []string{"costs"},
		Title:       "Inventory cost details",
		Headers:     []string{"ID", "ITEM", "CATEGORY", "QTY", "UNIT COST", "TOTAL"},
		Path:        "/inventory/cost-details",
		DefaultMode: listview.ModeExclude,
		fetch:       fetchAs[CostDetail],
	},
}

// All returns every collection in display order.
func All() []*Collection {
	return slices.Clone(registry)
}

// Names returns the canonical collection names in display order.
func Names() []string {
	rv := make([]string, len(registry))
	for i, c := range registry {
		rv[i] = c.Name
	}
	return rv
}

// Lookup finds a collection by name or alias, ignoring case.
func Lookup(name string) (*Collection, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range registry {
		if c.Name == key || slices.Contains(c.Aliases, key) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w %q, must be one of %v", ErrUnknownCollection, name, Names())
}

// Fetch loads the full record set from the backend.
func (c *Collection) Fetch(ctx context.Context, api backend.API) ([]Record, error) {
	return c.fetch(ctx, api, c.Path, c.Query)
}

// Source adapts Fetch to a list binding.
func (c *Collection) Source(api backend.API) listview.Source[Record] {
	return func(ctx context.Context) ([]Record, error) {
		return c.Fetch(ctx, api)
	}
}

// Action returns the row action registered under name.
func (c *Collection) Action(name string) (ActionSpec, bool) {
	for _, a := range c.Actions {
		if string(a.Name) == name {
			return a, true
		}
	}
	return ActionSpec{}, false
}

func (c *Collection) recordPath(id string) string {
	return c.Path + "/" + url.PathEscape(id)
}
