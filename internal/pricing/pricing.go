// Package pricing holds the read-only resource price table of the store.
package pricing

import (
	"errors"
	"fmt"

	"github.com/polsommer/PanelHosting/internal/config"
)

// ErrUnknownResource is returned for resource kinds outside the store catalogue.
var ErrUnknownResource = errors.New("unknown resource")

// Resource is a purchasable kind of server capacity.
type Resource string

const (
	CPU       Resource = "cpu"
	Memory    Resource = "memory"
	Disk      Resource = "disk"
	Slots     Resource = "slots"
	Ports     Resource = "ports"
	Backups   Resource = "backups"
	Databases Resource = "databases"
)

// Resources lists every purchasable kind in display order.
var Resources = []Resource{CPU, Memory, Disk, Slots, Ports, Backups, Databases}

// quantities is how much of each resource one purchase grants.
// cpu is in percent of a core, memory and disk in MiB.
var quantities = map[Resource]int64{
	CPU:       50,
	Memory:    1024,
	Disk:      1024,
	Slots:     1,
	Ports:     1,
	Backups:   1,
	Databases: 1,
}

// Valid reports whether s names a known resource.
func Valid(s string) bool {
	_, ok := quantities[Resource(s)]
	return ok
}

// Table maps each resource to its unit cost in credits.
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	costs map[Resource]int64
}

// NewTable builds a table from explicit costs. Every resource must be priced
// and no cost may be negative.
func NewTable(costs map[Resource]int64) (*Table, error) {
	t := &Table{costs: make(map[Resource]int64, len(Resources))}
	for _, r := range Resources {
		c, ok := costs[r]
		if !ok {
			return nil, fmt.Errorf("missing cost for %s", r)
		}
		if c < 0 {
			return nil, fmt.Errorf("negative cost for %s: %d", r, c)
		}
		t.costs[r] = c
	}
	for r := range costs {
		if _, ok := quantities[r]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownResource, r)
		}
	}
	return t, nil
}

// FromConfig builds the table from store configuration.
func FromConfig(cfg config.StoreConfig) (*Table, error) {
	return NewTable(map[Resource]int64{
		CPU:       cfg.CostCPU,
		Memory:    cfg.CostMemory,
		Disk:      cfg.CostDisk,
		Slots:     cfg.CostSlots,
		Ports:     cfg.CostPorts,
		Backups:   cfg.CostBackups,
		Databases: cfg.CostDatabases,
	})
}

// PriceOf returns the unit cost of kind.
func (t *Table) PriceOf(kind string) (int64, error) {
	c, ok := t.costs[Resource(kind)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, kind)
	}
	return c, nil
}

// Quantity returns the amount of kind granted by one purchase.
func (t *Table) Quantity(kind string) (int64, error) {
	q, ok := quantities[Resource(kind)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, kind)
	}
	return q, nil
}

// Costs returns a copy of the price table keyed by resource name.
func (t *Table) Costs() map[string]int64 {
	out := make(map[string]int64, len(t.costs))
	for r, c := range t.costs {
		out[string(r)] = c
	}
	return out
}
