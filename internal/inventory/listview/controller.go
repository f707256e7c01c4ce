package listview

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/DavisKoreal/Emay/pkg/metadata"
	"github.com/DavisKoreal/Emay/pkg/models"
)

// Filter narrows the view to one status; FilterAll passes everything.
type Filter string

const (
	FilterAll          Filter = "all"
	FilterInStock      Filter = Filter(metadata.StatusInStock)
	FilterSold         Filter = Filter(metadata.StatusSold)
	FilterWithRetailer Filter = Filter(metadata.StatusWithRetailer)
)

func NewFilter(value string) (Filter, error) {
	switch Filter(value) {
	case FilterAll, FilterInStock, FilterSold, FilterWithRetailer:
		return Filter(value), nil
	default:
		return "", fmt.Errorf("invalid status filter: %s", value)
	}
}

// Counts holds the per-status badge numbers.
type Counts struct {
	All          int `json:"all"`
	InStock      int `json:"in_stock"`
	Sold         int `json:"sold"`
	WithRetailer int `json:"with_retailer"`
}

// Lister is the slice of the store adapter the controller needs.
type Lister interface {
	ListAll(shopPhone string) ([]models.InventoryRecord, error)
}

// Controller owns the fetched record set for one shop and derives the
// filtered, searched, sorted view the UI renders. The cached set is
// mutated only here: wholesale on Refresh, or entry-wise through
// Apply/Remove after a confirmed write. Filter and search text are
// per-request and passed to View, never stored.
type Controller struct {
	shopPhone string
	lister    Lister

	mu         sync.Mutex
	allRecords []models.InventoryRecord

	// refresh coalescing: concurrent callers join the in-flight fetch
	// instead of racing a second full-list overwrite.
	inflight    chan struct{}
	inflightErr error
}

func NewController(shopPhone string, lister Lister) *Controller {
	return &Controller{
		shopPhone: shopPhone,
		lister:    lister,
	}
}

// Refresh re-fetches the full record set. A call that arrives while
// another fetch is pending waits for that fetch and shares its result.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	if c.inflight != nil {
		done := c.inflight
		c.mu.Unlock()
		<-done
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.inflightErr
	}

	done := make(chan struct{})
	c.inflight = done
	c.mu.Unlock()

	records, err := c.lister.ListAll(c.shopPhone)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.allRecords = records
	}
	c.inflightErr = err
	c.inflight = nil
	close(done)

	return err
}

// View derives the rendered list: status filter, then case-insensitive
// substring search over IMEI and model, then most recently touched
// first. Filter and search belong to the request, so concurrent list
// calls from one shop never see each other's query.
func (c *Controller) View(filter Filter, searchText string) []models.InventoryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := make([]models.InventoryRecord, 0, len(c.allRecords))
	for _, record := range c.allRecords {
		if !matchesFilter(record, filter) {
			continue
		}
		if !matchesSearch(record, searchText) {
			continue
		}
		view = append(view, record)
	}

	sort.SliceStable(view, func(i, j int) bool {
		return view[i].DateUpdated.After(view[j].DateUpdated)
	})

	return view
}

// Counts tallies the full cached set per status; the request's filter
// and search never affect the badge numbers.
func (c *Controller) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := Counts{All: len(c.allRecords)}
	for _, record := range c.allRecords {
		switch record.Status {
		case metadata.StatusInStock:
			counts.InStock++
		case metadata.StatusSold:
			counts.Sold++
		case metadata.StatusWithRetailer:
			counts.WithRetailer++
		}
	}
	return counts
}

// Apply patches the cached set optimistically after a confirmed write,
// inserting or replacing by IMEI.
func (c *Controller) Apply(record models.InventoryRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.allRecords {
		if c.allRecords[i].Imei == record.Imei {
			c.allRecords[i] = record
			return
		}
	}
	c.allRecords = append(c.allRecords, record)
}

// Remove drops the record from the cached set after a confirmed delete.
func (c *Controller) Remove(imei string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.allRecords {
		if c.allRecords[i].Imei == imei {
			c.allRecords = append(c.allRecords[:i], c.allRecords[i+1:]...)
			return
		}
	}
}

// Lookup finds a cached record by IMEI without a network round trip.
func (c *Controller) Lookup(imei string) (models.InventoryRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, record := range c.allRecords {
		if record.Imei == imei {
			return record, true
		}
	}
	return models.InventoryRecord{}, false
}

// HasImei answers the validator's advisory duplicate check.
func (c *Controller) HasImei(imei string) bool {
	_, ok := c.Lookup(imei)
	return ok
}

func matchesFilter(record models.InventoryRecord, filter Filter) bool {
	if filter == FilterAll {
		return true
	}
	return Filter(record.Status) == filter
}

func matchesSearch(record models.InventoryRecord, searchText string) bool {
	needle := strings.ToLower(strings.TrimSpace(searchText))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(record.Imei), needle) ||
		strings.Contains(strings.ToLower(record.Model), needle)
}
