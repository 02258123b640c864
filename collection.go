package devtrack

import (
	"encoding/json"
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Collection is the in-memory set of project records, keyed by project name.
//
// A Collection is owned by its caller: it is loaded from a Store, modified,
// and persisted back. It is not safe for concurrent use.
type Collection struct {
	records map[string]*Record
	// opaque keeps the raw JSON of entries that could not be decoded, so that
	// persisting the collection writes them back unchanged.
	opaque map[string]json.RawMessage
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{
		records: make(map[string]*Record),
		opaque:  make(map[string]json.RawMessage),
	}
}

// Len returns the number of projects, including the undecodable ones.
func (c *Collection) Len() int { return len(c.records) + len(c.opaque) }

// Has reports whether a project with that name exists.
func (c *Collection) Has(name string) bool {
	_, ok := c.records[name]
	_, bad := c.opaque[name]
	return ok || bad
}

// Get returns the record of a project.
func (c *Collection) Get(name string) (*Record, bool) {
	r, ok := c.records[name]
	return r, ok
}

// Set replaces the whole entry of a project.
func (c *Collection) Set(name string, r *Record) {
	delete(c.opaque, name)
	c.records[name] = r
}

// Delete removes a project and reports whether it existed.
func (c *Collection) Delete(name string) bool {
	existed := c.Has(name)
	delete(c.records, name)
	delete(c.opaque, name)
	return existed
}

// IsOpaque reports whether the project exists but its record could not be
// decoded.
func (c *Collection) IsOpaque(name string) bool {
	_, ok := c.opaque[name]
	return ok
}

// Names returns all the project names in alphabetical order.
func (c *Collection) Names() []string {
	names := slices.Collect(maps.Keys(c.records))
	for name := range c.opaque {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All iterates over the decoded records in name order.
func (c *Collection) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		names := slices.Sorted(maps.Keys(c.records))
		for _, name := range names {
			if !yield(name, c.records[name]) {
				return
			}
		}
	}
}

// Figures iterates over every project in name order for the portfolio figures.
// Undecodable entries yield the fields that can still be read from their raw
// JSON, an empty record when none can.
func (c *Collection) Figures() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		for _, name := range c.Names() {
			r, ok := c.records[name]
			if !ok {
				r = salvage(c.opaque[name])
			}
			if !yield(name, r) {
				return
			}
		}
	}
}

// salvage reads the currency, amounts, status and units of a raw record field
// by field, ignoring the fields that are absent or malformed.
func salvage(raw json.RawMessage) *Record {
	r := new(Record)
	var groups map[string]json.RawMessage
	if json.Unmarshal(raw, &groups) != nil {
		return r
	}
	var dev, sales map[string]json.RawMessage
	_ = json.Unmarshal(groups["development_data"], &dev)
	_ = json.Unmarshal(groups["sales_progress"], &sales)

	var currency, status string
	_ = json.Unmarshal(dev["currency"], &currency)
	_ = json.Unmarshal(dev["status"], &status)
	number := func(raw json.RawMessage) decimal.Decimal {
		var d decimal.Decimal
		if len(raw) == 0 || d.UnmarshalJSON(raw) != nil {
			return decimal.Zero
		}
		return d
	}
	r.Development.GDV = M(number(dev["gdv"]), currency)
	r.Development.GDC = M(number(dev["gdc"]), currency)
	r.Development.Status = Status(status)
	r.Sales.TotalUnits = int(number(sales["total_units"]).IntPart())
	r.Sales.UnitsSold = int(number(sales["units_sold"]).IntPart())
	return r
}

// MarshalJSON writes the collection as a single JSON object, projects sorted
// by name.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, name := range c.Names() {
		if raw, ok := c.opaque[name]; ok {
			w.Raw(name, raw)
			continue
		}
		w.Append(name, c.records[name])
	}
	return w.MarshalJSON()
}

// UnmarshalJSON reads a collection. The document must be a JSON object,
// entries that are not valid records are kept as they are.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var jentries map[string]json.RawMessage
	if err := json.Unmarshal(data, &jentries); err != nil {
		return fmt.Errorf("projects document is not a JSON object: %w", err)
	}
	fresh := NewCollection()
	for name, raw := range jentries {
		r := new(Record)
		if string(raw) == "null" {
			fresh.opaque[name] = raw
			continue
		}
		if err := json.Unmarshal(raw, r); err != nil {
			log.Printf("warning, project %q cannot be decoded, it is kept as is: %v", name, err)
			fresh.opaque[name] = raw
			continue
		}
		fresh.records[name] = r
	}
	*c = *fresh
	return nil
}
