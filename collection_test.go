package devtrack

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func TestCollectionKeepsUndecodableEntries(t *testing.T) {
	doc := `{
		"Tower B": {"development_data": {"gdv": "not a number"}},
		"Tower A": {"development_data": {"gdv": 100, "gdc": 60, "status": "Construction"}},
		"Ghost": null
	}`
	c := NewCollection()
	if err := json.Unmarshal([]byte(doc), c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got, want := c.Names(), []string{"Ghost", "Tower A", "Tower B"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if !c.IsOpaque("Tower B") || !c.IsOpaque("Ghost") || c.IsOpaque("Tower A") {
		t.Errorf("IsOpaque() wrong for the entries")
	}
	if _, ok := c.Get("Tower B"); ok {
		t.Errorf("Get(\"Tower B\") returned a record for an undecodable entry")
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"Tower B":{"development_data":{"gdv":"not a number"}}`) {
		t.Errorf("Marshal() did not write the undecodable entry back verbatim:\n%s", data)
	}
	if !strings.Contains(string(data), `"Ghost":null`) {
		t.Errorf("Marshal() dropped the null entry:\n%s", data)
	}

	// Saving over an undecodable entry replaces it.
	c.Set("Tower B", projectWith(Planning, 1, 1))
	if c.IsOpaque("Tower B") {
		t.Errorf("IsOpaque(\"Tower B\") after Set = true")
	}
}

func TestCollectionFigures(t *testing.T) {
	doc := `{"A":{"development_data":{"currency":"MYR","gdv":100,"gdc":60,"status":"Construction","parking":"many"},"sales_progress":{"total_units":12,"units_sold":3.0}},"B":{"development_data":{"currency":"MYR","gdv":100,"status":"Construction"}},"C":[1,2]}`
	c := NewCollection()
	if err := json.Unmarshal([]byte(doc), c); err != nil {
		t.Fatal(err)
	}
	tests := map[string]struct {
		gdv, gdc Money
		status   Status
		sold     int
	}{
		"A": {gdv: MYR(100), gdc: MYR(60), status: Construction, sold: 3},
		"B": {gdv: MYR(100), gdc: MYR(0), status: Construction},
		"C": {gdv: NO(0), gdc: NO(0)},
	}
	var names []string
	for name, r := range c.Figures() {
		names = append(names, name)
		tt := tests[name]
		d := r.Development
		if !d.GDV.Equal(tt.gdv) || !d.GDC.Equal(tt.gdc) || d.Status != tt.status || r.Sales.UnitsSold != tt.sold {
			t.Errorf("Figures()[%s] = %v %v %q %d, want %v %v %q %d", name, d.GDV, d.GDC, d.Status, r.Sales.UnitsSold, tt.gdv, tt.gdc, tt.status, tt.sold)
		}
	}
	if want := []string{"A", "B", "C"}; !slices.Equal(names, want) {
		t.Errorf("Figures() names = %v, want %v", names, want)
	}

	// The salvaged figures do not change what is written back.
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"A":{"development_data":{"currency":"MYR","gdv":100,"gdc":60,"status":"Construction","parking":"many"},"sales_progress":{"total_units":12,"units_sold":3.0}}`) {
		t.Errorf("Marshal() did not write A back verbatim:\n%s", data)
	}
}

func TestCollectionMarshalOrder(t *testing.T) {
	c := collectionOf(map[string]*Record{
		"zeta":  {},
		"alpha": {},
		"Mid":   {},
	})
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	a := strings.Index(string(data), `"Mid"`)
	b := strings.Index(string(data), `"alpha"`)
	z := strings.Index(string(data), `"zeta"`)
	if !(a < b && b < z) {
		t.Errorf("Marshal() order is not by name: %s", data)
	}
}

func TestCollectionRejectsNonObject(t *testing.T) {
	for _, doc := range []string{`[]`, `"projects"`, `42`} {
		c := NewCollection()
		if err := json.Unmarshal([]byte(doc), c); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want an error", doc)
		}
	}
}

func TestCollectionDelete(t *testing.T) {
	c := collectionOf(map[string]*Record{"A": projectWith(Planning, 1, 1)})
	if !c.Delete("A") {
		t.Errorf("Delete(\"A\") = false, want true")
	}
	if c.Delete("A") {
		t.Errorf("second Delete(\"A\") = true, want false")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}
