package devtrack

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Query evaluates a JSONPath expression (e.g. "$.sales_progress.units_sold")
// against the JSON form of a record. An empty path or "$" returns the whole
// record as generic JSON values.
func Query(r *Record, path string) (any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("cannot encode record: %w", err)
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("cannot decode record: %w", err)
	}
	path = strings.TrimSpace(path)
	if path == "" || path == "$" {
		return jobj, nil
	}
	if !strings.HasPrefix(path, "$") {
		// accept "sales_progress.units_sold" as a shortcut.
		path = "$." + path
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	return jval, nil
}
