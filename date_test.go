package devtrack

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: NewDate(2025, time.July, 1)},
		{in: "2025-7-1", want: NewDate(2025, time.July, 1)},
		{in: "", want: Date{}},
		{in: "None", want: Date{}},
		{in: "01/07/2025", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	var holder struct {
		On  Date `json:"on"`
		Off Date `json:"off"`
	}
	if err := json.Unmarshal([]byte(`{"on":"2024-2-29","off":null}`), &holder); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if holder.On != NewDate(2024, time.February, 29) {
		t.Errorf("On = %v, want 2024-02-29", holder.On)
	}
	if !holder.Off.IsZero() {
		t.Errorf("Off = %v, want zero date", holder.Off)
	}
	got, err := json.Marshal(holder)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"on":"2024-02-29","off":null}`; string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestDateAddMonth(t *testing.T) {
	d := NewDate(2025, time.January, 31)
	// normalized like time.Date does.
	if got, want := d.AddMonth(1), NewDate(2025, time.March, 3); got != want {
		t.Errorf("AddMonth(1) = %v, want %v", got, want)
	}
	if got, want := d.AddMonth(24), NewDate(2027, time.January, 31); got != want {
		t.Errorf("AddMonth(24) = %v, want %v", got, want)
	}
}
