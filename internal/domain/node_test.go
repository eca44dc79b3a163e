package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestDelayDays_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"number", `{"delay": 3}`, 3},
		{"fractional number", `{"delay": 2.9}`, 2},
		{"numeric string", `{"delay": "4"}`, 4},
		{"string with suffix", `{"delay": "5 days"}`, 5},
		{"garbage string", `{"delay": "soon"}`, 1},
		{"empty string", `{"delay": ""}`, 1},
		{"null", `{"delay": null}`, 1},
		{"missing", `{}`, 1},
		{"zero", `{"delay": 0}`, 1},
		{"negative", `{"delay": -2}`, 1},
		{"huge number", `{"delay": 1e30}`, math.MaxInt},
		{"huge string", `{"delay": "99999999999999999999"}`, math.MaxInt},
		{"huge negative", `{"delay": -1e30}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data NodeData
			if err := json.Unmarshal([]byte(tt.input), &data); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if data.DelayDays() != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, data.DelayDays())
			}
		})
	}
}

func TestDelayDays_RejectsNonScalar(t *testing.T) {
	var data NodeData
	if err := json.Unmarshal([]byte(`{"delay": {"n": 1}}`), &data); err == nil {
		t.Error("expected error for object delay")
	}
}

func TestNodeData_EffectiveWaitType(t *testing.T) {
	if (NodeData{}).EffectiveWaitType() != WaitTypeDays {
		t.Error("empty wait type should read as days")
	}
	if (NodeData{WaitType: WaitTypeSpecific}).EffectiveWaitType() != WaitTypeSpecific {
		t.Error("specific wait type should be kept")
	}
}

func TestNodeData_SpecificInstant(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)

	tests := []struct {
		name     string
		date     string
		clock    string
		expected time.Time
		ok       bool
	}{
		{"minutes", "2026-11-01", "09:30", time.Date(2026, 11, 1, 9, 30, 0, 0, loc), true},
		{"seconds", "2026-11-01", "09:30:15", time.Date(2026, 11, 1, 9, 30, 15, 0, loc), true},
		{"missing date", "", "09:30", time.Time{}, false},
		{"missing time", "2026-11-01", "", time.Time{}, false},
		{"bad date", "01/11/2026", "09:30", time.Time{}, false},
		{"bad time", "2026-11-01", "9am", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := NodeData{SpecificDate: tt.date, SpecificTime: tt.clock}
			got, ok := data.SpecificInstant(loc)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNodeData_EmailBody(t *testing.T) {
	if got := (NodeData{Body: "b", EmailContent: "c"}).EmailBody(); got != "b" {
		t.Errorf("expected body to win, got %q", got)
	}
	if got := (NodeData{EmailContent: "c"}).EmailBody(); got != "c" {
		t.Errorf("expected emailContent fallback, got %q", got)
	}
}

func TestNodeKind_IsValid(t *testing.T) {
	for _, k := range []NodeKind{KindLeadSource, KindWait, KindColdEmail} {
		if !k.IsValid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if NodeKind("sms").IsValid() {
		t.Error("sms should be invalid")
	}
}
