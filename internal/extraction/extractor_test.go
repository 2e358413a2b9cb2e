package extraction

import (
	"strings"
	"testing"
	"time"
)

func TestParseResponse_ValidEvent(t *testing.T) {
	raw := `{
		"is_event": true,
		"confidence": 0.85,
		"title": "Weekend Popup Market",
		"description": "Fresh pastries and coffee",
		"start_date": "2026-09-05",
		"start_time": "10:00",
		"end_date": "2026-09-05",
		"end_time": "16:30",
		"location": "123 Main St",
		"suggested_category": "food-drink"
	}`

	extraction := ParseResponse(raw)
	if !extraction.IsEvent() {
		t.Fatal("expected event")
	}
	if extraction.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", extraction.Confidence)
	}

	d := extraction.Details
	if d.Title != "Weekend Popup Market" {
		t.Errorf("unexpected title: %s", d.Title)
	}
	if d.StartDate == nil || !d.StartDate.Equal(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start date: %v", d.StartDate)
	}
	if d.StartTime == nil || d.StartTime.Hour != 10 || d.StartTime.Minute != 0 {
		t.Errorf("unexpected start time: %v", d.StartTime)
	}
	if d.EndTime == nil || d.EndTime.Hour != 16 || d.EndTime.Minute != 30 {
		t.Errorf("unexpected end time: %v", d.EndTime)
	}
}

func TestParseResponse_FailClosed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "this caption looks like an event to me!"},
		{name: "truncated", raw: `{"is_event": true, "confidence": 0.9, "title": "Popu`},
		{name: "empty", raw: ""},
		{name: "json array", raw: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extraction := ParseResponse(tt.raw)
			if extraction.IsEvent() {
				t.Error("expected not-event")
			}
			if extraction.Confidence != 0 {
				t.Errorf("expected confidence 0, got %v", extraction.Confidence)
			}
		})
	}
}

func TestParseResponse_CodeFenceStripped(t *testing.T) {
	raw := "```json\n{\"is_event\": true, \"confidence\": 0.7, \"title\": \"Launch Party\"}\n```"

	extraction := ParseResponse(raw)
	if !extraction.IsEvent() {
		t.Fatal("expected event after stripping code fence")
	}
	if extraction.Details.Title != "Launch Party" {
		t.Errorf("unexpected title: %s", extraction.Details.Title)
	}
}

func TestParseResponse_BadFieldsDropped(t *testing.T) {
	raw := `{
		"is_event": true,
		"confidence": 0.75,
		"title": "Popup",
		"start_date": "next saturday",
		"start_time": "around noon",
		"end_date": "2026-13-45",
		"end_time": "25:99"
	}`

	extraction := ParseResponse(raw)
	if !extraction.IsEvent() {
		t.Fatal("expected event despite bad date fields")
	}

	d := extraction.Details
	if d.StartDate != nil || d.StartTime != nil || d.EndDate != nil || d.EndTime != nil {
		t.Error("malformed date/time fields should be dropped, not kept")
	}
}

func TestParseResponse_NotEventKeepsConfidence(t *testing.T) {
	extraction := ParseResponse(`{"is_event": false, "confidence": 0.3}`)
	if extraction.IsEvent() {
		t.Fatal("expected not-event")
	}
	if extraction.Confidence != 0.3 {
		t.Errorf("expected confidence 0.3, got %v", extraction.Confidence)
	}
}

func TestParseResponse_ConfidenceClamped(t *testing.T) {
	extraction := ParseResponse(`{"is_event": true, "confidence": 1.7, "title": "X"}`)
	if extraction.Confidence != 1.0 {
		t.Errorf("expected clamp to 1.0, got %v", extraction.Confidence)
	}

	extraction = ParseResponse(`{"is_event": false, "confidence": -0.2}`)
	if extraction.Confidence != 0 {
		t.Errorf("expected clamp to 0, got %v", extraction.Confidence)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Popup this Saturday! #popmap", TenantContext{Name: "Test Bakery", DefaultCategory: "food-drink"})

	for _, want := range []string{"Test Bakery", "food-drink", "Popup this Saturday! #popmap"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	prompt = BuildPrompt("caption", TenantContext{Name: "No Category"})
	if !strings.Contains(prompt, "unknown") {
		t.Error("expected unknown default category")
	}
}
