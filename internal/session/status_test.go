package session

import (
	"encoding/json"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUnknown, "unknown"},
		{StatusGenerating, "generating"},
		{StatusCompleted, "completed"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusGenerating.Terminal() {
		t.Error("generating reported as terminal")
	}
	if StatusUnknown.Terminal() {
		t.Error("unknown reported as terminal")
	}
	if !StatusCompleted.Terminal() {
		t.Error("completed not reported as terminal")
	}
}

func TestStatusJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(StatusGenerating)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"generating"` {
		t.Errorf("Marshal = %s, want %q", data, `"generating"`)
	}

	var s Status
	if err := json.Unmarshal([]byte(`"completed"`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s != StatusCompleted {
		t.Errorf("Unmarshal = %v, want completed", s)
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("generating")
	if err != nil {
		t.Fatalf("ParseStatus(generating): %v", err)
	}
	if got != StatusGenerating {
		t.Errorf("ParseStatus(generating) = %v", got)
	}

	if _, err := ParseStatus("banana"); err == nil {
		t.Error("ParseStatus with unknown name did not return error")
	}
}
