package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestImportResult_MarshalJSON(t *testing.T) {
	t.Run("successful run has null error and empty draft ids", func(t *testing.T) {
		data, err := json.Marshal(ImportResult{Imported: 0})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		if !strings.Contains(string(data), `"error":null`) {
			t.Errorf("expected null error, got %s", data)
		}
		if !strings.Contains(string(data), `"draft_ids":[]`) {
			t.Errorf("expected empty draft_ids array, got %s", data)
		}
	})

	t.Run("failed run carries the error", func(t *testing.T) {
		result := ImportResult{Error: "rate limited"}
		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		if !strings.Contains(string(data), `"error":"rate limited"`) {
			t.Errorf("expected error string, got %s", data)
		}
		if !result.Failed() {
			t.Error("expected Failed() to report true")
		}
	})
}

func TestBusiness_HasFeature(t *testing.T) {
	business := Business{Features: []string{"a", FeaturePremiumCustomization}}

	if !business.HasFeature(FeaturePremiumCustomization) {
		t.Error("expected feature to be present")
	}
	if business.HasFeature("missing") {
		t.Error("unexpected feature reported present")
	}
	var empty Business
	if empty.HasFeature(FeaturePremiumCustomization) {
		t.Error("empty feature list must report false")
	}
}
