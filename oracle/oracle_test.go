package oracle

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Profay/Intercom-bounty/core/bounty"
)

type mapView struct {
	data map[string]json.RawMessage
}

func newMapView() *mapView {
	return &mapView{data: make(map[string]json.RawMessage)}
}

func (v *mapView) Get(_ context.Context, key string) (json.RawMessage, error) {
	raw, ok := v.data[key]
	if !ok {
		return nil, nil
	}
	return raw, nil
}

func (v *mapView) Put(_ context.Context, key string, value json.RawMessage) error {
	if value == nil {
		delete(v.data, key)
		return nil
	}
	v.data[key] = value
	return nil
}

func TestTimer_StoresValueVerbatim(t *testing.T) {
	view := newMapView()
	timer := Timer{}
	ctx := context.Background()

	if err := timer.HandleFeature(ctx, view, bounty.KeyCurrentTime, json.RawMessage("1700000000123")); err != nil {
		t.Fatalf("HandleFeature failed: %v", err)
	}
	got, _ := view.Get(ctx, bounty.KeyCurrentTime)
	if string(got) != "1700000000123" {
		t.Errorf("Expected 1700000000123 but got %s", string(got))
	}
}

func TestTimer_NonMonotonicFeedAccepted(t *testing.T) {
	view := newMapView()
	timer := Timer{}
	ctx := context.Background()

	if err := timer.HandleFeature(ctx, view, bounty.KeyCurrentTime, json.RawMessage("2000")); err != nil {
		t.Fatalf("HandleFeature failed: %v", err)
	}
	// An out-of-order feed value still replaces the stored one.
	if err := timer.HandleFeature(ctx, view, bounty.KeyCurrentTime, json.RawMessage("1000")); err != nil {
		t.Fatalf("HandleFeature failed: %v", err)
	}
	got, _ := view.Get(ctx, bounty.KeyCurrentTime)
	if string(got) != "1000" {
		t.Errorf("Expected 1000 but got %s", string(got))
	}
}

func TestTimer_IgnoresOtherKeys(t *testing.T) {
	view := newMapView()
	timer := Timer{}
	ctx := context.Background()

	if err := timer.HandleFeature(ctx, view, "weather", json.RawMessage(`"sunny"`)); err != nil {
		t.Fatalf("HandleFeature failed: %v", err)
	}
	if len(view.data) != 0 {
		t.Errorf("Expected no writes for foreign keys but got %d", len(view.data))
	}
}
