package api

import (
	"net/http"
	"reflect"
	"testing"
)

func TestRouteTable_Match(t *testing.T) {
	table := DefaultRouteTable()

	tests := []struct {
		path      string
		wantOK    bool
		wantRes   string
		wantShape Shape
		wantID    string
	}{
		{path: "/api/tasks", wantOK: true, wantRes: ResourceTasks, wantShape: ShapeCollection},
		{path: "/api/devices", wantOK: true, wantRes: ResourceDevices, wantShape: ShapeCollection},
		{path: "/api/tasks/65f1a2b3c4d5e6f708192a3b", wantOK: true, wantRes: ResourceTasks, wantShape: ShapeItem, wantID: "65f1a2b3c4d5e6f708192a3b"},
		{path: "/api/devices/abcdefgh", wantOK: true, wantRes: ResourceDevices, wantShape: ShapeItem, wantID: "abcdefgh"},
		{path: "/api/tasks/abcdefg"},
		{path: "/api/tasks/65f1a2b3c4d5e6f708192a3b0"},
		{path: "/api/tasks/65F1A2B3C4D5E6F708192A3B"},
		{path: "/api/tasks/"},
		{path: "/api/tasks/abcdefgh/"},
		{path: "/api/tasksx"},
		{path: "/api"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := table.Match(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Resource != tt.wantRes || m.Shape != tt.wantShape || m.ID != tt.wantID {
				t.Errorf("Match(%q) = %+v", tt.path, m)
			}
		})
	}
}

func TestRouteTable_Immutable(t *testing.T) {
	methods := []string{http.MethodGet}
	table := NewRouteTable(Route{Resource: "widgets", Path: "/api/widgets", CollectionMethods: methods})

	methods[0] = http.MethodDelete

	m, ok := table.Match("/api/widgets")
	if !ok {
		t.Fatal("Match() ok = false")
	}
	if !m.Allows(http.MethodGet) || m.Allows(http.MethodDelete) {
		t.Errorf("table changed with caller slice: methods = %v", m.Methods())
	}

	got := m.Methods()
	got[0] = http.MethodPatch
	if !reflect.DeepEqual(m.Methods(), []string{http.MethodGet}) {
		t.Errorf("Methods() exposes internal slice: %v", m.Methods())
	}
}

func TestShape_String(t *testing.T) {
	if ShapeCollection.String() != "collection" || ShapeItem.String() != "item" {
		t.Errorf("Shape strings = %q, %q", ShapeCollection, ShapeItem)
	}
}
