package nscdkutil_test

import (
	"slices"
	"testing"

	"github.com/northslopehq/nsapp/nscdk/nscdkutil"
)

func TestRegionIdents_FourCharacters(t *testing.T) {
	for region, ident := range nscdkutil.RegionIdents {
		if len(ident) != 4 {
			t.Errorf("RegionIdents[%q] = %q, want a 4-character identifier", region, ident)
		}
	}
}

func TestRegionIdentFor(t *testing.T) {
	tests := []struct {
		region string
		want   string
	}{
		{"us-east-1", "Use1"},
		{"us-west-2", "Usw2"},
		{"eu-west-1", "Euw1"},
		{"ap-southeast-2", "Ase2"},
	}
	for _, tt := range tests {
		if got := nscdkutil.RegionIdentFor(tt.region); got != tt.want {
			t.Errorf("RegionIdentFor(%q) = %q, want %q", tt.region, got, tt.want)
		}
	}
}

func TestRegionIdentFor_UnknownPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown region")
		}
	}()
	nscdkutil.RegionIdentFor("mars-north-1")
}

func TestRegionIdentLower(t *testing.T) {
	if got := nscdkutil.RegionIdentLower("us-west-2"); got != "usw2" {
		t.Errorf("RegionIdentLower(\"us-west-2\") = %q, want %q", got, "usw2")
	}
}

func TestIsKnownRegion(t *testing.T) {
	if !nscdkutil.IsKnownRegion("us-east-1") {
		t.Error("IsKnownRegion(\"us-east-1\") = false, want true")
	}
	if nscdkutil.IsKnownRegion("mars-north-1") {
		t.Error("IsKnownRegion(\"mars-north-1\") = true, want false")
	}
}

func TestAllKnownRegions_Sorted(t *testing.T) {
	regions := nscdkutil.AllKnownRegions()
	if len(regions) != len(nscdkutil.RegionIdents) {
		t.Fatalf("AllKnownRegions() returned %d regions, want %d", len(regions), len(nscdkutil.RegionIdents))
	}
	if !slices.IsSorted(regions) {
		t.Errorf("AllKnownRegions() = %v, want sorted", regions)
	}
}
