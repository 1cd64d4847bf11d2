package mentorRepo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// A recurring Monday slot and a date-specific slot on a Monday can
// share the same window. The dated filter must pin the date without
// constraining the weekday, and the weekday filter must exclude dated
// slots entirely, so the two can never both match one flip.
func TestSlotFiltersAreDisjoint(t *testing.T) {
	key := SlotKey{
		Day:       "Monday",
		Date:      "2026-03-09",
		StartTime: "10:00",
		EndTime:   "11:00",
	}

	dated := datedSlotFilter(key)
	if dated["date"] != "2026-03-09" {
		t.Errorf("dated filter date = %v, want 2026-03-09", dated["date"])
	}
	if _, ok := dated["day"]; ok {
		t.Error("dated filter must not constrain the weekday")
	}

	weekly := weekdaySlotFilter(key)
	if weekly["day"] != "Monday" {
		t.Errorf("weekday filter day = %v, want Monday", weekly["day"])
	}
	cond, ok := weekly["date"].(bson.M)
	if !ok {
		t.Fatalf("weekday filter date condition = %v, want an $in restriction", weekly["date"])
	}
	vals, ok := cond["$in"].(bson.A)
	if !ok {
		t.Fatalf("weekday filter date condition = %v, want $in", cond)
	}
	for _, v := range vals {
		if v == key.Date {
			t.Error("weekday filter may match the dated slot")
		}
		if v != "" && v != nil {
			t.Errorf("weekday filter admits dated value %v", v)
		}
	}
}
