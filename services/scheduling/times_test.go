package scheduling

import "testing"

func TestNormalizeClock(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "09:00", false},
		{"9:00", "09:00", false},
		{"23:59", "23:59", false},
		{"0:05", "00:05", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"12:5", "", true},
		{"12", "", true},
		{"", "", true},
		{"ab:cd", "", true},
	}
	for _, c := range cases {
		got, err := NormalizeClock(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("NormalizeClock(%q): expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeClock(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	if got, err := NormalizeDate("2026-03-09"); err != nil || got != "2026-03-09" {
		t.Errorf("NormalizeDate(2026-03-09) = %q, %v", got, err)
	}
	for _, bad := range []string{"2026-3-9", "09-03-2026", "2026-13-01", "not a date", ""} {
		if _, err := NormalizeDate(bad); err == nil {
			t.Errorf("NormalizeDate(%q): expected error", bad)
		}
	}
}

func TestWeekday(t *testing.T) {
	// 2026-03-09 is a Monday.
	if got := Weekday("2026-03-09"); got != "Monday" {
		t.Errorf("Weekday(2026-03-09) = %q, want Monday", got)
	}
	if got := Weekday("garbage"); got != "" {
		t.Errorf("Weekday(garbage) = %q, want empty", got)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                   string
		s1, e1, s2, e2         string
		want                   bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"partial front", "10:00", "11:00", "10:30", "11:30", true},
		{"partial back", "10:30", "11:30", "10:00", "11:00", true},
		{"back to back before", "09:00", "10:00", "10:00", "11:00", false},
		{"back to back after", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
		{"one minute overlap", "10:00", "10:01", "10:00", "11:00", true},
	}
	for _, c := range cases {
		if got := Overlaps(c.s1, c.e1, c.s2, c.e2); got != c.want {
			t.Errorf("%s: Overlaps(%s-%s, %s-%s) = %v, want %v",
				c.name, c.s1, c.e1, c.s2, c.e2, got, c.want)
		}
	}
}
