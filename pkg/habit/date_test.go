package habit

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-31", "2024-01-31"},
		{"", ""},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.in)
		if err != nil {
			t.Fatalf("ParseDate(%q) failed: %v", tt.in, err)
		}
		if d.String() != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.in, d.String(), tt.want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"31/01/2024", "2024-13-01", "yesterday", "2024-01-311", "2024-01-31T00:00:00.000Z"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestAddDays_CrossesMonthAndYear(t *testing.T) {
	d := MustParseDate("2024-01-31")
	if got := d.AddDays(1).String(); got != "2024-02-01" {
		t.Errorf("got %s want 2024-02-01", got)
	}
	if got := MustParseDate("2023-12-31").AddDays(1).String(); got != "2024-01-01" {
		t.Errorf("got %s want 2024-01-01", got)
	}
	if got := MustParseDate("2024-03-01").AddDays(-1).String(); got != "2024-02-29" {
		t.Errorf("got %s want 2024-02-29", got)
	}
}

func TestAddDays_AcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	orig := time.Local
	time.Local = loc
	defer func() { time.Local = orig }()

	// 2024-03-10 is 23 hours long in New York.
	d := MustParseDate("2024-03-09")
	want := []string{"2024-03-09", "2024-03-10", "2024-03-11", "2024-03-12"}
	for i, w := range want {
		if got := d.AddDays(i).String(); got != w {
			t.Errorf("AddDays(%d) = %s, want %s", i, got, w)
		}
	}
}

func TestDateOf_UsesLocationOfTime(t *testing.T) {
	// 23:30 on the 31st at UTC-5 is already the 1st in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	ts := time.Date(2024, 1, 31, 23, 30, 0, 0, loc)
	if got := DateOf(ts).String(); got != "2024-01-31" {
		t.Errorf("got %s want 2024-01-31", got)
	}
}

func TestDate_Compare(t *testing.T) {
	a := MustParseDate("2024-01-31")
	b := MustParseDate("2024-02-01")
	if !a.Before(b) || b.Before(a) {
		t.Error("expected 2024-01-31 before 2024-02-01")
	}
	if a.Compare(MustParseDate("2024-01-31")) != 0 {
		t.Error("expected equal dates to compare 0")
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}
	out, err := json.Marshal(wrapper{D: MustParseDate("2024-02-01")})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"d":"2024-02-01"}` {
		t.Errorf("got %s", out)
	}

	out, _ = json.Marshal(wrapper{})
	if string(out) != `{"d":""}` {
		t.Errorf("zero date should marshal empty, got %s", out)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"d":null}`), &w); err != nil {
		t.Fatalf("unmarshal null failed: %v", err)
	}
	if !w.D.IsZero() {
		t.Errorf("null should decode to zero date, got %s", w.D)
	}
}

func TestUnmarshalText_TruncatesTimestamps(t *testing.T) {
	var h Habit
	if err := json.Unmarshal([]byte(`{"id":"1","targetDate":"2024-01-31T00:00:00.000Z"}`), &h); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if h.TargetDate.String() != "2024-01-31" {
		t.Errorf("got %q want 2024-01-31", h.TargetDate.String())
	}
}
