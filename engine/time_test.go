package engine_test

import (
	"testing"
	"time"

	"github.com/warp/attribution-engine/engine"
)

func TestDateKey_CanonicalStringForm(t *testing.T) {
	key := dk(2025, time.March, 5)
	if key.String() != "2025-03-05" {
		t.Fatalf("got %q", key.String())
	}

	parsed, err := engine.ParseDateKey("2025-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if parsed != key {
		t.Fatalf("round trip mismatch: %v != %v", parsed, key)
	}

	if _, err := engine.ParseDateKey("03/05/2025"); err == nil {
		t.Fatal("locale-formatted date must not parse")
	}
}

func TestDateKey_Ordering(t *testing.T) {
	a := dk(2025, time.January, 31)
	b := dk(2025, time.February, 1)
	if !a.Before(b) || b.Before(a) || a.Compare(a) != 0 {
		t.Fatal("calendar ordering broken")
	}
}

func TestDateKey_AddDaysCrossesMonthBoundary(t *testing.T) {
	if got := dk(2025, time.January, 31).AddDays(1); got != dk(2025, time.February, 1) {
		t.Fatalf("got %v", got)
	}
}

func TestDateKey_ISOWeekStartsMonday(t *testing.T) {
	// 2025-01-05 is a Sunday, 2025-01-06 the following Monday.
	sunday := dk(2025, time.January, 5)
	monday := dk(2025, time.January, 6)

	if sunday.Week() == monday.Week() {
		t.Fatal("Sunday and the following Monday must be in different ISO weeks")
	}
	if monday.Week() != (engine.WeekKey{Year: 2025, Week: 2}) {
		t.Fatalf("got %v", monday.Week())
	}
}

func TestDateKeyFromTime_UsesCanonicalZone(t *testing.T) {
	// GIVEN: The same instant viewed from two zones either side of midnight
	instant := time.Date(2025, time.June, 10, 1, 30, 0, 0, time.UTC)

	if got := engine.DateKeyFromTime(instant, time.UTC); got != dk(2025, time.June, 10) {
		t.Fatalf("utc: got %v", got)
	}
	west := time.FixedZone("UTC-4", -4*3600)
	if got := engine.DateKeyFromTime(instant, west); got != dk(2025, time.June, 9) {
		t.Fatalf("utc-4: got %v", got)
	}
}

func TestDateRange_Dates(t *testing.T) {
	r := engine.DateRange{Start: dk(2025, time.January, 30), End: dk(2025, time.February, 2)}
	days := r.Dates()
	if len(days) != 4 {
		t.Fatalf("got %d days", len(days))
	}
	if days[0] != r.Start || days[3] != r.End {
		t.Fatalf("bad endpoints: %v", days)
	}

	inverted := engine.DateRange{Start: r.End, End: r.Start}
	if inverted.Dates() != nil {
		t.Fatal("inverted range must enumerate nothing")
	}
}
