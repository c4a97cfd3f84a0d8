package model

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in   string
		want ClockTime
	}{
		{"00:00:00", ClockTime{}},
		{"10:30:00", ClockTime{Hour: 10, Minute: 30}},
		{"23:59:59", ClockTime{Hour: 23, Minute: 59, Second: 59}},
		{"07:15", ClockTime{Hour: 7, Minute: 15}},
	}
	for _, c := range cases {
		got, err := ParseClockTime(c.in)
		if err != nil {
			t.Fatalf("ParseClockTime(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseClockTime(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseClockTimeRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "24:00:00", "12:60:00", "12:00:60", "noon", "-1:00:00"} {
		if _, err := ParseClockTime(in); err == nil {
			t.Fatalf("ParseClockTime(%q) accepted invalid input", in)
		}
	}
}

func TestClockTimeOn(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Fatal(err)
	}
	c := ClockTime{Hour: 10, Minute: 30}
	got := c.On(2026, time.March, 5, loc)
	want := time.Date(2026, time.March, 5, 10, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("On() = %s, want %s", got, want)
	}
}

func TestClockTimeBefore(t *testing.T) {
	a := ClockTime{Hour: 9}
	b := ClockTime{Hour: 9, Minute: 1}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %v before %v", a, b)
	}
	if a.Before(a) {
		t.Fatalf("a time must not be before itself")
	}
}
