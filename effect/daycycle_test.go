package effect

import (
	"testing"
	"time"
)

func TestDaycycleClassifiesPeriod(t *testing.T) {
	cases := []struct {
		hour int
		want DayPeriod
	}{
		{hour: 6, want: PeriodMorning},
		{hour: 12, want: PeriodDay},
		{hour: 22, want: PeriodNight},
	}
	for _, c := range cases {
		d := NewDaycycle()
		d.Enabled = true
		fixed := time.Date(2024, 1, 1, c.hour, 0, 0, 0, time.UTC)
		d.now = func() time.Time { return fixed }

		d.Update(DaycycleClockCheck)

		if d.Period() != c.want {
			t.Fatalf("hour %d: Period() = %v, want %v", c.hour, d.Period(), c.want)
		}
	}
}

func TestDaycycleDisabledNeverUpdates(t *testing.T) {
	d := NewDaycycle()
	d.now = func() time.Time { return time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC) }
	d.Update(DaycycleClockCheck)
	if d.Period() != PeriodDay {
		t.Fatalf("Period() = %v, want the zero-value PeriodDay while disabled", d.Period())
	}
}

func TestDaycycleOverlayOnlyOutsideDay(t *testing.T) {
	d := NewDaycycle()
	if _, ok := d.Overlay(); ok {
		t.Fatal("Overlay should report no tint for the default PeriodDay")
	}
	d.period = PeriodNight
	if _, ok := d.Overlay(); !ok {
		t.Fatal("Overlay should report a tint for PeriodNight")
	}
}
