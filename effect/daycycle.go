package effect

import "time"

// DayPeriod names the wall-clock bucket the day-cycle effect currently
// renders, matching the hour-range classification in effect.c.
type DayPeriod int

const (
	PeriodDay DayPeriod = iota
	PeriodMorning
	PeriodNight
)

// DaycycleClockCheck is how often the effect re-reads the wall clock,
// matching DAYCYCLE_CLOCK_CHECK.
const DaycycleClockCheck = 60 * time.Second

// Color is a translucent RGBA overlay tint.
type Color struct {
	R, G, B, A uint8
}

var (
	morningTint = Color{R: 0xff, G: 0xc8, B: 0x96, A: 0x50}
	nightTint   = Color{R: 0x19, G: 0x19, B: 0x46, A: 0x78}
)

// Daycycle paints a translucent overlay whose color depends on the wall
// clock hour, matching pok_daycycle_effect.
type Daycycle struct {
	Enabled bool

	sinceCheck time.Duration
	period     DayPeriod
	now        func() time.Time
}

// NewDaycycle returns a daycycle effect using the real wall clock.
func NewDaycycle() *Daycycle {
	return &Daycycle{now: time.Now}
}

// Period reports the currently classified period.
func (d *Daycycle) Period() DayPeriod {
	return d.period
}

// Overlay returns the tint to paint for the current period, and whether
// any tint should be painted at all (PeriodDay paints nothing).
func (d *Daycycle) Overlay() (Color, bool) {
	switch d.period {
	case PeriodMorning:
		return morningTint, true
	case PeriodNight:
		return nightTint, true
	}
	return Color{}, false
}

// Update re-reads the wall clock every DaycycleClockCheck and
// reclassifies the period, matching pok_daycycle_effect_update: hours
// [5,8) are morning, [8,19) are day, the rest are night.
func (d *Daycycle) Update(elapsed time.Duration) {
	if !d.Enabled {
		return
	}
	d.sinceCheck += elapsed
	if d.sinceCheck < DaycycleClockCheck {
		return
	}
	d.sinceCheck = 0
	hour := d.now().Hour()
	switch {
	case hour >= 5 && hour < 8:
		d.period = PeriodMorning
	case hour >= 8 && hour < 19:
		d.period = PeriodDay
	default:
		d.period = PeriodNight
	}
}
