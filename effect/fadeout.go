// Package effect implements the screen-wide tick-driven overlays: the
// fadeout transition used by warps and scene changes, and the day-cycle
// color overlay, grounded on original_source/src/effect.c.
package effect

// FadeoutKind selects the fadeout's visual treatment, matching
// pok_fade_effect_type in effect.h.
type FadeoutKind int

const (
	FadeoutBlackScreen FadeoutKind = iota
	FadeoutToCenter
)

// FadeoutGranularity is the number of discrete steps a fadeout divides its
// configured duration into, matching FADEOUT_GRANULARITY.
const FadeoutGranularity = 16

// Fadeout is a screen-wide darken/brighten or iris transition driven by
// the shared game tick, matching pok_fadeout_effect.
type Fadeout struct {
	Kind    FadeoutKind
	Reverse bool
	Keep    bool // when complete and not reversed, keep the overlay painted

	Delay    uint32
	TicksAmt uint32
	ticks    uint32

	Alpha float64 // 0 (clear) .. 1 (opaque), used by FadeoutBlackScreen

	// Heights, four quadrant heights closing on (forward) or opening from
	// (reverse) screen center, used by FadeoutToCenter.
	Heights [4]float64
	delta   [2]float64

	active bool
	done   bool
}

// NewFadeout returns an inactive fadeout.
func NewFadeout() *Fadeout {
	return &Fadeout{}
}

// SetUpdate programs a fadeout with TicksAmt = time/FadeoutGranularity
// (clamped so TicksAmt is never zero), matching
// pok_fadeout_effect_set_update. Each TicksAmt elapsed moves the fadeout
// 2/FadeoutGranularity of the way, so it completes after about time/2
// ticks.
func (f *Fadeout) SetUpdate(time uint32, kind FadeoutKind, reverse bool, keep bool, delay uint32) {
	f.Kind = kind
	f.Reverse = reverse
	f.Keep = keep
	f.Delay = delay
	f.ticks = 0
	f.TicksAmt = time / FadeoutGranularity
	if f.TicksAmt == 0 {
		f.TicksAmt = 1
	}
	if reverse {
		f.Alpha = 1
		f.Heights = [4]float64{0, 0, 0, 0}
	} else {
		f.Alpha = 0
		f.Heights = [4]float64{1, 1, 1, 1}
	}
	f.active = true
	f.done = false
}

// Active reports whether a fadeout is currently running or holding its
// completed (kept) state.
func (f *Fadeout) Active() bool {
	return f.active
}

// Done reports whether the fadeout has finished its transition (it may
// still be Active afterward if Keep is set).
func (f *Fadeout) Done() bool {
	return f.done
}

// Update advances the fadeout by elapsedTicks, matching
// pok_fadeout_effect_update: when reverse, the delay counts down before
// any visual change begins; then each elapsed granularity unit either
// steps Alpha toward its target by 2/FADEOUT_GRANULARITY, or closes/opens
// the four quadrant heights toward/away from center.
func (f *Fadeout) Update(elapsedTicks uint32) bool {
	if !f.active || f.done {
		return false
	}
	if f.Reverse && f.Delay > 0 {
		if elapsedTicks >= f.Delay {
			f.Delay = 0
		} else {
			f.Delay -= elapsedTicks
			return false
		}
	}
	f.ticks += elapsedTicks
	if f.ticks < f.TicksAmt {
		return false
	}
	times := f.ticks / f.TicksAmt
	f.ticks %= f.TicksAmt
	step := (2.0 / float64(FadeoutGranularity)) * float64(times)

	switch f.Kind {
	case FadeoutBlackScreen:
		if f.Reverse {
			f.Alpha -= step
			if f.Alpha <= 0 {
				f.Alpha = 0
				f.finish()
			}
		} else {
			f.Alpha += step
			if f.Alpha >= 1 {
				f.Alpha = 1
				f.finish()
			}
		}
	case FadeoutToCenter:
		for i := range f.Heights {
			if f.Reverse {
				f.Heights[i] += step
				if f.Heights[i] >= 1 {
					f.Heights[i] = 1
				}
			} else {
				f.Heights[i] -= step
				if f.Heights[i] <= 0 {
					f.Heights[i] = 0
				}
			}
		}
		complete := true
		for _, h := range f.Heights {
			target := 0.0
			if f.Reverse {
				target = 1.0
			}
			if h != target {
				complete = false
				break
			}
		}
		if complete {
			f.finish()
		}
	}
	return true
}

func (f *Fadeout) finish() {
	f.done = true
	if !f.Reverse && f.Keep {
		f.active = true
	} else {
		f.active = false
	}
}
