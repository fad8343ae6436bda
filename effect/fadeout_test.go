package effect

import "testing"

func TestFadeoutBlackScreenReachesOpaque(t *testing.T) {
	f := NewFadeout()
	f.SetUpdate(FadeoutGranularity*10, FadeoutBlackScreen, false, false, 0)

	var done bool
	for i := 0; i < FadeoutGranularity+2 && !done; i++ {
		f.Update(10)
		done = f.Done()
	}
	if !done {
		t.Fatal("fadeout never completed")
	}
	if f.Alpha != 1 {
		t.Fatalf("Alpha = %v, want 1", f.Alpha)
	}
	if f.Active() {
		t.Fatal("non-kept fadeout should go inactive once done")
	}
}

func TestFadeoutKeepStaysActiveWhenDone(t *testing.T) {
	f := NewFadeout()
	f.SetUpdate(FadeoutGranularity*10, FadeoutBlackScreen, false, true, 0)
	for i := 0; i < FadeoutGranularity+2 && !f.Done(); i++ {
		f.Update(10)
	}
	if !f.Active() {
		t.Fatal("Keep fadeout should remain Active after completing")
	}
}

func TestFadeoutReverseDelaysBeforeStarting(t *testing.T) {
	f := NewFadeout()
	f.SetUpdate(FadeoutGranularity*10, FadeoutBlackScreen, true, false, 50)
	if changed := f.Update(10); changed {
		t.Fatal("Update during the delay window should report no change")
	}
	if f.Alpha != 1 {
		t.Fatalf("Alpha during delay = %v, want 1 (reverse starts opaque)", f.Alpha)
	}
}

func TestFadeoutToCenterClosesAllQuadrants(t *testing.T) {
	f := NewFadeout()
	f.SetUpdate(FadeoutGranularity*10, FadeoutToCenter, false, false, 0)
	for i := 0; i < FadeoutGranularity+2 && !f.Done(); i++ {
		f.Update(10)
	}
	for i, h := range f.Heights {
		if h != 0 {
			t.Fatalf("Heights[%d] = %v, want 0 once closed", i, h)
		}
	}
}
