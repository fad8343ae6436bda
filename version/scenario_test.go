package version_test

import (
	"io"
	"testing"
	"time"

	"github.com/pokgame/engine/netio"
	"github.com/pokgame/engine/version"
)

func TestRunDefaultScenarioHandshake(t *testing.T) {
	rw := version.Default(version.RunDefaultScenario)
	ch := netio.NewChannel(rw)

	if err := writeLine(ch, "POKGAME-GREETING"); err != nil {
		t.Fatalf("write greeting: %v", err)
	}
	greet, err := readLine(ch)
	if err != nil {
		t.Fatalf("read greeting echo: %v", err)
	}
	if greet != "POKGAME-GREETING" {
		t.Fatalf("greeting = %q, want POKGAME-GREETING", greet)
	}

	mode, err := readLine(ch)
	if err != nil {
		t.Fatalf("read mode: %v", err)
	}
	if mode != "BINARY" {
		t.Fatalf("mode = %q, want BINARY", mode)
	}

	label, err := readLine(ch)
	if err != nil {
		t.Fatalf("read label: %v", err)
	}
	if label != "default" {
		t.Fatalf("label = %q, want default", label)
	}

	bitmask, ok, err := ch.ReadU8()
	for !ok && err == nil {
		time.Sleep(time.Millisecond)
		bitmask, ok, err = ch.ReadU8()
	}
	if err != nil {
		t.Fatalf("read bitmask: %v", err)
	}
	if bitmask != 0 {
		t.Fatalf("bitmask = %d, want 0", bitmask)
	}
}

func writeLine(ch *netio.Channel, s string) error {
	if _, err := ch.Write([]byte(s + "\n")); err != nil {
		return err
	}
	return ch.Flush()
}

func readLine(ch *netio.Channel) (string, error) {
	for {
		s, ok, err := ch.Line(256)
		if err != nil {
			return "", err
		}
		if ok {
			return s, nil
		}
		if ch.EndOfComms() {
			return "", io.EOF
		}
		time.Sleep(time.Millisecond)
	}
}
