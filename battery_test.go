package main

import (
	"fmt"
	"testing"
)

// fakeBatteryFS is a minimal FS fake good enough to exercise persistence
// without pulling in the full headless device.
type fakeBatteryFS struct {
	files map[string][]byte
}

func newFakeBatteryFS() *fakeBatteryFS { return &fakeBatteryFS{files: map[string][]byte{}} }

func (f *fakeBatteryFS) Load(path string) ([]byte, error) {
	v, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return v, nil
}

func (f *fakeBatteryFS) Dump(path string, data []byte) error {
	f.files[path] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBatteryFS) Remove(path string) error {
	delete(f.files, path)
	return nil
}

func (f *fakeBatteryFS) Size(path string) (int64, error) {
	v, ok := f.files[path]
	if !ok {
		return 0, fmt.Errorf("not found: %s", path)
	}
	return int64(len(v)), nil
}

func TestNewBatteryStartsAtFiftyPercent(t *testing.T) {
	b := NewBattery()
	if b.Ready() {
		t.Fatalf("expected Ready() == false before first Update")
	}
	if b.Percent() != 50 {
		t.Fatalf("got %d%%, want 50%%", b.Percent())
	}
}

func TestUpdateMidpointVoltageGivesFiftyPercent(t *testing.T) {
	b := NewBattery()
	mid := uint16((batteryDefaultMinMV + batteryDefaultMaxMV) / 2)
	b.Update(nil, mid, true, false)
	if !b.Ready() {
		t.Fatalf("expected Ready() == true after Update")
	}
	if b.Percent() != 50 {
		t.Fatalf("got %d%% at midpoint voltage, want 50%%", b.Percent())
	}
}

func TestUpdateSaturatesAtExtremes(t *testing.T) {
	b := NewBattery()
	b.Update(nil, batteryDefaultMinMV, false, false)
	if b.Percent() > 5 {
		t.Fatalf("got %d%% at min voltage, want near 0%%", b.Percent())
	}
	b.Update(nil, batteryDefaultMaxMV, true, true)
	if b.Percent() < 95 {
		t.Fatalf("got %d%% at max voltage, want near 100%%", b.Percent())
	}
}

func TestUpdateWidensAndPersistsBounds(t *testing.T) {
	fs := newFakeBatteryFS()
	b := NewBattery()
	b.Update(fs, batteryDefaultMinMV-500, false, false)
	if b.minVoltage != batteryDefaultMinMV-500 {
		t.Fatalf("got min %d, want bound widened", b.minVoltage)
	}
	if _, err := fs.Load(batteryPersistPath); err != nil {
		t.Fatalf("expected widened bounds to be persisted: %v", err)
	}

	b2 := LoadBattery(fs)
	if b2.minVoltage != b.minVoltage || b2.maxVoltage != b.maxVoltage {
		t.Fatalf("LoadBattery did not restore persisted bounds: got %+v", b2)
	}
}

func TestLoadBatteryFallsBackToDefaultsWhenNothingPersisted(t *testing.T) {
	fs := newFakeBatteryFS()
	b := LoadBattery(fs)
	if b.minVoltage != batteryDefaultMinMV || b.maxVoltage != batteryDefaultMaxMV {
		t.Fatalf("got %+v, want defaults", b)
	}
}
