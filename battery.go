// battery.go - battery state-of-charge estimation

package main

import (
	"fmt"
	"math"
)

const (
	batterySigmoidK     = 12.0
	batteryDefaultMinMV = 3000
	batteryDefaultMaxMV = 4200
	batteryPersistPath  = "sys/battery"
)

// Battery tracks an estimated state of charge from a raw voltage reading.
// The min/max bounds auto-widen the first time a reading falls outside
// them, so a device's actual discharge curve is learned rather than
// hardcoded, and the learned bounds are persisted across sessions.
type Battery struct {
	ok         bool
	connected  bool
	full       bool
	percent    uint8
	minVoltage uint16
	maxVoltage uint16
}

// NewBattery returns a Battery with the default voltage bounds and a
// starting estimate of 50%, matching the pre-first-update state before
// any real reading has been taken.
func NewBattery() *Battery {
	return &Battery{
		percent:    50,
		minVoltage: batteryDefaultMinMV,
		maxVoltage: batteryDefaultMaxMV,
	}
}

// LoadBattery restores a Battery's persisted bounds from fs, falling back
// to NewBattery's defaults if nothing has been persisted yet.
func LoadBattery(fs FS) *Battery {
	b := NewBattery()
	raw, err := fs.Load(batteryPersistPath)
	if err != nil || len(raw) < 4 {
		return b
	}
	b.minVoltage = uint16(raw[0]) | uint16(raw[1])<<8
	b.maxVoltage = uint16(raw[2]) | uint16(raw[3])<<8
	return b
}

func (b *Battery) persist(fs FS) {
	if fs == nil {
		return
	}
	raw := []byte{
		byte(b.minVoltage), byte(b.minVoltage >> 8),
		byte(b.maxVoltage), byte(b.maxVoltage >> 8),
	}
	_ = fs.Dump(batteryPersistPath, raw)
}

// Update feeds a raw millivolt reading into the estimator. connected/full
// report the charger state as observed by the caller (the voltage alone
// can't distinguish "charging to full" from "fully charged and idle").
// Bounds that don't yet bracket voltageMV widen to include it and are
// persisted via fs immediately.
func (b *Battery) Update(fs FS, voltageMV uint16, connected, full bool) {
	b.ok = true
	b.connected = connected
	b.full = full

	widened := false
	if voltageMV < b.minVoltage {
		b.minVoltage = voltageMV
		widened = true
	}
	if voltageMV > b.maxVoltage {
		b.maxVoltage = voltageMV
		widened = true
	}
	if widened {
		b.persist(fs)
	}

	vNorm := float64(voltageMV-b.minVoltage) / float64(b.maxVoltage-b.minVoltage)
	vNorm = clampFloat(vNorm, 0, 1)
	soc := 100.0 / (1.0 + math.Exp(-batterySigmoidK*(vNorm-0.5)))
	b.percent = uint8(clampFloat(math.Round(soc), 0, 100))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Percent returns the last estimated state of charge, 0-100.
func (b *Battery) Percent() uint8 { return b.percent }

// Connected reports whether a charger was connected at the last Update.
func (b *Battery) Connected() bool { return b.connected }

// Full reports whether the battery was reported full at the last Update.
func (b *Battery) Full() bool { return b.full }

// Ready reports whether at least one Update has been applied.
func (b *Battery) Ready() bool { return b.ok }

func (b *Battery) String() string {
	return fmt.Sprintf("battery %d%% (connected=%v full=%v bounds=%d-%dmV)",
		b.percent, b.connected, b.full, b.minVoltage, b.maxVoltage)
}
