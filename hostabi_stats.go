// hostabi_stats.go - progress/score host ABI calls
//
// Grounded on host/stats.rs. Progress is encoded as done<<16|goal in a
// single u32 return value so the guest can read both halves from one
// call; add_progress clamps to the goal and flags newly-completed
// badges.

package main

// Badge is one achievement's progress toward its goal.
type Badge struct {
	Done uint16
	Goal uint16
	New  bool // true once Done first reaches Goal, until acknowledged
}

// AppStats holds an app's badge progress and, eventually, its
// leaderboard scores. set_score/get_top_score have no specified
// persistence format (Non-goal) and are stubbed exactly as the original
// leaves them unimplemented.
type AppStats struct {
	Badges []Badge
	Scores []int16
	dirty  bool
}

// StatsABI implements the stats host ABI against one app's AppStats.
type StatsABI struct {
	stats *AppStats
	log   Log
}

// NewStatsABI wires a StatsABI to stats, which may be nil for an app that
// declares no badges (every call then reports HostError-style zero).
func NewStatsABI(stats *AppStats, log Log) *StatsABI {
	return &StatsABI{stats: stats, log: log}
}

// GetProgress returns done<<16|goal for 1-based badge id, or 0 and a
// logged error if there are no stats, no badges, or id is out of range.
func (s *StatsABI) GetProgress(id uint32) uint32 {
	if s.stats == nil {
		s.logErr("no app stats")
		return 0
	}
	idx := int(id) - 1
	if idx < 0 || idx >= len(s.stats.Badges) {
		if len(s.stats.Badges) == 0 {
			s.logErr("app declares no badges")
		} else {
			s.logErr("no such badge")
		}
		return 0
	}
	b := s.stats.Badges[idx]
	return uint32(b.Done)<<16 | uint32(b.Goal)
}

// AddProgress adds val (which must fit in an int16) to badge id's
// progress, clamped to its goal, and returns the post-add done<<16|goal.
// Flags the badge New once it reaches its goal.
func (s *StatsABI) AddProgress(id uint32, val int32) uint32 {
	if s.stats == nil {
		s.logErr("no app stats")
		return 0
	}
	idx := int(id) - 1
	if idx < 0 || idx >= len(s.stats.Badges) {
		if len(s.stats.Badges) == 0 {
			s.logErr("app declares no badges")
		} else {
			s.logErr("no such badge")
		}
		return 0
	}
	if val < -32768 || val > 32767 {
		s.logErr("the value is too big")
		return 0
	}
	b := &s.stats.Badges[idx]
	if b.Done < b.Goal {
		next := int32(b.Done) + val
		if next < 0 {
			next = 0
		}
		b.Done = uint16(next)
		if b.Done > b.Goal {
			b.Done = b.Goal
		}
		s.stats.dirty = true
		if b.Done >= b.Goal {
			b.New = true
		}
	}
	return uint32(b.Done)<<16 | uint32(b.Goal)
}

// SetScore and GetTopScore have no specified persistence format; both are
// deliberate stubs matching the original's todo!() bodies.
func (s *StatsABI) SetScore(peerID, boardID, newScore uint32) uint32 {
	s.logErr("set_score is not implemented")
	return 0
}

func (s *StatsABI) GetTopScore(peerID, boardID uint32) uint32 {
	s.logErr("get_top_score is not implemented")
	return 0
}

func (s *StatsABI) logErr(msg string) {
	if s.log != nil {
		s.log.Warn("stats." + msg)
	}
}

// StatsSnapshot is the serializable view of AppStats a caller-supplied
// codec can persist; the spec leaves the on-disk stats format itself out
// of scope, so this package only exposes the snapshot/restore seam.
type StatsSnapshot struct {
	Badges []Badge
	Scores []int16
}

// Snapshot captures the current stats state for persistence.
func (s *AppStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Badges: append([]Badge(nil), s.Badges...),
		Scores: append([]int16(nil), s.Scores...),
	}
}

// Restore replaces the current stats state from a previously-captured
// snapshot.
func (s *AppStats) Restore(snap StatsSnapshot) {
	s.Badges = append([]Badge(nil), snap.Badges...)
	s.Scores = append([]int16(nil), snap.Scores...)
	s.dirty = false
}

// LoadStatsSnapshot loads app's stats file from fs and summarizes it into
// a StatsSnapshot. If nothing has been recorded yet it returns an empty
// snapshot together with the load error (the case every Connector intro
// falls back on for a first-time launch).
func LoadStatsSnapshot(fs FS, app FullID) (StatsSnapshot, error) {
	path := "data/" + app.Author + "/" + app.App + "/stats"
	raw, err := fs.Load(path)
	if err != nil || len(raw) == 0 {
		return StatsSnapshot{}, err
	}
	return decodeStatsSnapshot(raw)
}

// decodeStatsSnapshot parses the flat little-endian stats file layout: a
// u16 badge count, that many {done,goal u16} pairs, a u16 score count, then
// that many i16 scores.
func decodeStatsSnapshot(raw []byte) (StatsSnapshot, error) {
	var snap StatsSnapshot
	pos := 0
	readU16 := func() (uint16, bool) {
		if pos+2 > len(raw) {
			return 0, false
		}
		v := uint16(raw[pos]) | uint16(raw[pos+1])<<8
		pos += 2
		return v, true
	}
	n, ok := readU16()
	if !ok {
		return snap, &HostError{Operation: "stats", Details: "truncated badge count"}
	}
	for i := uint16(0); i < n; i++ {
		done, ok1 := readU16()
		goal, ok2 := readU16()
		if !ok1 || !ok2 {
			return snap, &HostError{Operation: "stats", Details: "truncated badge entry"}
		}
		snap.Badges = append(snap.Badges, Badge{Done: done, Goal: goal})
	}
	n, ok = readU16()
	if !ok {
		return snap, &HostError{Operation: "stats", Details: "truncated score count"}
	}
	for i := uint16(0); i < n; i++ {
		v, ok := readU16()
		if !ok {
			return snap, &HostError{Operation: "stats", Details: "truncated score entry"}
		}
		snap.Scores = append(snap.Scores, int16(v))
	}
	return snap, nil
}
