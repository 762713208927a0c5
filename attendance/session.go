/*
session.go - Session segmentation of raw location pings

PURPOSE:
  Partitions a chronologically sorted ping stream into contiguous work
  sessions. Two consecutive pings belong to the same session when they are
  at most the gap threshold apart (inclusive); a larger gap closes the
  current session and opens a new one.

INVARIANTS:
  - Concatenating all sessions' timestamps in order reproduces the input
  - Sessions are non-empty; a lone ping is a zero-duration session
  - Segmentation runs on RAW timestamps. Rounding applies later, to the
    emitted detail boundaries only. Reversing that order changes which
    pings merge, so the ordering is load-bearing.

SEE ALSO:
  - rounding.go:  applied to session boundaries after segmentation
  - assembler.go: drives segmentation during report generation
*/
package attendance

import "time"

// DefaultSessionGap is the largest gap between consecutive pings that still
// counts as one continuous attendance.
const DefaultSessionGap = 60 * time.Minute

// =============================================================================
// SESSION - A maximal run of pings forming one attendance
// =============================================================================

// Session is an ordered, non-empty run of raw timestamps. It exists only
// during report assembly and is never persisted.
type Session struct {
	Timestamps []time.Time
}

func (s Session) Start() time.Time { return s.Timestamps[0] }
func (s Session) End() time.Time   { return s.Timestamps[len(s.Timestamps)-1] }

// =============================================================================
// SEGMENTER
// =============================================================================

// Segmenter splits sorted timestamp streams into sessions. The zero value
// uses DefaultSessionGap.
type Segmenter struct {
	Gap time.Duration
}

// Segment partitions timestamps into maximal sessions. The input must be
// non-decreasing; out-of-order input is rejected with
// ErrTimestampsOutOfOrder. An empty input yields zero sessions.
func (sg Segmenter) Segment(timestamps []time.Time) ([]Session, error) {
	gap := sg.Gap
	if gap <= 0 {
		gap = DefaultSessionGap
	}

	if len(timestamps) == 0 {
		return nil, nil
	}

	var sessions []Session
	current := []time.Time{timestamps[0]}
	for _, ts := range timestamps[1:] {
		prev := current[len(current)-1]
		if ts.Before(prev) {
			return nil, ErrTimestampsOutOfOrder
		}
		// Inclusive threshold: a gap of exactly `gap` stays in the session.
		if ts.Sub(prev) <= gap {
			current = append(current, ts)
			continue
		}
		sessions = append(sessions, Session{Timestamps: current})
		current = []time.Time{ts}
	}
	sessions = append(sessions, Session{Timestamps: current})
	return sessions, nil
}
