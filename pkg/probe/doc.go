// Package probe implements the Prime+Probe measurement core: a pinned
// buffer of candidate cache lines, a self-calibrating eviction oracle, a
// search that discovers minimal eviction sets, and a timeslotted reader
// that turns those sets into per-channel sample streams.
//
// Construction order matters. The Cache and a timer.Cycle are created
// first; the Evicter borrows both and calibrates its hit/miss threshold; a
// Builder then consumes the Cache's candidates to discover eviction sets.
// The resulting State is frozen and handed to a Reader, which assumes
// exclusive access and runs on one pinned OS thread.
//
// No errors, locks or exceptions traverse the measurement path. Failures
// there are in-band: a probe that cannot finish inside its timeslot yields
// the MissedTimeslot sentinel and the stream carries on.
package probe
