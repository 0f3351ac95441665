// Package identify narrows multi-candidate extractions down to one world.
//
// When a payload yields more than one distinct identifier, automatic
// resolution probes the payload bytes for a short prefix of each candidate's
// display name; cache payloads embed the world name near its identifier
// often enough for this to settle most collisions. Anything still ambiguous
// goes to an injected Decider (an interactive operator when one exists), and
// failing that the caller stores every candidate flagged for review. Losing
// a world silently is worse than an extra flagged entry a human can fix.
package identify
