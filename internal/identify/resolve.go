package identify

import (
	"bytes"
	"context"
	"errors"

	"vrcache/internal/vrcapi"
)

// NamePrefixLength is how many characters of a candidate's name the
// automatic resolver probes the payload for.
const NamePrefixLength = 8

// Candidate pairs an extracted identifier with its fetched metadata.
type Candidate struct {
	ID    string
	World *vrcapi.World
}

// ErrDeclined is returned by a Decider when the operator refuses to choose.
var ErrDeclined = errors.New("operator declined to choose")

// Decider resolves a candidate set to one index when automatic resolution
// fails. Implementations present the candidate names to an operator.
type Decider interface {
	Choose(ctx context.Context, candidates []Candidate) (int, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, candidates []Candidate) (int, error)

func (f DeciderFunc) Choose(ctx context.Context, candidates []Candidate) (int, error) {
	return f(ctx, candidates)
}

// Method records how a resolution was reached.
type Method int

const (
	// Unresolved means neither probing nor the decider produced a winner;
	// the caller stores all candidates flagged ambiguous.
	Unresolved Method = iota
	// ResolvedAuto means the name-prefix probe found exactly one home.
	ResolvedAuto
	// ResolvedManual means the injected decider picked the winner.
	ResolvedManual
)

// Result reports the outcome of Resolve. Winner indexes into the candidate
// slice and is -1 when Unresolved.
type Result struct {
	Method Method
	Winner int
}

// Resolve narrows candidates to one winner. Automatic resolution runs first:
// the first candidate whose name prefix occurs verbatim in the payload wins.
// If no prefix matches and a decider is available, it chooses; a nil decider,
// a decline, or any decider error leaves the set unresolved. Resolve never
// returns an error by contract.
func Resolve(ctx context.Context, candidates []Candidate, payload []byte, decider Decider) Result {
	if len(candidates) == 1 {
		return Result{Method: ResolvedAuto, Winner: 0}
	}

	if idx := probeNamePrefixes(candidates, payload); idx >= 0 {
		return Result{Method: ResolvedAuto, Winner: idx}
	}

	if decider != nil {
		idx, err := decider.Choose(ctx, candidates)
		if err == nil && idx >= 0 && idx < len(candidates) {
			return Result{Method: ResolvedManual, Winner: idx}
		}
	}

	return Result{Method: Unresolved, Winner: -1}
}

// probeNamePrefixes returns the index of the first candidate whose name
// prefix occurs in the payload, or -1.
func probeNamePrefixes(candidates []Candidate, payload []byte) int {
	if len(payload) == 0 {
		return -1
	}
	for i, candidate := range candidates {
		if candidate.World == nil {
			continue
		}
		prefix := namePrefix(candidate.World.Name)
		if prefix == "" {
			continue
		}
		if bytes.Contains(payload, []byte(prefix)) {
			return i
		}
	}
	return -1
}

func namePrefix(name string) string {
	runes := []rune(name)
	if len(runes) > NamePrefixLength {
		runes = runes[:NamePrefixLength]
	}
	return string(runes)
}
