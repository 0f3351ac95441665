package identify

import (
	"context"
	"errors"
	"testing"

	"vrcache/internal/vrcapi"
)

func candidate(id, name string) Candidate {
	return Candidate{ID: id, World: &vrcapi.World{ID: id, Name: name}}
}

func TestResolveSingleCandidate(t *testing.T) {
	result := Resolve(context.Background(), []Candidate{candidate("wrld_a", "Solo")}, nil, nil)
	if result.Method != ResolvedAuto {
		t.Fatalf("Method = %v, want ResolvedAuto", result.Method)
	}
	if result.Winner != 0 {
		t.Errorf("Winner = %d, want 0", result.Winner)
	}
}

func TestResolveNamePrefixProbe(t *testing.T) {
	candidates := []Candidate{
		candidate("wrld_a", "Midnight Rooftop"),
		candidate("wrld_b", "Treehouse in the Shade"),
	}
	payload := []byte("\x00\x01garbage...Treehous\xffmore garbage")

	result := Resolve(context.Background(), candidates, payload, nil)
	if result.Method != ResolvedAuto {
		t.Fatalf("Method = %v, want ResolvedAuto", result.Method)
	}
	if result.Winner != 1 {
		t.Errorf("Winner = %d, want 1", result.Winner)
	}
}

func TestResolveProbeUsesPrefixNotFullName(t *testing.T) {
	// Only the first eight characters of the name are probed for, so a
	// payload holding just that much still resolves.
	candidates := []Candidate{
		candidate("wrld_a", "Midnight Rooftop"),
		candidate("wrld_b", "Treehouse in the Shade"),
	}
	payload := []byte("Midnight")

	result := Resolve(context.Background(), candidates, payload, nil)
	if result.Method != ResolvedAuto || result.Winner != 0 {
		t.Fatalf("got method %v winner %d, want auto winner 0", result.Method, result.Winner)
	}
}

func TestResolveDeciderFallback(t *testing.T) {
	candidates := []Candidate{
		candidate("wrld_a", "Alpha"),
		candidate("wrld_b", "Beta"),
	}
	decider := DeciderFunc(func(_ context.Context, got []Candidate) (int, error) {
		if len(got) != 2 {
			t.Fatalf("decider received %d candidates, want 2", len(got))
		}
		return 1, nil
	})

	result := Resolve(context.Background(), candidates, []byte("no names here"), decider)
	if result.Method != ResolvedManual {
		t.Fatalf("Method = %v, want ResolvedManual", result.Method)
	}
	if result.Winner != 1 {
		t.Errorf("Winner = %d, want 1", result.Winner)
	}
}

func TestResolveDeciderDeclines(t *testing.T) {
	candidates := []Candidate{
		candidate("wrld_a", "Alpha"),
		candidate("wrld_b", "Beta"),
	}
	decider := DeciderFunc(func(context.Context, []Candidate) (int, error) {
		return -1, ErrDeclined
	})

	result := Resolve(context.Background(), candidates, nil, decider)
	if result.Method != Unresolved {
		t.Fatalf("Method = %v, want Unresolved", result.Method)
	}
	if result.Winner != -1 {
		t.Errorf("Winner = %d, want -1", result.Winner)
	}
}

func TestResolveDeciderOutOfRange(t *testing.T) {
	candidates := []Candidate{
		candidate("wrld_a", "Alpha"),
		candidate("wrld_b", "Beta"),
	}
	decider := DeciderFunc(func(context.Context, []Candidate) (int, error) {
		return 7, nil
	})

	result := Resolve(context.Background(), candidates, nil, decider)
	if result.Method != Unresolved {
		t.Errorf("out-of-range decider choice should leave the set unresolved, got %v", result.Method)
	}
}

func TestResolveNilDecider(t *testing.T) {
	candidates := []Candidate{
		candidate("wrld_a", "Alpha"),
		candidate("wrld_b", "Beta"),
	}
	result := Resolve(context.Background(), candidates, nil, nil)
	if result.Method != Unresolved || result.Winner != -1 {
		t.Errorf("got method %v winner %d, want unresolved -1", result.Method, result.Winner)
	}
}

func TestResolveSkipsCandidatesWithoutMetadata(t *testing.T) {
	candidates := []Candidate{
		{ID: "wrld_a"},
		candidate("wrld_b", "Known World"),
	}
	result := Resolve(context.Background(), candidates, []byte("...Known Wo..."), nil)
	if result.Method != ResolvedAuto || result.Winner != 1 {
		t.Errorf("got method %v winner %d, want auto winner 1", result.Method, result.Winner)
	}
}

func TestResolveDeciderError(t *testing.T) {
	candidates := []Candidate{
		candidate("wrld_a", "Alpha"),
		candidate("wrld_b", "Beta"),
	}
	decider := DeciderFunc(func(context.Context, []Candidate) (int, error) {
		return 0, errors.New("terminal gone")
	})

	result := Resolve(context.Background(), candidates, nil, decider)
	if result.Method != Unresolved {
		t.Errorf("decider error should leave the set unresolved, got %v", result.Method)
	}
}
