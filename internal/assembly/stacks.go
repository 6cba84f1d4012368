package assembly

import "fmt"

// StackSet groups slice keys by stack identifier. IDs preserves the order of
// first appearance; the empty identifier is itself a valid stack.
type StackSet struct {
	IDs    []string
	groups map[string][]int // stack id -> indices into the key slice
}

// partitionStacks builds the stack set for a key collection.
func partitionStacks(keys []SliceKey) StackSet {
	set := StackSet{groups: make(map[string][]int)}
	for i, key := range keys {
		if _, seen := set.groups[key.StackID]; !seen {
			set.IDs = append(set.IDs, key.StackID)
		}
		set.groups[key.StackID] = append(set.groups[key.StackID], i)
	}
	return set
}

// Select returns the key indices of the desired stack. An empty desired
// identifier selects the first stack encountered. A non-empty identifier
// that no frame declares is fatal.
func (s StackSet) Select(desired string) ([]int, error) {
	if len(s.IDs) == 0 {
		return nil, fmt.Errorf("no frames to assemble")
	}
	if desired == "" {
		return s.groups[s.IDs[0]], nil
	}
	members, ok := s.groups[desired]
	if !ok {
		return nil, fmt.Errorf("stack %q: %w", desired, ErrStackNotFound)
	}
	return members, nil
}
