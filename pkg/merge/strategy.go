package merge

import (
	"fmt"

	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
)

// strategyFactory names a merge strategy and builds the Merger that
// implements it. Keeping construction behind a factory, rather than a
// struct field per strategy, is what lets Manager grow new strategies
// without widening its own constructor.
type strategyFactory struct {
	name      string
	newMerger func(repo *sourcerepo.SourceRepository) Merger
}

var strategyRegistry = []strategyFactory{
	{name: "fast-forward", newMerger: func(repo *sourcerepo.SourceRepository) Merger { return NewFastForwardMerger(repo) }},
	{name: "recursive", newMerger: func(repo *sourcerepo.SourceRepository) Merger { return NewRecursiveMerger(repo) }},
	{name: "three-way", newMerger: func(repo *sourcerepo.SourceRepository) Merger { return NewThreeWayMerger(repo) }},
	{name: "octopus", newMerger: func(repo *sourcerepo.SourceRepository) Merger { return NewOctopusMerger(repo) }},
	{name: "squash", newMerger: func(repo *sourcerepo.SourceRepository) Merger { return NewSquashMerger(repo) }},
}

// mergerByName builds the named strategy's Merger, or an error if the
// name isn't registered.
func mergerByName(repo *sourcerepo.SourceRepository, name string) (Merger, error) {
	for _, f := range strategyRegistry {
		if f.name == name {
			return f.newMerger(repo), nil
		}
	}
	return nil, fmt.Errorf("unknown merge strategy %q", name)
}
