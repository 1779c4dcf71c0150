package mind

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// LocalProvider is the deterministic built-in collaborator: breadth-first
// path planning, keyword help matching, and template purpose guidance. It is
// the fallback of last resort and never fails.
type LocalProvider struct{}

// NewLocalProvider creates the deterministic local provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Name returns the name of this provider.
func (p *LocalProvider) Name() string {
	return ProviderLocal
}

// IsConfigured always returns true; the local provider needs no setup.
func (p *LocalProvider) IsConfigured() bool {
	return true
}

// PlanRoute returns the shortest connected path from source to target via
// breadth-first search. With no connected path it degrades to a source-only
// result rather than failing.
func (p *LocalProvider) PlanRoute(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	if req.SourceID == req.TargetID {
		return &PlanResult{
			Path:      []string{req.SourceID},
			Rationale: "source and target are the same cell",
		}, nil
	}

	path := shortestPath(req.Connectivity, req.SourceID, req.TargetID)
	if path == nil {
		return &PlanResult{
			Path:      []string{req.SourceID},
			Rationale: "no connected path to target",
		}, nil
	}

	return &PlanResult{
		Path:      path,
		Rationale: fmt.Sprintf("shortest path, %d hops", len(path)-1),
	}, nil
}

// InterpretPurpose returns template guidance derived from the purpose text.
func (p *LocalProvider) InterpretPurpose(ctx context.Context, purpose string) (string, error) {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return "seed a balanced mix of roles", nil
	}
	return "seed a balanced mix of roles oriented toward: " + purpose, nil
}

// InterpretHelp matches request tokens against neighbor expertise by
// case-insensitive substring, returning the matching expertise sorted and
// deduplicated.
func (p *LocalProvider) InterpretHelp(ctx context.Context, req HelpRequest) (*HelpResult, error) {
	tokens := helpTokens(req.Request)

	matched := make(map[string]bool)
	for _, expertise := range req.NeighborExpertise {
		lower := strings.ToLower(expertise)
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				matched[expertise] = true
				break
			}
		}
	}

	result := make([]string, 0, len(matched))
	for expertise := range matched {
		result = append(result, expertise)
	}
	sort.Strings(result)

	rationale := "no expertise matched the request"
	if len(result) > 0 {
		rationale = "matched request keywords against neighbor expertise"
	}

	return &HelpResult{
		RelevantExpertise: result,
		Rationale:         rationale,
	}, nil
}

// helpTokens extracts lowercase tokens of useful length from a request.
func helpTokens(request string) []string {
	fields := strings.FieldsFunc(strings.ToLower(request), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 4 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// shortestPath runs breadth-first search over the adjacency map. Returns nil
// when target is unreachable from source.
func shortestPath(graph map[string][]string, source, target string) []string {
	if _, ok := graph[source]; !ok {
		return nil
	}

	visited := map[string]bool{source: true}
	parent := make(map[string]string)
	queue := []string{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == target {
			var path []string
			for at := target; ; at = parent[at] {
				path = append([]string{at}, path...)
				if at == source {
					return path
				}
			}
		}

		for _, next := range graph[current] {
			if !visited[next] {
				visited[next] = true
				parent[next] = current
				queue = append(queue, next)
			}
		}
	}

	return nil
}
