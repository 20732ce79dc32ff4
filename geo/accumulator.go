package geo

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// CheckDistanceFunc is a strategy's approximate-distance test: given the
// raw index key and the geohash it was filed under, report whether the
// candidate clears the strategy's approximate bound and what that
// approximate distance was.
type CheckDistanceFunc func(raw []byte, hash GeoHash) (passed bool, approx float64)

// AddSpecificFunc is called once a candidate has passed dedup, the
// distance check, and the residual predicate. Strategies use it to fold
// the candidate into their own result structure (a k-nearest heap, a
// region's result list, ...).
type AddSpecificFunc func(raw []byte, ref DocRef, approx float64, isNewDoc bool) error

// Accumulator is the shared bookkeeping every search strategy drives a
// B-tree walk through: it deduplicates (key, doc) pairs already visited,
// evaluates the residual predicate at most once per document, and counts
// the work done for diagnostics.
type Accumulator struct {
	matcher ResidualMatcher
	seen    map[string]struct{}
	cache   *ristretto.Cache[string, bool]

	LookedAt      int
	ObjectsLoaded int
	Found         int
}

// NewAccumulator builds an accumulator backed by a small in-process
// residual-match cache, sized for the lifetime of a single query.
func NewAccumulator(matcher ResidualMatcher) (*Accumulator, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, bool]{
		NumCounters: 1e4,
		MaxCost:     1 << 16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("accumulator: failed to build residual-match cache: %w", err)
	}
	return &Accumulator{
		matcher: matcher,
		seen:    make(map[string]struct{}),
		cache:   cache,
	}, nil
}

// Close releases the accumulator's cache. Call when the query completes.
func (a *Accumulator) Close() { a.cache.Close() }

func dedupKey(raw []byte, ref DocRef) string {
	return string(raw) + "\x00" + ref.String()
}

// Visit runs one candidate (raw key, doc ref, decoded hash) through the
// dedup set, the strategy's distance check, and the residual predicate,
// calling add if and only if every stage accepts it.
func (a *Accumulator) Visit(raw []byte, ref DocRef, hash GeoHash, check CheckDistanceFunc, add AddSpecificFunc) error {
	a.LookedAt++

	dk := dedupKey(raw, ref)
	if _, ok := a.seen[dk]; ok {
		return nil
	}
	a.seen[dk] = struct{}{}

	passed, approx := check(raw, hash)
	if !passed {
		return nil
	}

	matched, isNewDoc, err := a.residualMatch(raw, ref)
	if err != nil {
		return err
	}
	if !matched {
		return nil
	}

	a.Found++
	return add(raw, ref, approx, isNewDoc)
}

// residualMatch evaluates the query's non-geo predicate against ref,
// caching the result so a document referenced by multiple locations (or
// revisited from a neighboring cell) is only matched once per query.
func (a *Accumulator) residualMatch(raw []byte, ref DocRef) (matched bool, isNewDoc bool, err error) {
	cacheKey := ref.String()
	if v, found := a.cache.Get(cacheKey); found {
		return v, false, nil
	}

	m, loadedObject, err := a.matcher.Match(raw, ref)
	if err != nil {
		return false, false, fmt.Errorf("accumulator: residual match failed: %w", err)
	}
	if loadedObject {
		a.ObjectsLoaded++
	}
	a.cache.Set(cacheKey, m, 1)
	a.cache.Wait()
	return m, true, nil
}
