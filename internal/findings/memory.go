package findings

import (
	"context"
	"sort"
	"sync"

	"pdp-recon/internal/model"
	"pdp-recon/internal/notes"
)

type memoryEntry struct {
	fragments      map[model.Category][]string
	pricingCorrect bool
}

// MemoryStore keeps findings in process. Used by tests and by single
// process runs that do not need durability.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int]*memoryEntry
	keys    *keyedMutex
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[int]*memoryEntry),
		keys:    newKeyedMutex(),
	}
}

// entry returns the product's entry, creating it on first use
func (s *MemoryStore) entry(productID int) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[productID]
	if !ok {
		e = &memoryEntry{fragments: make(map[model.Category][]string), pricingCorrect: true}
		s.entries[productID] = e
	}
	return e
}

func (s *MemoryStore) lookup(productID int) (*memoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[productID]
	return e, ok
}

func (s *MemoryStore) UpsertAppend(ctx context.Context, productID int, category model.Category, message string) error {
	if err := validate(productID, category); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.keys.Lock(productID)
	defer unlock()

	e := s.entry(productID)
	e.fragments[category], _ = notes.Merge(e.fragments[category], message)
	return nil
}

func (s *MemoryStore) SetPricingCorrect(ctx context.Context, productID int, correct bool) error {
	if err := validateID(productID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.keys.Lock(productID)
	defer unlock()

	s.entry(productID).pricingCorrect = correct
	return nil
}

func (s *MemoryStore) ReadAll(ctx context.Context) ([]model.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ids := make([]int, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Ints(ids)

	result := make([]model.Finding, 0, len(ids))
	for _, id := range ids {
		unlock := s.keys.Lock(id)
		e, ok := s.lookup(id)
		if !ok {
			// dropped by a concurrent Reset
			unlock()
			continue
		}
		f := model.NewFinding(id)
		f.PricingCorrect = e.pricingCorrect
		for _, c := range model.Categories {
			if frags := e.fragments[c]; len(frags) > 0 {
				f.SetFragments(c, frags)
			}
		}
		unlock()
		result = append(result, *f)
	}
	return result, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.entries = make(map[int]*memoryEntry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
