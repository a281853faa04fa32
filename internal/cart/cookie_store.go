package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// CookieStore is the anonymous-session backend. The cart lives entirely in
// the client's cookie as a JSON object of sku id -> quantity; the store is
// decoded from the request, mutated in memory, and re-encoded into a
// Set-Cookie by the handler. Size is implicitly bounded by header limits.
type CookieStore struct {
	entries map[int64]int64
	dirty   bool
}

// NewCookieStore decodes a cart cookie value. A missing or malformed
// cookie yields an empty cart rather than an error: the client owns the
// data and stale garbage is not worth failing a request over.
func NewCookieStore(cookieValue string) *CookieStore {

	store := &CookieStore{entries: make(map[int64]int64)}

	if cookieValue == "" {
		return store
	}

	var raw map[string]int64
	if err := json.Unmarshal([]byte(cookieValue), &raw); err != nil {
		return store
	}

	for field, quantity := range raw {
		skuID, err := strconv.ParseInt(field, 10, 64)
		if err != nil || quantity <= 0 {
			continue
		}

		store.entries[skuID] = quantity
	}

	return store
}

// Encode serializes the cart back into a cookie value.
func (s *CookieStore) Encode() (string, error) {

	raw := make(map[string]int64, len(s.entries))
	for skuID, quantity := range s.entries {
		raw[strconv.FormatInt(skuID, 10)] = quantity
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart cookie: %w", err)
	}

	return string(data), nil
}

// Dirty reports whether any mutation happened since decode, so handlers
// only emit a Set-Cookie when something changed.
func (s *CookieStore) Dirty() bool {
	return s.dirty
}

func (s *CookieStore) Get(_ context.Context, skuID int64) (int64, bool, error) {
	quantity, ok := s.entries[skuID]

	return quantity, ok, nil
}

func (s *CookieStore) Set(_ context.Context, skuID int64, quantity int64) error {
	s.entries[skuID] = quantity
	s.dirty = true

	return nil
}

func (s *CookieStore) Delete(_ context.Context, skuID int64) error {
	if _, ok := s.entries[skuID]; ok {
		delete(s.entries, skuID)
		s.dirty = true
	}

	return nil
}

func (s *CookieStore) Snapshot(_ context.Context) (map[int64]int64, error) {

	entries := make(map[int64]int64, len(s.entries))
	for skuID, quantity := range s.entries {
		entries[skuID] = quantity
	}

	return entries, nil
}

func (s *CookieStore) Clear(_ context.Context, skuIDs []int64) error {

	for _, skuID := range skuIDs {
		if _, ok := s.entries[skuID]; ok {
			delete(s.entries, skuID)
			s.dirty = true
		}
	}

	return nil
}

func (s *CookieStore) TotalCount(_ context.Context) (int64, error) {

	var total int64
	for _, quantity := range s.entries {
		total += quantity
	}

	return total, nil
}
