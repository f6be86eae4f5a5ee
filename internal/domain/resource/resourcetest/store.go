// Package resourcetest provides an in-memory resource.Store that
// records every call, for tests of the domain services.
package resourcetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"eventky/internal/domain/address"
	"eventky/internal/infrastructure/runtime"
)

type Call struct {
	Method string
	Path   string
	Data   []byte
}

type Store struct {
	Owner string
	// FailPut makes Put report failure for paths with this prefix.
	FailPut string
	// ListErr is returned by every List call when set.
	ListErr error

	mu      sync.Mutex
	entries map[string][]byte
	calls   []Call
}

func NewStore(owner string) *Store {
	return &Store{Owner: owner, entries: map[string][]byte{}}
}

func (s *Store) OwnerID() string { return s.Owner }
func (s *Store) Scheme() string  { return address.DefaultScheme }

// Seed stores data as if ownerID had written it at path.
func (s *Store) Seed(ownerID, path string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ownerID+path] = data
	return address.Compose(address.DefaultScheme, ownerID, path)
}

func (s *Store) Get(_ context.Context, addr string) ([]byte, error) {
	key, err := s.key(addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "Get", Path: key})
	return s.entries[key], nil
}

func (s *Store) Put(_ context.Context, path string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "Put", Path: path, Data: data})
	if s.Owner == "" || (s.FailPut != "" && strings.HasPrefix(path, s.FailPut)) {
		return false
	}
	s.entries[s.Owner+path] = data
	return true
}

func (s *Store) Delete(_ context.Context, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "Delete", Path: path})
	if _, ok := s.entries[s.Owner+path]; !ok || s.Owner == "" {
		return false
	}
	delete(s.entries, s.Owner+path)
	return true
}

func (s *Store) List(_ context.Context, target string, _ runtime.ListOptions) ([]string, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	key, err := s.key(target)
	if err != nil {
		return []string{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "List", Path: key})
	out := []string{}
	for k := range s.entries {
		if strings.HasPrefix(k, key) {
			out = append(out, address.DefaultScheme+"://"+k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Calls returns the recorded calls of method, or all calls when method
// is empty.
func (s *Store) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Entry returns what is stored for ownerID at path.
func (s *Store) Entry(ownerID, path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[ownerID+path]
	return data, ok
}

func (s *Store) key(addr string) (string, error) {
	if u, err := address.Parse(addr); err == nil {
		return u.OwnerID + u.Path, nil
	}
	owner, path, err := address.ParsePublic(addr, address.DefaultScheme)
	if err != nil {
		return "", err
	}
	return owner + path, nil
}
