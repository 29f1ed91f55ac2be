package proofverify

import "github.com/puzpuzpuz/xsync/v2"

// KeyStore caches relay verification-key handles per blueprint slug. It must
// be safe under concurrent use; redundant registrations converge to the same
// handle, so last-write-wins is fine.
type KeyStore interface {
	Get(slug string) (string, bool)
	Set(slug, vkHash string)
}

type inMemoryKeyStore struct {
	handles *xsync.MapOf[string, string]
}

func NewInMemoryKeyStore() *inMemoryKeyStore {
	return &inMemoryKeyStore{handles: xsync.NewMapOf[string]()}
}

func (s *inMemoryKeyStore) Get(slug string) (string, bool) {
	return s.handles.Load(slug)
}

func (s *inMemoryKeyStore) Set(slug, vkHash string) {
	s.handles.Store(slug, vkHash)
}
