package mock

import (
	"context"
	"sync"
	"testing"

	kdbkeychain "github.com/opst/vocabfab/pkg/domain/keychain/db"
)

// Keychain is an in-process keychain.
//
// By default, Lock serializes critical sections per name with sync.Mutex.
type Keychain struct {
	t    *testing.T
	mux  sync.Mutex
	keys map[string]*sync.Mutex

	Impl struct {
		Lock func(ctx context.Context, name string, criticalSection func(context.Context) error) error
	}
	Calls struct {
		Lock []string
	}
}

var _ kdbkeychain.KeychainInterface = &Keychain{}

func New(t *testing.T) *Keychain {
	return &Keychain{t: t, keys: map[string]*sync.Mutex{}}
}

func (k *Keychain) Lock(ctx context.Context, name string, criticalSection func(context.Context) error) error {
	k.t.Helper()

	k.mux.Lock()
	k.Calls.Lock = append(k.Calls.Lock, name)
	key, ok := k.keys[name]
	if !ok {
		key = &sync.Mutex{}
		k.keys[name] = key
	}
	k.mux.Unlock()

	if k.Impl.Lock != nil {
		return k.Impl.Lock(ctx, name, criticalSection)
	}

	key.Lock()
	defer key.Unlock()
	return criticalSection(ctx)
}
