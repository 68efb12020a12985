package store

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const (
	memoryStoreMaxSize = 60000 // maximum number of items to store in memory
)

type transactionKey string

type storedTransaction struct {
	tx        *Transaction
	expiresAt time.Time
}

type memoryStore struct {
	maxSize       int
	transactions  map[transactionKey]*storedTransaction
	evictionQueue []transactionKey
	mu            sync.Mutex

	generateKey func() ([32]byte, error)
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{
		maxSize:      memoryStoreMaxSize,
		transactions: make(map[transactionKey]*storedTransaction),
	}
}

func (m *memoryStore) StoreTransaction(tx *Transaction) (string, error) {
	if size := tx.size(); size > transactionMaxSize {
		return "", fmt.Errorf("transaction size exceeds maximum of %d bytes: %d", transactionMaxSize, size)
	}

	m.mu.Lock()
	defer func() { m.collectGarbage(); m.mu.Unlock() }()

	for {
		// The key doubles as the CSRF state carried in the state
		// cookie, so it must be unguessable.
		generateKey := generateSecureCode
		if m.generateKey != nil {
			generateKey = m.generateKey
		}
		keyBytes, err := generateKey()
		if err != nil {
			return "", fmt.Errorf("failed to generate key for transaction: %w", err)
		}
		key := base64.RawURLEncoding.EncodeToString(keyBytes[:])
		if _, ok := m.transactions[transactionKey(key)]; ok {
			continue
		}

		// Enforce maximum size.
		for len(m.transactions) == m.maxSize {
			oldest := m.evictionQueue[0]
			m.evictionQueue = m.evictionQueue[1:]
			delete(m.transactions, oldest)
		}

		// Store the transaction and return the key.
		m.transactions[transactionKey(key)] = &storedTransaction{
			tx:        tx,
			expiresAt: time.Now().Add(timeout),
		}
		m.evictionQueue = append(m.evictionQueue, transactionKey(key))
		return key, nil
	}
}

func (m *memoryStore) RetrieveTransaction(key string) (*Transaction, bool) {
	m.mu.Lock()
	s, ok := m.transactions[transactionKey(key)]
	delete(m.transactions, transactionKey(key))
	m.collectGarbage()
	m.mu.Unlock()

	if !ok || s.expiresAt.Before(time.Now()) {
		return nil, false
	}
	return s.tx, true
}

func (m *memoryStore) collectGarbage() {
	var evictionQueue []transactionKey
	for _, key := range m.evictionQueue {
		s, ok := m.transactions[key]
		if !ok {
			continue
		}
		if time.Now().Before(s.expiresAt) {
			evictionQueue = append(evictionQueue, key)
		} else {
			delete(m.transactions, key)
		}
	}
	m.evictionQueue = evictionQueue
}

// generateSecureCode generates a random 32-byte key. It can be used
// both as a transaction key and as a CSRF state.
func generateSecureCode() ([32]byte, error) {
	var b [32]byte
	_, err := rand.Read(b[:])
	return b, err
}
