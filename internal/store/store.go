package store

import (
	"github.com/marketplace-labs/zklogin-proxy/internal/config"
)

const (
	timeout = config.SessionMaxAge
)

// Store keeps pending login transactions between the authorization
// redirect and the callback. Keys are single-use: retrieval deletes.
type Store interface {
	StoreTransaction(tx *Transaction) (string, error)
	RetrieveTransaction(key string) (*Transaction, bool)
}
