package store

// Transaction is the server-side half of a login attempt: everything
// generated between issuing the authorization URL and receiving the
// callback hash. The browser only ever holds the opaque key returned
// by StoreTransaction, carried in the state cookie.
type Transaction struct {
	Provider            string
	EphemeralPrivateKey string
	EphemeralPublicKey  string
	Randomness          string
	Nonce               string
	MaxEpoch            uint64
	RedirectURL         string
	Host                string
}

const transactionMaxSize = 10000 // in bytes

func (tx *Transaction) size() uint {
	var size uint
	size += uint(len(tx.Provider))
	size += uint(len(tx.EphemeralPrivateKey))
	size += uint(len(tx.EphemeralPublicKey))
	size += uint(len(tx.Randomness))
	size += uint(len(tx.Nonce))
	size += uint(len(tx.RedirectURL))
	size += uint(len(tx.Host))
	return size
}
