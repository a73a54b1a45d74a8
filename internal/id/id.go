package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Entropy is seeded from crypto/rand; ulid.Monotonic keeps IDs issued
	// within the same millisecond strictly increasing, so two legs of one
	// batch never collide or reorder.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a fresh ULID string. Batch IDs and trade-history rows are keyed
// by these, so `ORDER BY trade_id` is also execution order.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only reachable if the entropy reader fails.
		panic(err)
	}
	return id.String()
}
