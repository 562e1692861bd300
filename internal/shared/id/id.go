// Package id generates the identifiers simdriver stamps on the artifacts and
// operations it creates.
//
// Identifiers are ULIDs, optionally behind a short type prefix:
//   - Lexicographic sortability: backup archives sort by creation time
//   - Prefixed types: kcb_* for keychain backups, op_* for traced operations
//   - Type safety: separate types prevent mixing them up
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// BackupID names a keychain backup archive
type BackupID string

// OperationID identifies a traced operation or span
type OperationID string

const (
	BackupPrefix    = "kcb"
	OperationPrefix = "op"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewBackupID generates a keychain backup identifier
func NewBackupID() BackupID {
	return BackupID(Default().GenerateWithPrefix(BackupPrefix))
}

// NewOperationID generates an operation identifier
func NewOperationID() OperationID {
	return OperationID(Default().GenerateWithPrefix(OperationPrefix))
}

func (id BackupID) String() string    { return string(id) }
func (id OperationID) String() string { return string(id) }
