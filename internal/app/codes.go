package app

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	// CodeAlphabet holds the characters a join code is drawn from.
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultCodeLength gives 36^6 (about 2.2 billion) distinct codes.
	DefaultCodeLength = 6

	maxCodeAttempts = 8
)

// CodeGenerator returns a fresh candidate join code on each call.
type CodeGenerator func() string

// NewCodeGenerator draws fixed-length uppercase codes from CodeAlphabet.
// A nil rnd seeds one from the current time.
func NewCodeGenerator(length int, rnd *rand.Rand) CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		var b strings.Builder
		b.Grow(length)
		for i := 0; i < length; i++ {
			b.WriteByte(CodeAlphabet[rnd.Intn(len(CodeAlphabet))])
		}
		return b.String()
	}
}

// NormalizeCode makes user-typed codes comparable with generated ones.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
