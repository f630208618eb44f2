// Package randpool hands out sampling seeds from pooled stream-cipher
// generators keyed from the system random source.
package randpool

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"runtime"
	"sync"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/sys/cpu"
)

// A generator is retired after producing this many bytes.
const rekeyAfter = 1 << 30

type stream struct {
	s    cipher.Stream
	used uint64
}

func (s *stream) fill(dst []byte) {
	clear(dst)
	s.s.XORKeyStream(dst, dst)
	s.used += uint64(len(dst))
}

func newChaCha20() cipher.Stream {
	var seed [chacha20.NonceSize + chacha20.KeySize]byte
	readSystem(seed[:])
	c, err := chacha20.NewUnauthenticatedCipher(seed[chacha20.NonceSize:], seed[:chacha20.NonceSize])
	if err != nil {
		panic(err) // key and nonce sizes are fixed
	}
	return c
}

func newAESCTR() cipher.Stream {
	var seed [aes.BlockSize + 32]byte
	readSystem(seed[:])
	b, err := aes.NewCipher(seed[aes.BlockSize:])
	if err != nil {
		panic(err)
	}
	return cipher.NewCTR(b, seed[:aes.BlockSize])
}

func readSystem(b []byte) {
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic("randpool: system random source failed: " + err.Error())
	}
}

// hasAES reports whether AES runs in hardware, in which case AES-CTR is
// faster than ChaCha20.
func hasAES() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAES || runtime.GOOS == "darwin"
	case "arm64":
		return cpu.ARM64.HasAES || runtime.GOOS == "darwin"
	}
	return false
}

var pool = sync.Pool{
	New: func() any {
		if hasAES() {
			return &stream{s: newAESCTR()}
		}
		return &stream{s: newChaCha20()}
	},
}

// Read fills dst with random bytes.
func Read(dst []byte) {
	s := pool.Get().(*stream)
	s.fill(dst)
	if s.used < rekeyAfter {
		pool.Put(s)
	}
}

// Seed returns a non-negative seed that fits in an int32, the widest seed
// every supported backend accepts.
func Seed() int {
	var b [4]byte
	Read(b[:])
	return int(binary.LittleEndian.Uint32(b[:]) & math.MaxInt32)
}
