package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd answers one zINSTREAM session per connection with reply.
func fakeClamd(t *testing.T, reply string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				r := bufio.NewReader(conn)
				cmd, err := r.ReadString(0)
				if err != nil {
					return
				}
				if cmd == "zPING\x00" {
					conn.Write([]byte("PONG\x00"))
					return
				}
				size := make([]byte, 4)
				for {
					if _, err := io.ReadFull(r, size); err != nil {
						return
					}
					n := binary.BigEndian.Uint32(size)
					if n == 0 {
						break
					}
					if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
						return
					}
				}
				conn.Write([]byte(reply + "\x00"))
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestClamAVScanner(t *testing.T) {
	ctx := context.Background()

	t.Run("Clean stream", func(t *testing.T) {
		scanner := NewClamAVScanner(fakeClamd(t, "stream: OK"), time.Second)
		assert.True(t, scanner.Available(ctx))

		result := scanner.Scan(ctx, "cv.pdf", []byte("%PDF-1.4 hello"))
		assert.NoError(t, result.Error)
		assert.False(t, result.Infected)
	})

	t.Run("Infected stream", func(t *testing.T) {
		scanner := NewClamAVScanner(fakeClamd(t, "stream: Eicar-Signature FOUND"), time.Second)

		result := scanner.Scan(ctx, "cv.pdf", []byte("X5O!P%@AP"))
		assert.NoError(t, result.Error)
		assert.True(t, result.Infected)
		assert.Equal(t, "Eicar-Signature", result.ThreatName)
	})

	t.Run("Scanner error fails closed", func(t *testing.T) {
		scanner := NewClamAVScanner(fakeClamd(t, "INSTREAM size limit exceeded. ERROR"), time.Second)

		result := scanner.Scan(ctx, "cv.pdf", []byte("data"))
		assert.Error(t, result.Error)
		assert.True(t, result.Infected)
	})

	t.Run("Unreachable daemon fails closed", func(t *testing.T) {
		scanner := NewClamAVScanner("127.0.0.1:1", 200*time.Millisecond)
		assert.False(t, scanner.Available(ctx))

		result := scanner.Scan(ctx, "cv.pdf", []byte("data"))
		assert.Error(t, result.Error)
		assert.True(t, result.Infected)
	})
}

func TestNewScanner(t *testing.T) {
	assert.Equal(t, "noop", NewScanner("").Name())
	assert.Equal(t, "clamav", NewScanner("localhost:3310").Name())
}
