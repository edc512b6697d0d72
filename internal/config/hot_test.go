package config

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHotStorePublishesNewSnapshot(t *testing.T) {
	first := &Config{JWT: JWTConfig{Secret: "first-secret"}}
	hot := NewHot(first)
	assert.Same(t, first, hot.Load())

	second := &Config{JWT: JWTConfig{Secret: "second-secret"}}
	hot.Store(second)
	assert.Same(t, second, hot.Load())
}

func TestHotLoadSeesConsistentSnapshotsDuringReloads(t *testing.T) {
	hot := NewHot(&Config{
		Server: ServerConfig{Mode: "gen-0"},
		JWT:    JWTConfig{Secret: "gen-0"},
	})

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				cfg := hot.Load()
				// Mode and Secret are published together; a reader must
				// never see them from two different generations.
				assert.Equal(t,
					strings.TrimPrefix(cfg.Server.Mode, "gen-"),
					strings.TrimPrefix(cfg.JWT.Secret, "gen-"))
			}
		}()
	}

	for i := 1; i <= 1000; i++ {
		gen := fmt.Sprintf("gen-%d", i)
		hot.Store(&Config{
			Server: ServerConfig{Mode: gen},
			JWT:    JWTConfig{Secret: gen},
		})
	}
	close(done)
	wg.Wait()
}
