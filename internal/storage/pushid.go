package storage

import (
	"crypto/rand"
	"sync"
	"time"
)

const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

var pushState struct {
	sync.Mutex
	lastTime int64
	lastRand [12]byte
}

// NewPushID returns a 20 character key whose lexicographic order follows
// creation time, matching the keys generated by Realtime Database pushes.
func NewPushID() string {
	pushState.Lock()
	defer pushState.Unlock()

	now := time.Now().UnixMilli()
	if now == pushState.lastTime {
		// Same millisecond: increment the random suffix to keep ordering.
		for i := 11; i >= 0; i-- {
			if pushState.lastRand[i] != 63 {
				pushState.lastRand[i]++
				break
			}
			pushState.lastRand[i] = 0
		}
	} else {
		var buf [12]byte
		_, _ = rand.Read(buf[:])
		for i := range buf {
			pushState.lastRand[i] = buf[i] % 64
		}
		pushState.lastTime = now
	}

	id := make([]byte, 20)
	t := now
	for i := 7; i >= 0; i-- {
		id[i] = pushChars[t%64]
		t /= 64
	}
	for i := 0; i < 12; i++ {
		id[8+i] = pushChars[pushState.lastRand[i]]
	}
	return string(id)
}
