package controller

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestConnLock(t *testing.T) {
	c := &controller{}

	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	assert.Same(t, c.connLock(conn1), c.connLock(conn1), "one write mutex per connection")
	assert.NotSame(t, c.connLock(conn1), c.connLock(conn2))

	held := c.connLock(conn1)
	c.releaseConnLock(conn1)
	assert.NotSame(t, held, c.connLock(conn1), "release drops the mutex with the connection")
}

func TestConnLockConcurrentAccess(t *testing.T) {
	c := &controller{}
	conn := &websocket.Conn{}

	locks := make([]*sync.Mutex, 16)

	var wg sync.WaitGroup
	for i := range locks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			locks[i] = c.connLock(conn)
		}(i)
	}
	wg.Wait()

	for _, mu := range locks[1:] {
		assert.Same(t, locks[0], mu)
	}
}
