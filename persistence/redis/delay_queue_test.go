package redis

import (
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/crmkit/automation/persistence"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

func newTestStorage(t *testing.T) *redisStorage {
	t.Helper()
	conn, err := net.DialTimeout("tcp", testRedisAddr, 200*time.Millisecond)
	if err != nil {
		t.Skipf("redis not reachable at %s", testRedisAddr)
	}
	conn.Close()
	return NewRedisStorage(Config{
		Addrs:     []string{testRedisAddr},
		Namespace: "automation_test_" + uuid.NewString(),
	})
}

func TestDelayQueuePopEmpty(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.DelayQueue().Pop("resume")
	require.Error(t, err)
	var empty persistence.EmptyQueueError
	require.ErrorAs(t, err, &empty)
	require.Equal(t, "resume", empty.QueueName)
}

func TestDelayQueueHoldsUntilDue(t *testing.T) {
	storage := newTestStorage(t)
	queue := storage.DelayQueue()

	require.NoError(t, queue.PushWithDelay("resume", 1*time.Hour, []byte("later")))
	_, err := queue.Pop("resume")
	var empty persistence.EmptyQueueError
	require.ErrorAs(t, err, &empty)
}

func TestDelayQueueDeliversDueMessages(t *testing.T) {
	storage := newTestStorage(t)
	queue := storage.DelayQueue()

	require.NoError(t, queue.PushWithDelay("resume", 50*time.Millisecond, []byte("due-soon")))
	require.NoError(t, queue.PushWithDelay("resume", 1*time.Hour, []byte("due-later")))

	require.Eventually(t, func() bool {
		messages, err := queue.Pop("resume")
		if err != nil {
			return false
		}
		return len(messages) == 1 && messages[0] == "due-soon"
	}, 2*time.Second, 50*time.Millisecond)

	// the popped message must not be delivered twice
	_, err := queue.Pop("resume")
	var empty persistence.EmptyQueueError
	require.ErrorAs(t, err, &empty)
}
