// internal/desk/queue.go
//
// 有界環狀佇列：一把互斥鎖加兩個條件變數（notFull / notEmpty）。
//   - 佇列滿時 Enqueue 阻塞（不忙等），這是伺服器唯一的准入控制。
//   - 佇列空時 Dequeue 阻塞；關閉旗標設定後改為立即回傳「沒有工作」。
// 旗標在等待條件中於持鎖狀態下檢查，Wake 亦在持鎖時廣播，因此不會漏接喚醒。

package desk

import (
	"sync"
	"sync/atomic"
)

// Queue 為單一 desk 的有界 FIFO。
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buf      []Entry
	head     int
	count    int
	size     atomic.Int32 // count 的無鎖鏡像，供 dispatcher 讀取
	stop     *Flag
}

// NewQueue 建立容量為 capacity 的佇列；stop 為共用的關閉旗標。
func NewQueue(capacity int, stop *Flag) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{buf: make([]Entry, capacity), stop: stop}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Enqueue 把 e 放入佇列尾端；佇列滿時阻塞直到有空位或關閉開始。
// 關閉開始後回傳 ErrShuttingDown，呼叫端負責關閉該 session。
func (q *Queue) Enqueue(e Entry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == len(q.buf) && !q.stop.IsSet() {
		q.notFull.Wait()
	}
	if q.stop.IsSet() {
		return ErrShuttingDown
	}

	q.buf[(q.head+q.count)%len(q.buf)] = e
	q.count++
	q.size.Store(int32(q.count))
	q.notEmpty.Signal()
	return nil
}

// Dequeue 取出佇列前端的項目；佇列空時阻塞。
// 佇列空且關閉開始時回傳 ok=false。
func (q *Queue) Dequeue() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.stop.IsSet() {
		q.notEmpty.Wait()
	}
	if q.count == 0 {
		return Entry{}, false
	}
	return q.pop(), true
}

func (q *Queue) pop() Entry {
	e := q.buf[q.head]
	q.buf[q.head] = Entry{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.size.Store(int32(q.count))
	q.notFull.Signal()
	return e
}

// Wake 喚醒所有在此佇列上等待的生產者與消費者，讓它們重新檢查關閉旗標。
func (q *Queue) Wake() {
	q.mu.Lock()
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	q.mu.Unlock()
}

// Drain 依 FIFO 順序取出所有剩餘項目。
func (q *Queue) Drain() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, 0, q.count)
	for q.count > 0 {
		out = append(out, q.pop())
	}
	return out
}

// Len 回傳目前佔用數的快照，不取佇列鎖；只作為負載平衡的近似值。
func (q *Queue) Len() int { return int(q.size.Load()) }

// Cap 回傳佇列容量。
func (q *Queue) Cap() int { return len(q.buf) }
