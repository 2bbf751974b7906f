package queue

import (
	"sync"
)

// ConsumerQueue is an unbounded FIFO with a single blocking consumer.
type ConsumerQueue[T any] struct {
	lock    *sync.Cond
	data    []T
	stopped bool
}

func NewConsumerQueue[T any]() *ConsumerQueue[T] {
	return &ConsumerQueue[T]{
		lock: sync.NewCond(&sync.Mutex{}),
		data: []T{},
	}
}

func (cq *ConsumerQueue[T]) Add(item T) {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	if cq.stopped {
		return
	}

	cq.data = append(cq.data, item)
	cq.lock.Signal()
}

// WaitForItems blocks until items are available and takes all of them. Items
// added before Stop are still handed out; nil means the queue is stopped and empty.
func (cq *ConsumerQueue[T]) WaitForItems() (result []T) {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	for len(cq.data) == 0 && !cq.stopped {
		cq.lock.Wait()
	}

	if len(cq.data) == 0 {
		return nil
	}

	result = append([]T{}, cq.data...)
	cq.data = cq.data[:0]

	return result
}

func (cq *ConsumerQueue[T]) Stop() {
	cq.lock.L.Lock()
	cq.stopped = true
	cq.lock.Broadcast()
	cq.lock.L.Unlock()
}

// Relay hands every added item to consume from one goroutine, in order, so
// producers never wait on a slow consumer.
type Relay[T any] struct {
	queue   *ConsumerQueue[T]
	consume func(T)
	done    chan struct{}
	once    sync.Once
}

func NewRelay[T any](consume func(T)) *Relay[T] {
	r := &Relay[T]{
		queue:   NewConsumerQueue[T](),
		consume: consume,
		done:    make(chan struct{}),
	}

	go r.run()

	return r
}

func (r *Relay[T]) Add(item T) {
	r.queue.Add(item)
}

// Close stops accepting items and waits until the pending ones are consumed.
func (r *Relay[T]) Close() {
	r.once.Do(r.queue.Stop)
	<-r.done
}

func (r *Relay[T]) run() {
	defer close(r.done)

	for {
		items := r.queue.WaitForItems()
		if items == nil {
			return
		}

		for _, item := range items {
			r.consume(item)
		}
	}
}
