package engine

// Queue is a FIFO work queue of URL strings. A URL already pending in the
// queue is refused on Push, so the same link discovered repeatedly cannot
// grow the queue without bound.
type Queue struct {
	items   []string
	pending map[string]struct{}
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		pending: make(map[string]struct{}),
	}
}

// Push appends a URL to the queue. Returns false if the URL is already
// pending.
func (q *Queue) Push(url string) bool {
	if _, ok := q.pending[url]; ok {
		return false
	}
	q.pending[url] = struct{}{}
	q.items = append(q.items, url)
	return true
}

// Pop removes and returns the front URL. Returns false if the queue is
// empty.
func (q *Queue) Pop() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	url := q.items[0]
	q.items = q.items[1:]
	delete(q.pending, url)
	return url, true
}

// Has returns true if the URL is currently pending in the queue.
func (q *Queue) Has(url string) bool {
	_, ok := q.pending[url]
	return ok
}

// Len returns the number of pending URLs.
func (q *Queue) Len() int {
	return len(q.items)
}
