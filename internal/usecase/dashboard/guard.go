package dashboard

import (
	"sync"
	"time"

	"peer-insights/internal/infra/metrics"
)

// Snapshot — принятое представление и время его расчёта.
type Snapshot[T any] struct {
	Value     T
	UpdatedAt time.Time
}

// Latest хранит последний принятый результат расчёта.
// Результат запроса, начатого раньше уже принятого, отбрасывается.
type Latest[T any] struct {
	view string

	mu        sync.Mutex
	issued    uint64
	committed uint64
	snap      Snapshot[T]
	ok        bool
}

// NewLatest создаёт хранилище для представления view.
func NewLatest[T any](view string) *Latest[T] {
	return &Latest[T]{view: view}
}

// Begin выдаёт токен нового расчёта.
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return l.issued
}

// Commit принимает результат, если он новее принятого. Возвращает false для устаревшего.
func (l *Latest[T]) Commit(token uint64, value T, at time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token <= l.committed {
		metrics.IncStale(l.view)
		return false
	}
	l.committed = token
	l.snap = Snapshot[T]{Value: value, UpdatedAt: at}
	l.ok = true
	return true
}

// Get возвращает последний принятый результат.
func (l *Latest[T]) Get() (Snapshot[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap, l.ok
}

// keyed держит отдельный Latest на каждый набор параметров представления.
type keyed[K comparable, T any] struct {
	view string

	mu    sync.Mutex
	items map[K]*Latest[T]
}

func newKeyed[K comparable, T any](view string) *keyed[K, T] {
	return &keyed[K, T]{view: view, items: make(map[K]*Latest[T])}
}

func (k *keyed[K, T]) get(key K) *Latest[T] {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.items[key]
	if !ok {
		l = NewLatest[T](k.view)
		k.items[key] = l
	}
	return l
}
