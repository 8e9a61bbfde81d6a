package cache

// Scoped prefixes every key with the value of scope at call time, so one
// backing cache can hold entries for several users. Purge and Size act on
// the whole backing cache.
type Scoped[T any] struct {
	inner Cache[T]
	scope func() string
}

func NewScoped[T any](inner Cache[T], scope func() string) *Scoped[T] {
	return &Scoped[T]{inner: inner, scope: scope}
}

func (s *Scoped[T]) key(k string) string {
	return s.scope() + "|" + k
}

func (s *Scoped[T]) Get(key string) (T, bool) { return s.inner.Get(s.key(key)) }
func (s *Scoped[T]) Set(key string, data T)   { s.inner.Set(s.key(key), data) }
func (s *Scoped[T]) Delete(key string)        { s.inner.Delete(s.key(key)) }
func (s *Scoped[T]) Purge() int               { return s.inner.Purge() }
func (s *Scoped[T]) Size() int                { return s.inner.Size() }
