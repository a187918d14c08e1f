package query

import "context"

func erase[T any](fn func(context.Context) (T, error)) Fetcher {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// FetchAs is Fetch with a typed fetcher and result.
func FetchAs[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, erase(fn))
	t, _ := v.(T)
	return t, err
}

// RefetchAs is Refetch with a typed fetcher and result.
func RefetchAs[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Refetch(ctx, key, erase(fn))
	t, _ := v.(T)
	return t, err
}

// SubscribeAs is Subscribe with a typed fetcher.
func SubscribeAs[T any](c *Cache, key Key, fn func(context.Context) (T, error), opts Options) *Subscription {
	return c.Subscribe(key, erase(fn), opts)
}

// DataAs returns the state's data as a T.
func DataAs[T any](s State) (T, bool) {
	t, ok := s.Data.(T)
	return t, ok
}

// Mutate runs fn on the caller's context and, when it succeeds,
// invalidates every key prefix in keys.
func Mutate[T any](ctx context.Context, c *Cache, fn func(context.Context) (T, error), keys ...Key) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	for _, k := range keys {
		c.Invalidate(k)
	}
	return v, nil
}
