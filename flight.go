package securevault

import (
	"context"

	"github.com/aloks98/securevault/identity"
)

// flight is one shared Login or Signup call. The call runs on a context
// detached from its callers and is cancelled only when every caller has
// given up on it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// joinFlight coalesces identical concurrent calls. Each caller waits on
// its own ctx: a caller that gives up gets CANCELED without affecting the
// others.
func (s *Session) joinFlight(ctx context.Context, key string, call func(context.Context) (*identity.Result, error)) (*identity.User, error) {
	s.flightMu.Lock()
	f, ok := s.flights[key]
	if !ok {
		wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: wctx, cancel: cancel}
		s.flights[key] = f
	}
	f.waiters++
	ch := s.group.DoChan(key, func() (any, error) {
		defer s.land(key, f)
		return s.signIn(f.ctx, call)
	})
	s.flightMu.Unlock()

	select {
	case r := <-ch:
		s.flightMu.Lock()
		f.waiters--
		s.flightMu.Unlock()
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*identity.User).Clone(), nil

	case <-ctx.Done():
		s.flightMu.Lock()
		f.waiters--
		if f.waiters == 0 {
			f.cancel()
			s.forget(key, f)
		}
		s.flightMu.Unlock()
		return nil, wrapError(ctx.Err())
	}
}

// land releases f once its call has returned.
func (s *Session) land(key string, f *flight) {
	s.flightMu.Lock()
	s.forget(key, f)
	s.flightMu.Unlock()
	f.cancel()
}

// forget makes later calls for key start a new flight. flightMu must be
// held.
func (s *Session) forget(key string, f *flight) {
	if s.flights[key] == f {
		delete(s.flights, key)
		s.group.Forget(key)
	}
}
