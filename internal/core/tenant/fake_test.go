package tenant

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeDirectory serves companies from maps. When gate is set every lookup
// signals entered and blocks until gate is closed or ctx is done.
type fakeDirectory struct {
	mu        sync.Mutex
	bySub     map[string]*CompanyInfo
	byDomain  map[string]*CompanyInfo
	subErr    error
	domainErr error

	gate    chan struct{}
	entered chan struct{}
	once    sync.Once

	calls    atomic.Int32
	lookedUp []string
}

func (f *fakeDirectory) BySubdomain(ctx context.Context, sub string) (*CompanyInfo, error) {
	return f.find(ctx, "sub:"+sub, f.bySub[sub], f.subErr)
}

func (f *fakeDirectory) ByDomain(ctx context.Context, domain string) (*CompanyInfo, error) {
	return f.find(ctx, "domain:"+domain, f.byDomain[domain], f.domainErr)
}

func (f *fakeDirectory) find(ctx context.Context, call string, c *CompanyInfo, err error) (*CompanyInfo, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lookedUp = append(f.lookedUp, call)
	f.mu.Unlock()

	if f.gate != nil {
		f.once.Do(func() { close(f.entered) })
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeDirectory) calledWith() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookedUp...)
}

func gated(f *fakeDirectory) *fakeDirectory {
	f.gate = make(chan struct{})
	f.entered = make(chan struct{})
	return f
}
