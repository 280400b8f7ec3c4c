package policy

import "context"

// BanLookup is satisfied by internal/banstore.Store. Keeping the interface
// here (rather than importing banstore directly) lets Chain be built and
// tested without pulling in ban persistence.
type BanLookup interface {
	Lookup(ip, uuid, username string) (reason string, banned bool)
}

// BanFilter denies a request if any of its IP, UUID, or username matches an
// unexpired ban entry.
type BanFilter struct {
	Store BanLookup
}

func (f BanFilter) Name() string { return "ban" }

func (f BanFilter) Evaluate(_ context.Context, req Request) (Verdict, error) {
	if f.Store == nil {
		return Pass, nil
	}
	if reason, banned := f.Store.Lookup(req.RemoteIP, req.UUID, req.Username); banned {
		return Deny(reason), nil
	}
	return Pass, nil
}
