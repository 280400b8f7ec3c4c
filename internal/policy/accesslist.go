package policy

import "context"

// AccessList implements the shared whitelist/blacklist precedence rule used
// by the IP, name, and UUID filters: blacklist match denies; otherwise a
// non-empty whitelist with no match denies; otherwise pass.
type AccessList struct {
	Enabled   bool
	Whitelist map[string]struct{}
	Blacklist map[string]struct{}
}

// NewAccessList builds an AccessList from plain string slices.
func NewAccessList(enabled bool, whitelist, blacklist []string) AccessList {
	return AccessList{
		Enabled:   enabled,
		Whitelist: toSet(whitelist),
		Blacklist: toSet(blacklist),
	}
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

// evaluate applies the fixed precedence: blacklist > whitelist > pass.
func (al AccessList) evaluate(value, denyReason string) Verdict {
	if !al.Enabled {
		return Pass
	}
	if _, blocked := al.Blacklist[value]; blocked {
		return Deny(denyReason)
	}
	if len(al.Whitelist) > 0 {
		if _, allowed := al.Whitelist[value]; !allowed {
			return Deny(denyReason)
		}
	}
	return Pass
}

// IPFilter denies/allows by remote IP address.
type IPFilter struct{ List AccessList }

func (f IPFilter) Name() string { return "ip_filter" }
func (f IPFilter) Evaluate(_ context.Context, req Request) (Verdict, error) {
	return f.List.evaluate(req.RemoteIP, "ip_denied"), nil
}

// NameFilter denies/allows by player username.
type NameFilter struct{ List AccessList }

func (f NameFilter) Name() string { return "name_filter" }
func (f NameFilter) Evaluate(_ context.Context, req Request) (Verdict, error) {
	if req.Username == "" {
		return Pass, nil
	}
	return f.List.evaluate(req.Username, "name_denied"), nil
}

// IDFilter denies/allows by player UUID (dashed string form).
type IDFilter struct{ List AccessList }

func (f IDFilter) Name() string { return "id_filter" }
func (f IDFilter) Evaluate(_ context.Context, req Request) (Verdict, error) {
	if req.UUID == "" {
		return Pass, nil
	}
	return f.List.evaluate(req.UUID, "uuid_denied"), nil
}
