// internal/form/hooks.go
//
// lincms – Forms subsystem: hooks and external reference checks.
//
// Context
//   A Hook runs after every field of the form passed its intrinsic rules.  It
//   may look at sibling input or read persistence through the Lookup handed to
//   Validate.  Nothing here is cached: each pass reads live rows.
//
//   Uniqueness checks only see active rows (delete_time IS NULL), so a
//   soft-deleted member never blocks reuse of its number or phone.  The check
//   and the later INSERT are not atomic; the repository maps a duplicate-key
//   error back to the same conflict for the racing request.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/member"
)

// Lookup is the persistence surface hooks read from.  A nil result with a nil
// error means "no such row".
type Lookup interface {
	FindGroupByID(ctx context.Context, id int64) (*acl.Group, error)
	FindActiveMemberByNumberID(ctx context.Context, numberID string) (*member.Member, error)
	FindActiveMemberByPhone(ctx context.Context, phone string) (*member.Member, error)
}

// Hook validates one field against siblings or external state.  Return
// Invalid or Conflict to reject the value; any other error aborts the pass.
type Hook func(ctx context.Context, v Value, p *Pass) error

// Pass carries the request-scoped inputs of one validation pass.
type Pass struct {
	Form   *Definition
	Input  Payload
	Lookup Lookup

	// ExcludeMember is the id of the member being updated.  Its own row does
	// not count as a uniqueness conflict.
	ExcludeMember int64
}

// Option tunes a pass.
type Option func(*Pass)

// ExcludeMember skips member id in uniqueness checks.
func ExcludeMember(id int64) Option {
	return func(p *Pass) { p.ExcludeMember = id }
}

var errNoLookup = errors.New("form: hook needs a lookup but none was supplied")

// -----------------------------------------------------------------------------
// Built-in hooks
// -----------------------------------------------------------------------------

// GroupExists rejects ids with no matching group.
func GroupExists(msg string) Hook {
	return func(ctx context.Context, v Value, p *Pass) error {
		if p.Lookup == nil {
			return errNoLookup
		}
		g, err := p.Lookup.FindGroupByID(ctx, v.Int)
		if err != nil {
			return fmt.Errorf("find group %d: %w", v.Int, err)
		}
		if g == nil {
			return Invalid(msg)
		}
		return nil
	}
}

// ParseDateTime strictly parses a present value with DateTimeLayout and
// reports the parser's own message on failure.  Absent values pass.
func ParseDateTime() Hook {
	return func(_ context.Context, v Value, _ *Pass) error {
		if blank(v.Raw) {
			return nil
		}
		if _, err := time.ParseInLocation(DateTimeLayout, v.Raw, time.Local); err != nil {
			return Invalid(err.Error())
		}
		return nil
	}
}

// UniqueMemberNumberID rejects a number already held by an active member.
func UniqueMemberNumberID(msg string) Hook {
	return func(ctx context.Context, v Value, p *Pass) error {
		if p.Lookup == nil {
			return errNoLookup
		}
		m, err := p.Lookup.FindActiveMemberByNumberID(ctx, v.Raw)
		if err != nil {
			return fmt.Errorf("find member by number_id: %w", err)
		}
		return conflictUnlessSelf(m, p, msg)
	}
}

// UniqueMemberPhone rejects a phone already held by an active member.
func UniqueMemberPhone(msg string) Hook {
	return func(ctx context.Context, v Value, p *Pass) error {
		if p.Lookup == nil {
			return errNoLookup
		}
		m, err := p.Lookup.FindActiveMemberByPhone(ctx, v.Raw)
		if err != nil {
			return fmt.Errorf("find member by phone: %w", err)
		}
		return conflictUnlessSelf(m, p, msg)
	}
}

func conflictUnlessSelf(m *member.Member, p *Pass, msg string) error {
	if m == nil {
		return nil
	}
	if p.ExcludeMember != 0 && m.ID == p.ExcludeMember {
		return nil
	}
	return Conflict(msg)
}

// -----------------------------------------------------------------------------
// Store-backed Lookup
// -----------------------------------------------------------------------------

// GroupFinder is the slice of acl.Store the lookup needs.
type GroupFinder interface {
	GroupByID(ctx context.Context, id int64) (*acl.Group, error)
}

// MemberFinder is the slice of member.Repository the lookup needs.
type MemberFinder interface {
	ActiveByNumberID(ctx context.Context, numberID string) (*member.Member, error)
	ActiveByPhone(ctx context.Context, phone string) (*member.Member, error)
}

type storeLookup struct {
	groups  GroupFinder
	members MemberFinder
}

// NewLookup adapts the stores to Lookup, translating their ErrNotFound into
// the nil-result convention.
func NewLookup(groups GroupFinder, members MemberFinder) Lookup {
	return &storeLookup{groups: groups, members: members}
}

func (l *storeLookup) FindGroupByID(ctx context.Context, id int64) (*acl.Group, error) {
	g, err := l.groups.GroupByID(ctx, id)
	if errors.Is(err, acl.ErrNotFound) {
		return nil, nil
	}
	return g, err
}

func (l *storeLookup) FindActiveMemberByNumberID(ctx context.Context, numberID string) (*member.Member, error) {
	m, err := l.members.ActiveByNumberID(ctx, numberID)
	if errors.Is(err, member.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (l *storeLookup) FindActiveMemberByPhone(ctx context.Context, phone string) (*member.Member, error) {
	m, err := l.members.ActiveByPhone(ctx, phone)
	if errors.Is(err, member.ErrNotFound) {
		return nil, nil
	}
	return m, err
}
