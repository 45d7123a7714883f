// internal/form/validate.go
//
// lincms – Forms subsystem: the validation pass.
//
// Context
//   Validate turns a raw Payload into typed Values or a *ValidationError.
//   Evaluation is synchronous and touches only the request's own payload; the
//   Definition is shared read-only.
//
// Workflow
//   1. Intrinsic phase.  Every field, in declaration order, is coerced and run
//      through its rules.  A field stops at its first failing rule; other
//      fields still report their own first failure.
//   2. If any field failed, the pass ends here.  No hook, and therefore no
//      external check, runs for input that is already known to be bad.
//   3. Hook phase.  Hooks of each non-skipped field run in order; the first
//      rejection is recorded for that field.
//   4. Date-time fields are coerced last, once their hooks accepted them.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/lincms/internal/metrics"
)

// Message used when an integer field receives non-numeric input.
const msgNotInteger = "不是有效的整数"

// Validate runs def against in.  look may be nil for forms without external
// checks.  A non-nil error is either a *ValidationError or an infrastructure
// failure from a hook.
func Validate(ctx context.Context, def *Definition, in Payload, look Lookup, opts ...Option) (Values, error) {
	pass := &Pass{Form: def, Input: in, Lookup: look}
	for _, o := range opts {
		o(pass)
	}

	staged := make(map[string]Value, len(def.Fields))
	var errs []FieldError

	// Intrinsic phase.
	for _, f := range def.Fields {
		v, present, fe := evaluate(f, in)
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		if present {
			staged[f.Name] = v
		}
	}
	if len(errs) > 0 {
		return nil, reject(def, errs)
	}

	// Hook phase.
	for _, f := range def.Fields {
		if len(f.Hooks) == 0 {
			continue
		}
		v, present := staged[f.Name]
		if !present && f.optional() {
			continue
		}
		for _, h := range f.Hooks {
			err := h(ctx, v, pass)
			if err == nil {
				continue
			}
			var he *hookError
			if !errors.As(err, &he) {
				metrics.FormValidationsTotal.WithLabelValues(def.ID, "error").Inc()
				return nil, fmt.Errorf("form %s: field %s: %w", def.ID, f.Name, err)
			}
			errs = append(errs, FieldError{Field: f.Name, Message: he.msg, Kind: he.kind})
			if he.kind == KindConflict {
				metrics.FormConflictsTotal.WithLabelValues(def.ID, f.Name).Inc()
			}
			break
		}
	}
	if len(errs) > 0 {
		return nil, reject(def, errs)
	}

	out := make(Values, len(staged))
	for _, f := range def.Fields {
		v, ok := staged[f.Name]
		if !ok {
			continue
		}
		switch f.Kind {
		case KindInteger:
			out[f.Name] = v.Int
		case KindList:
			out[f.Name] = v.Items
		case KindDateTime:
			t, err := time.ParseInLocation(DateTimeLayout, v.Raw, time.Local)
			if err != nil {
				return nil, reject(def, []FieldError{{Field: f.Name, Message: err.Error()}})
			}
			out[f.Name] = t
		default:
			out[f.Name] = v.Raw
		}
	}

	metrics.FormValidationsTotal.WithLabelValues(def.ID, "ok").Inc()
	return out, nil
}

func reject(def *Definition, errs []FieldError) error {
	ve := &ValidationError{Form: def.ID, Fields: errs}
	outcome := "invalid"
	if ve.Conflict() {
		outcome = "conflict"
	}
	metrics.FormValidationsTotal.WithLabelValues(def.ID, outcome).Inc()
	zap.L().Debug("form rejected",
		zap.String("form", def.ID),
		zap.String("outcome", outcome),
		zap.Int("fields", len(errs)))
	return ve
}

// evaluate coerces and checks one field.  present is false when the field was
// blank and the field allows that.
func evaluate(f Field, in Payload) (Value, bool, *FieldError) {
	if f.Kind == KindList {
		items := in.List(f.Name)
		if len(items) == 0 {
			// An absent list has no entries to reject.
			return Value{}, !f.optional(), nil
		}
		for _, it := range items {
			if ok, fe := runRules(f, Value{Raw: it}, in); !ok {
				return Value{}, false, fe
			}
		}
		return Value{Items: items}, true, nil
	}

	raw, _ := in.Text(f.Name)
	v := Value{Raw: raw}

	if f.Kind == KindInteger && !blank(raw) {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, false, &FieldError{Field: f.Name, Message: msgNotInteger}
		}
		v.Int = n
	}

	for _, r := range f.Rules {
		if r.Optional {
			if blank(raw) {
				return Value{}, false, nil
			}
			continue
		}
		if !r.passes(v, in) {
			return Value{}, false, &FieldError{Field: f.Name, Message: r.Message}
		}
	}
	if blank(raw) {
		// Unconstrained and empty, e.g. a date bound left out.
		return v, false, nil
	}
	return v, true, nil
}

// runRules applies f's rules to a single list entry.
func runRules(f Field, v Value, in Payload) (bool, *FieldError) {
	for _, r := range f.Rules {
		if r.Optional {
			if blank(v.Raw) {
				return true, nil
			}
			continue
		}
		if !r.passes(v, in) {
			return false, &FieldError{Field: f.Name, Message: r.Message}
		}
	}
	return true, nil
}
