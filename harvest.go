package objects

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-objects/internal/reflectutil"
)

// resolveFields maps declared parameter names (and borrow carriers) to
// struct field index paths. Runs once per class; a declared name with no
// matching field is a class-definition defect reported against every
// offending parameter at once.
func (c *Class) resolveFields() error {
	c.fieldsOnce.Do(func() {
		c.fields = make(map[string][]int)
		var missing []string
		for _, p := range c.sig.Params {
			if p.Hidden {
				continue
			}
			name := p.Name
			if p.Carrier != "" {
				name = p.Carrier
			}
			if _, ok := c.fields[name]; ok {
				continue
			}
			index, ok := reflectutil.FieldIndex(c.typ, name)
			if !ok {
				missing = append(missing, p.Name)
				continue
			}
			c.fields[name] = index
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			c.fieldErr = &ConfigurationError{
				Class:  c.name,
				Params: missing,
				Reason: "no matching field on " + c.typ.String(),
			}
		}
	})
	return c.fieldErr
}

// harvest reads the declared constructor arguments off a live instance:
// non-hidden parameters in declaration order (borrowed ones through
// their carriers), followed by any forwarded extras, plus the hidden
// parameters as a separate dict.
func (c *Class) harvest(v any) (args, hidden *Dict, err error) {
	rv, ok := c.instance(v)
	if !ok {
		return nil, nil, fmt.Errorf("objects: value %T is not an instance of %s", v, c.Key())
	}
	if err := c.resolveFields(); err != nil {
		return nil, nil, err
	}

	args = NewDict()
	hidden = NewDict()
	for _, p := range c.sig.Params {
		if p.Hidden {
			hidden.Set(p.Name, p.Default)
			continue
		}
		if p.Carrier == "" {
			args.Set(p.Name, rv.FieldByIndex(c.fields[p.Name]).Interface())
			continue
		}
		carrier := rv.FieldByIndex(c.fields[p.Carrier])
		value, ok := reflectutil.Borrow(carrier, p.Name)
		if !ok {
			return nil, nil, &ConfigurationError{
				Class:  c.name,
				Params: []string{p.Name},
				Reason: fmt.Sprintf("carrier %q holds no attribute for the parameter", p.Carrier),
			}
		}
		args.Set(p.Name, value)
	}

	if c.sig.AcceptsExtras {
		base := rv.FieldByIndex(c.baseIndex).Interface().(Object)
		if !base.hasBase() {
			return nil, nil, &ConfigurationError{
				Class:  c.name,
				Reason: "constructor accepts extra arguments but did not forward them via NewBase",
			}
		}
		for _, key := range base.ExtraKeys() {
			if _, declared := c.sig.Param(key); declared {
				continue
			}
			value, _ := base.Extra(key)
			args.Set(key, value)
		}
	}
	return args, hidden, nil
}
