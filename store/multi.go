package store

import "slices"

// MultiUnit groups several native rows sharing one id_hash into a single
// logical unit whose strings are the member strings in order.
type MultiUnit struct {
	format *Format
	units  []*Unit
}

// MergeMulti groups units by id_hash, keeping first-seen order. Members of
// *MultiUnit inputs are merged individually, so merging twice is a no-op.
func MergeMulti(units []TranslationUnit) []*MultiUnit {
	var out []*MultiUnit
	groups := make(map[int64]*MultiUnit)
	for _, u := range units {
		h := u.IDHash()
		m, ok := groups[h]
		if !ok {
			m = &MultiUnit{}
			groups[h] = m
			out = append(out, m)
		}
		for _, member := range u.members() {
			if m.format == nil {
				m.format = member.format
			}
			m.units = append(m.units, member)
		}
	}
	return out
}

// Units returns the member units.
func (m *MultiUnit) Units() []*Unit { return slices.Clone(m.units) }

func (m *MultiUnit) members() []*Unit { return m.units }

func (m *MultiUnit) first() *Unit { return m.units[0] }

func (m *MultiUnit) IDHash() int64   { return m.first().IDHash() }
func (m *MultiUnit) Context() string { return m.first().Context() }

func (m *MultiUnit) Source() []string {
	out := make([]string, len(m.units))
	for i, u := range m.units {
		out[i] = JoinPlural(u.Source())
	}
	return out
}

func (m *MultiUnit) Target() []string {
	out := make([]string, len(m.units))
	for i, u := range m.units {
		out[i] = JoinPlural(u.Target())
	}
	return out
}

func (m *MultiUnit) Notes() string {
	notes := make([]string, len(m.units))
	for i, u := range m.units {
		notes[i] = u.Notes()
	}
	return joinNotes(notes...)
}

func (m *MultiUnit) Locations() []string {
	var out []string
	for _, u := range m.units {
		out = append(out, u.Locations()...)
	}
	return out
}

func (m *MultiUnit) Flags() Flags {
	var out Flags
	for _, u := range m.units {
		out = out.Union(u.Flags())
	}
	return out
}

func (m *MultiUnit) anyMember(pred func(*Unit) bool) bool {
	return slices.ContainsFunc(m.units, pred)
}

func (m *MultiUnit) IsTranslated() bool { return m.anyMember((*Unit).IsTranslated) }
func (m *MultiUnit) IsFuzzy() bool      { return m.anyMember((*Unit).IsFuzzy) }
func (m *MultiUnit) IsReadOnly() bool   { return m.anyMember((*Unit).IsReadOnly) }
func (m *MultiUnit) HasContent() bool   { return m.anyMember((*Unit).HasContent) }

func (m *MultiUnit) IsApproved() bool {
	return !m.anyMember(func(u *Unit) bool { return !u.IsApproved() })
}

func (m *MultiUnit) HasUnit() bool {
	return !m.anyMember(func(u *Unit) bool { return !u.HasUnit() })
}

func (m *MultiUnit) State() State { return stateOf(m) }

func (m *MultiUnit) Invalidate() {
	for _, u := range m.units {
		u.Invalidate()
	}
}

func (m *MultiUnit) CloneTemplate() error {
	for _, u := range m.units {
		if err := u.CloneTemplate(); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiUnit) SetState(state State) error {
	for _, u := range m.units {
		if err := u.SetState(state); err != nil {
			return err
		}
	}
	return nil
}

// SetTarget resizes the group to len(target) rows, creating or deleting
// trailing native rows, then sets each member's target.
func (m *MultiUnit) SetTarget(target ...string) error {
	if len(target) == 0 {
		target = []string{""}
	}
	first := m.first()
	if err := first.CloneTemplate(); err != nil {
		return err
	}
	resized := len(target) != len(m.units)

	for len(m.units) < len(target) {
		e, err := m.format.native.CreateEntry(first.Context(), first.Source(), nil)
		if err != nil {
			return err
		}
		if err := m.format.native.AddEntry(e); err != nil {
			return err
		}
		m.units = append(m.units, newUnit(m.format, e, first.template))
	}
	for len(m.units) > len(target) {
		last := m.units[len(m.units)-1]
		if last.native != nil {
			if _, err := m.format.native.DeleteEntry(last.native); err != nil {
				return err
			}
		}
		m.units = m.units[:len(m.units)-1]
	}

	for i, u := range m.units {
		if err := u.SetTarget(target[i]); err != nil {
			return err
		}
	}
	if resized {
		m.format.Invalidate()
	}
	return nil
}
