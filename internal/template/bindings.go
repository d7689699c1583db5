package template

import (
	"fmt"
	"strings"
)

// DefaultMask replaces secret values in display strings.
const DefaultMask = "********"

// Bindings maps token names to values. A key that is present is bound, even
// to the empty string; a missing key leaves the token unresolved.
// Keys may use any alias spelling; they are normalized at expansion time.
type Bindings map[string]string

// Values is the typed form of the operator inputs behind a binding set.
type Values struct {
	ComPort1 string `yaml:"comport1,omitempty" json:"comport1,omitempty" mapstructure:"comport1"`
	ComPort2 string `yaml:"comport2,omitempty" json:"comport2,omitempty" mapstructure:"comport2"`
	Username string `yaml:"username,omitempty" json:"username,omitempty" mapstructure:"username"`
	Password string `yaml:"-" json:"-" mapstructure:"password"`
	Opco     string `yaml:"opco,omitempty" json:"opco,omitempty" mapstructure:"opco"`
	Program  string `yaml:"program,omitempty" json:"program,omitempty" mapstructure:"program"`
	WorkDir  string `yaml:"wd,omitempty" json:"wd,omitempty" mapstructure:"wd"`
}

// Bindings returns a binding set with every canonical token present.
func (v Values) Bindings() Bindings {
	return Bindings{
		TokenComPort1: v.ComPort1,
		TokenComPort2: v.ComPort2,
		TokenUsername: v.Username,
		TokenPassword: v.Password,
		TokenOpco:     v.Opco,
		TokenProgram:  v.Program,
		TokenWorkDir:  v.WorkDir,
	}
}

// Merge returns v with every non-empty field of other applied on top.
func (v Values) Merge(other Values) Values {
	pick := func(base, over string) string {
		if over != "" {
			return over
		}
		return base
	}
	return Values{
		ComPort1: pick(v.ComPort1, other.ComPort1),
		ComPort2: pick(v.ComPort2, other.ComPort2),
		Username: pick(v.Username, other.Username),
		Password: pick(v.Password, other.Password),
		Opco:     pick(v.Opco, other.Opco),
		Program:  pick(v.Program, other.Program),
		WorkDir:  pick(v.WorkDir, other.WorkDir),
	}
}

// Clone returns a copy of b. A nil set clones to an empty one.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// With returns a copy of b with name bound to value.
func (b Bindings) With(name, value string) Bindings {
	out := b.Clone()
	out[strings.TrimSpace(name)] = value
	return out
}

// ParseAssignments parses "name=value" pairs (as given to --set) into a
// binding set. The value may be empty; the name may not.
func ParseAssignments(pairs []string) (Bindings, error) {
	out := make(Bindings, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q: expected name=value", pair)
		}
		out[name] = value
	}
	return out, nil
}
