package genome

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/genetics"
	"gonum.org/v1/gonum/spatial/r2"
)

type decoder func(s *components.Specimen, f field) error

// decoders maps every recognised key to the one field it sets.
var decoders = func() map[string]decoder {
	m := map[string]decoder{
		"Id": func(s *components.Specimen, f field) error {
			v, err := uintScalar(f, 32)
			s.Organism.ID = uint32(v)
			return err
		},
		"Ps": func(s *components.Specimen, f field) error {
			v, err := floatVector(f, 2)
			if err == nil {
				s.Body.Pos = r2.Vec{X: v[0], Y: v[1]}
			}
			return err
		},
		"Rt": floatInto(func(s *components.Specimen) *float64 { return &s.Body.Rotation }),
		"Sz": floatInto(func(s *components.Specimen) *float64 { return &s.Body.Radius }),
		"Cl": colorInto(func(s *components.Specimen) *components.Color { return &s.Body.Color }),
		"Tn": colorInto(func(s *components.Specimen) *components.Color { return &s.Body.Tint }),
		"Op": floatInto(func(s *components.Specimen) *float64 { return &s.Body.Opacity }),
		"Tx": func(s *components.Specimen, f field) error {
			if f.Vector {
				return fmt.Errorf("expected scalar")
			}
			v, err := url.QueryUnescape(f.Values[0])
			s.Body.Texture = v
			return err
		},
		"Ae": func(s *components.Specimen, f field) error {
			if f.Vector {
				return fmt.Errorf("expected scalar")
			}
			v, err := strconv.ParseInt(f.Values[0], 10, 64)
			s.Organism.AgeTicks = v
			return err
		},
		"Fd": floatInto(func(s *components.Specimen) *float64 { return &s.Organism.Food }),
		"Cs": floatInto(func(s *components.Specimen) *float64 { return &s.Organism.Speed }),
		"Ft": func(s *components.Specimen, f field) error {
			v, err := floatScalar(f)
			s.Organism.Fertility.SetFloat(v)
			return err
		},
		"Lv": boolInto(func(s *components.Specimen) *bool { return &s.Organism.Alive }),
		"Fz": boolInto(func(s *components.Specimen) *bool { return &s.Organism.Frozen }),
		"Dl": boolInto(func(s *components.Specimen) *bool { return &s.Body.Tombstone }),
		"Rl": func(s *components.Specimen, f field) error {
			if !f.Vector {
				return fmt.Errorf("expected vector")
			}
			roles := make([]components.Role, 0, len(f.Values))
			for _, v := range f.Values {
				n, err := strconv.ParseUint(v, 10, 8)
				if err != nil {
					return err
				}
				// Roles this build does not know are dropped like unknown keys.
				if r := components.Role(n); r.Valid() {
					roles = append(roles, r)
				}
			}
			s.Organism.Roles = roles
			return nil
		},
	}
	for _, t := range genetics.Traits() {
		m[t.Key] = func(s *components.Specimen, f field) error {
			v, err := floatScalar(f)
			if err == nil {
				t.Set(&s.Organism.Genes, v)
			}
			return err
		}
	}
	return m
}()

func floatScalar(f field) (float64, error) {
	if f.Vector {
		return 0, fmt.Errorf("expected scalar")
	}
	return strconv.ParseFloat(f.Values[0], 64)
}

func uintScalar(f field, bits int) (uint64, error) {
	if f.Vector {
		return 0, fmt.Errorf("expected scalar")
	}
	return strconv.ParseUint(f.Values[0], 10, bits)
}

func floatVector(f field, n int) ([]float64, error) {
	if !f.Vector || len(f.Values) != n {
		return nil, fmt.Errorf("expected vector of %d", n)
	}
	out := make([]float64, n)
	for i, v := range f.Values {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func floatInto(dst func(s *components.Specimen) *float64) decoder {
	return func(s *components.Specimen, f field) error {
		v, err := floatScalar(f)
		if err == nil {
			*dst(s) = v
		}
		return err
	}
}

func boolInto(dst func(s *components.Specimen) *bool) decoder {
	return func(s *components.Specimen, f field) error {
		if f.Vector {
			return fmt.Errorf("expected scalar")
		}
		v, err := strconv.ParseBool(f.Values[0])
		if err == nil {
			*dst(s) = v
		}
		return err
	}
}

func colorInto(dst func(s *components.Specimen) *components.Color) decoder {
	return func(s *components.Specimen, f field) error {
		if !f.Vector || len(f.Values) != 4 {
			return fmt.Errorf("expected vector of 4")
		}
		var ch [4]uint8
		for i, v := range f.Values {
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				return err
			}
			ch[i] = uint8(n)
		}
		*dst(s) = components.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
		return nil
	}
}
