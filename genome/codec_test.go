package genome

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/genetics"
	"gonum.org/v1/gonum/spatial/r2"
)

var textures = []string{"", "organism", "cell a.png", "k:v,{x}", "100%+"}

func randomSpecimen(rng *rand.Rand) components.Specimen {
	color := func() components.Color {
		return components.Color{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: uint8(rng.Intn(256))}
	}
	s := components.Specimen{
		Body: components.Body{
			Pos:       r2.Vec{X: rng.Float64() * 1280, Y: rng.Float64() * 720},
			Rotation:  rng.NormFloat64() * 1000,
			Radius:    rng.Float64() * 50,
			Color:     color(),
			Tint:      color(),
			Opacity:   rng.Float64(),
			Texture:   textures[rng.Intn(len(textures))],
			Tombstone: rng.Intn(2) == 0,
		},
		Organism: components.Organism{
			ID:       rng.Uint32(),
			Genes:    genetics.Random(rng),
			AgeTicks: rng.Int63n(1 << 40),
			Food:     rng.Float64() * 150,
			Speed:    rng.Float64() * 2,
			Alive:    rng.Intn(2) == 0,
			Frozen:   rng.Intn(2) == 0,
			Roles:    components.DefaultRoles()[:1+rng.Intn(10)],
		},
	}
	s.Organism.Fertility.Set(rng.Float64() * 100)
	s.Organism.Normalize()
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		want := randomSpecimen(rng)
		line := Encode(&want)

		got, err := Decode(line)
		if err != nil {
			t.Fatalf("Decode(%q): %v", line, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch\nline: %s\n got: %+v\nwant: %+v", line, got, want)
		}
	}
}

func TestEncodeIsStable(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := randomSpecimen(rng)
	line := Encode(&s)
	back, err := Decode(line)
	if err != nil {
		t.Fatal(err)
	}
	if again := Encode(&back); again != line {
		t.Errorf("re-encoding changed the line\n%s\n%s", line, again)
	}
}

func TestEncodeFormat(t *testing.T) {
	s := components.Specimen{Body: components.NewBody(r2.Vec{X: 12.5, Y: 3}, 20, components.Color{A: 255})}
	s.Organism.Roles = []components.Role{components.RoleEat, components.RoleMove}
	line := Encode(&s)

	for _, want := range []string{"Organism-> Ag:", " Ps:{12.5, 3} ", " Sz:20 ", " Rl:{3, 10} ", " Cl:{0, 0, 0, 255} "} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q lacks %q", line, want)
		}
	}
}

func TestBlueprintCarriesTraitsOnly(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := randomSpecimen(rng)
	line := EncodeBlueprint(&s)

	if !IsBlueprint(line) {
		t.Fatalf("line %q not tagged as blueprint", line)
	}
	if strings.Contains(line, "Ps:") || strings.Contains(line, "Id:") {
		t.Errorf("blueprint leaks state: %s", line)
	}

	got, err := Decode(line)
	if err != nil {
		t.Fatal(err)
	}
	if got.Organism.Genes != s.Organism.Genes {
		t.Errorf("genes = %+v, want %+v", got.Organism.Genes, s.Organism.Genes)
	}
	if !got.Organism.Alive || got.Body.Opacity != 1 || len(got.Organism.Roles) != len(components.DefaultRoles()) {
		t.Errorf("blueprint did not decode to a fresh organism: %+v", got)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"unknown tag", "Foo-> Ag:1"},
		{"tag without separator", "Organism->Ag:1"},
		{"key without colon", "Organism-> Ag"},
		{"missing value", "Organism-> Ag:"},
		{"missing key", "Organism-> :5"},
		{"unterminated vector", "Organism-> Ps:{1, 2"},
		{"empty vector component", "Organism-> Ps:{1,, 2}"},
		{"stray brace", "Organism-> Ag:1}"},
		{"junk after vector", "Organism-> Ps:{1, 2}x"},
		{"not a number", "Organism-> Ag:abc"},
		{"vector for scalar key", "Genome-> Ag:{1, 2}"},
		{"short position", "Organism-> Ps:{1}"},
		{"scalar for vector key", "Organism-> Rl:3"},
		{"color out of range", "Organism-> Cl:{0, 0, 0, 256}"},
		{"bad bool", "Organism-> Lv:maybe"},
		{"bad texture escape", "Organism-> Tx:%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode(tt.line)
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("Decode(%q) error = %v, want ErrFormat", tt.line, err)
			}
			if !reflect.DeepEqual(s, components.Specimen{}) {
				t.Errorf("partial specimen returned: %+v", s)
			}
		})
	}
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	s, err := Decode("Genome-> Zz:5 Qq:{1, 2} Ag:40 Future_key:x")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Organism.Genes.Aggression.Get() != 40 {
		t.Errorf("aggression = %d, want 40", s.Organism.Genes.Aggression.Get())
	}
}

func TestDecodeClampsTraits(t *testing.T) {
	s, err := Decode("Genome-> Fl:1000 Sp:-3 Kd:7")
	if err != nil {
		t.Fatal(err)
	}
	g := s.Organism.Genes
	if g.FoodLimit.Get() != 150 || g.MaxSpeed.Get() != 0.1 || g.Kind.Get() != 2 {
		t.Errorf("traits not clamped: %+v", g)
	}
}

func TestDecodeEmptyRolesAndUnknownRoleTags(t *testing.T) {
	s, err := Decode("Organism-> Rl:{}")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Organism.Roles) != 0 {
		t.Errorf("roles = %v, want none", s.Organism.Roles)
	}

	s, err = Decode("Organism-> Rl:{3, 200, 10}")
	if err != nil {
		t.Fatal(err)
	}
	want := []components.Role{components.RoleEat, components.RoleMove}
	if !reflect.DeepEqual(s.Organism.Roles, want) {
		t.Errorf("roles = %v, want %v", s.Organism.Roles, want)
	}
}

func TestTextureWithSeparatorsRoundTrips(t *testing.T) {
	for _, tex := range textures[1:] {
		t.Run(tex, func(t *testing.T) {
			in := components.Specimen{Body: components.Body{Texture: tex, Opacity: 1}, Organism: components.Organism{Alive: true}}
			got, err := Decode(Encode(&in))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Body.Texture != tex {
				t.Errorf("texture = %q, want %q", got.Body.Texture, tex)
			}
		})
	}
}

func TestDecodeDeadOrganismOnlyDecays(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"dead with default roles", "Organism-> Lv:0"},
		{"dead and frozen", "Organism-> Lv:0 Fz:1 Rl:{11}"},
		{"dead with explicit roles", "Organism-> Lv:0 Rl:{1, 3, 10}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode(tt.line)
			if err != nil {
				t.Fatal(err)
			}
			o := s.Organism
			if o.State() != components.StateDead || o.Frozen {
				t.Errorf("state = %v frozen = %v, want dead and unfrozen", o.State(), o.Frozen)
			}
			if !reflect.DeepEqual(o.Roles, []components.Role{components.RoleDecay}) {
				t.Errorf("roles = %v, want [decay]", o.Roles)
			}
		})
	}
}
