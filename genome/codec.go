// Package genome encodes organisms to and from a single line of text.
//
// A line is a tag followed by space-separated KEY:VALUE tokens, where a value is a
// scalar or a brace-delimited vector:
//
//	Genome-> Ag:12 Dt:80 Fl:97.5 Ma:40 Ms:31 Sp:1.25 Rr:120 Kd:1 Mb:0 Tr:0
//	Organism-> Ag:12 ... Id:7 Ps:{12.5, 3} Rt:90 Sz:20 Rl:{1, 2, 3, 10}
//
// Genome lines carry only the traits. Organism lines carry the full live state. The
// texture name is query-escaped so separators inside it survive.
// Unknown keys are ignored so older and newer lines stay readable.
package genome

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/genetics"
)

// Line tags.
const (
	TagBlueprint = "Genome->"
	TagOrganism  = "Organism->"
)

// ErrFormat is returned when a line does not follow the genome grammar or a known key
// holds a value of the wrong shape.
var ErrFormat = errors.New("genome: malformed line")

// EncodeBlueprint returns the Genome-> line holding only the traits of s.
func EncodeBlueprint(s *components.Specimen) string {
	var b strings.Builder
	b.WriteString(TagBlueprint)
	writeTraits(&b, &s.Organism.Genes)
	return b.String()
}

// Encode returns the Organism-> line holding the traits and live state of s.
func Encode(s *components.Specimen) string {
	var b strings.Builder
	b.WriteString(TagOrganism)
	writeTraits(&b, &s.Organism.Genes)

	body, org := &s.Body, &s.Organism
	writeScalar(&b, "Id", strconv.FormatUint(uint64(org.ID), 10))
	writeVector(&b, "Ps", formatFloat(body.Pos.X), formatFloat(body.Pos.Y))
	writeScalar(&b, "Rt", formatFloat(body.Rotation))
	writeScalar(&b, "Sz", formatFloat(body.Radius))
	writeVector(&b, "Cl", formatColor(body.Color)...)
	writeVector(&b, "Tn", formatColor(body.Tint)...)
	writeScalar(&b, "Op", formatFloat(body.Opacity))
	if body.Texture != "" {
		writeScalar(&b, "Tx", url.QueryEscape(body.Texture))
	}
	writeScalar(&b, "Ae", strconv.FormatInt(org.AgeTicks, 10))
	writeScalar(&b, "Fd", formatFloat(org.Food))
	writeScalar(&b, "Cs", formatFloat(org.Speed))
	writeScalar(&b, "Ft", formatFloat(org.Fertility.Get()))
	writeScalar(&b, "Lv", formatBool(org.Alive))
	writeScalar(&b, "Fz", formatBool(org.Frozen))

	roles := make([]string, len(org.Roles))
	for i, r := range org.Roles {
		roles[i] = strconv.Itoa(int(r))
	}
	writeVector(&b, "Rl", roles...)
	writeScalar(&b, "Dl", formatBool(body.Tombstone))
	return b.String()
}

// Decode parses a Genome-> or Organism-> line. Fields absent from the line keep the
// defaults of a fresh organism: alive, fully opaque, default roles. A dead organism
// always comes back unfrozen with only the decay role. On error the returned specimen
// is the zero value.
func Decode(line string) (components.Specimen, error) {
	_, fields, err := parse(line)
	if err != nil {
		return components.Specimen{}, err
	}

	s := components.Specimen{
		Body: components.Body{Opacity: 1},
		Organism: components.Organism{
			Alive: true,
			Roles: components.DefaultRoles(),
		},
	}
	for _, f := range fields {
		apply, ok := decoders[f.Key]
		if !ok {
			continue
		}
		if err := apply(&s, f); err != nil {
			return components.Specimen{}, fmt.Errorf("%w: column %d: key %s: %v", ErrFormat, f.Col, f.Key, err)
		}
	}
	s.Organism.Normalize()
	return s, nil
}

// IsBlueprint reports whether line carries the Genome-> tag.
func IsBlueprint(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), TagBlueprint)
}

func writeTraits(b *strings.Builder, p *genetics.Profile) {
	for _, t := range genetics.Traits() {
		writeScalar(b, t.Key, formatFloat(t.Get(p)))
	}
}

func writeScalar(b *strings.Builder, key, value string) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte(':')
	b.WriteString(value)
}

func writeVector(b *strings.Builder, key string, values ...string) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(":{")
	b.WriteString(strings.Join(values, ", "))
	b.WriteByte('}')
}

// formatFloat writes the shortest representation that parses back to the same value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func formatColor(c components.Color) []string {
	return []string{
		strconv.Itoa(int(c.R)),
		strconv.Itoa(int(c.G)),
		strconv.Itoa(int(c.B)),
		strconv.Itoa(int(c.A)),
	}
}
