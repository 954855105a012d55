// Package participant defines the participant profile model and the
// repository that loads rosters from YAML files.
//
// Profiles are immutable once loaded: the repository hands out deep copies,
// and a reload swaps the whole roster atomically rather than mutating
// profiles in place. Neurotype information adjusts assignment scoring; it
// never gates eligibility.
package participant

import (
	"strings"

	"github.com/atelier-edu/reparto/internal/errors"
)

// -----------------------------------------------------------------------------
// Neurotype
// -----------------------------------------------------------------------------

// Neurotype classifies how a participant engages with structured work.
type Neurotype string

const (
	// NeurotypeTypical is the default when a roster entry declares nothing.
	NeurotypeTypical Neurotype = "typical"

	// NeurotypeASD marks a participant who works best with structure and
	// predictability. Scoring favors structured, precise items and avoids
	// improvisation-tagged ones.
	NeurotypeASD Neurotype = "asd"

	// NeurotypeADHD marks a participant who works best with movement and
	// variety. Scoring favors dynamic items and penalizes long high-complexity
	// ones.
	NeurotypeADHD Neurotype = "adhd"

	// NeurotypeGifted marks a participant who benefits from challenge.
	// Scoring favors high-complexity items and avoids trivially simple ones.
	NeurotypeGifted Neurotype = "gifted"

	// NeurotypeOther covers profiles that need adaptations not described by
	// the categories above. Scoring applies no adjustment.
	NeurotypeOther Neurotype = "other"
)

// String returns the string representation of the neurotype.
func (n Neurotype) String() string {
	return string(n)
}

// IsValid returns true if the neurotype is one of the known values.
func (n Neurotype) IsValid() bool {
	switch n {
	case NeurotypeTypical, NeurotypeASD, NeurotypeADHD, NeurotypeGifted, NeurotypeOther:
		return true
	}
	return false
}

// ValidNeurotypes returns the accepted neurotype values, for error messages
// and roster file documentation.
func ValidNeurotypes() []Neurotype {
	return []Neurotype{NeurotypeTypical, NeurotypeASD, NeurotypeADHD, NeurotypeGifted, NeurotypeOther}
}

// -----------------------------------------------------------------------------
// Profile
// -----------------------------------------------------------------------------

// Profile describes one participant in the roster.
type Profile struct {
	// ID uniquely identifies the participant within a roster ("p-003").
	ID string `yaml:"id" json:"id"`

	// Name is the display name. Defaults to the id when the roster omits it.
	Name string `yaml:"name,omitempty" json:"name"`

	// Strengths are competency tags the participant is strong in. Matched
	// case-insensitively against work item competencies and descriptions.
	Strengths []string `yaml:"strengths,omitempty" json:"strengths,omitempty"`

	// SupportNeeds are adaptation tags ("visual_supports", "frequent_breaks").
	// They inform rationale text, not eligibility.
	SupportNeeds []string `yaml:"support_needs,omitempty" json:"support_needs,omitempty"`

	// Neurotype adjusts assignment scoring. Empty means typical.
	Neurotype Neurotype `yaml:"neurotype,omitempty" json:"neurotype"`

	// Availability is the participant's capacity for new work, 0-100.
	// Values above 80 raise the per-participant load cap; values below 70
	// lower it.
	Availability int `yaml:"availability" json:"availability"`

	// RoleHistory lists roles the participant has already filled, most
	// recent last. Used to vary role rotation in rationale text.
	RoleHistory []string `yaml:"role_history,omitempty" json:"role_history,omitempty"`
}

// HasStrength reports whether the profile lists the given strength tag.
// Matching is case-insensitive.
func (p Profile) HasStrength(tag string) bool {
	for _, s := range p.Strengths {
		if strings.EqualFold(s, tag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the profile. The copy shares no slices with
// the original.
func (p Profile) Clone() Profile {
	out := p
	if p.Strengths != nil {
		out.Strengths = append([]string(nil), p.Strengths...)
	}
	if p.SupportNeeds != nil {
		out.SupportNeeds = append([]string(nil), p.SupportNeeds...)
	}
	if p.RoleHistory != nil {
		out.RoleHistory = append([]string(nil), p.RoleHistory...)
	}
	return out
}

// CloneProfiles returns a deep copy of a profile slice.
func CloneProfiles(profiles []Profile) []Profile {
	if profiles == nil {
		return nil
	}
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = p.Clone()
	}
	return out
}

// Validate checks a single profile for roster correctness. It returns a
// ValidationError describing the first problem found, or nil.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.NewValidationError("participant id is required").
			WithField("id")
	}
	if p.Neurotype != "" && !p.Neurotype.IsValid() {
		return errors.NewValidationError("unknown neurotype").
			WithField("neurotype").
			WithValue(p.Neurotype.String())
	}
	if p.Availability < 0 || p.Availability > 100 {
		return errors.NewValidationError("availability must be between 0 and 100").
			WithField("availability").
			WithValue(p.Availability)
	}
	return nil
}

// normalize fills defaults a roster file may omit and canonicalizes the
// neurotype casing. The repository normalizes before validating so "ASD"
// in a roster file is accepted as "asd".
func (p Profile) normalize() Profile {
	out := p.Clone()
	out.ID = strings.TrimSpace(out.ID)
	if strings.TrimSpace(out.Name) == "" {
		out.Name = out.ID
	}
	if out.Neurotype == "" {
		out.Neurotype = NeurotypeTypical
	} else {
		out.Neurotype = Neurotype(strings.ToLower(out.Neurotype.String()))
	}
	return out
}

// IDs returns the ids of the given profiles in order.
func IDs(profiles []Profile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

// ByID returns a pointer to the profile with the given id, or nil.
func ByID(profiles []Profile, id string) *Profile {
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i]
		}
	}
	return nil
}
