package scoring

import "sort"

// Profile describes the dimension schema of one report type.
type Profile struct {
	Name       string   `json:"name"`
	Dimensions []string `json:"dimensions"`
	// Strict rejects items carrying dimensions outside the schema.
	Strict bool `json:"strict"`
}

// Built-in report types.
var (
	RiskProfile = Profile{
		Name:       "risk",
		Dimensions: []string{"impact", "likelihood", "vulnerability"},
		Strict:     true,
	}
	OpportunityProfile = Profile{
		Name:       "opportunity",
		Dimensions: []string{"exposure", "readiness", "value_creation"},
		Strict:     true,
	}
	DependencyProfile = Profile{
		Name:       "dependency",
		Dimensions: []string{"criticality", "substitutability", "exposure"},
		Strict:     true,
	}
)

func (p Profile) allows(dimension string) bool {
	if !p.Strict {
		return true
	}
	for _, d := range p.Dimensions {
		if d == dimension {
			return true
		}
	}
	return false
}

func defaultProfiles() map[string]Profile {
	return map[string]Profile{
		RiskProfile.Name:        RiskProfile,
		OpportunityProfile.Name: OpportunityProfile,
		DependencyProfile.Name:  DependencyProfile,
	}
}

func sortedProfileNames(profiles map[string]Profile) []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
