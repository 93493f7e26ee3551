// internal/registry/seed.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "activities-api/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// seedSchema validates seed files before they replace the built-in seed.
// A malformed seed should fail startup, not surface later as a broken
// activity record.
const seedSchema = `{
	"type": "object",
	"minProperties": 1,
	"additionalProperties": {
		"type": "object",
		"required": ["description", "schedule", "max_participants", "participants"],
		"additionalProperties": false,
		"properties": {
			"description":      {"type": "string", "minLength": 1},
			"schedule":         {"type": "string", "minLength": 1},
			"max_participants": {"type": "integer", "minimum": 1},
			"participants": {
				"type": "array",
				"items": {"type": "string", "minLength": 1}
			}
		}
	}
}`

// DefaultSeed returns the built-in activity set the service starts with
// when no seed file is configured.
func DefaultSeed() map[string]Activity {
	return map[string]Activity{
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		"Programming Class": {
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		"Gym Class": {
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		"Basketball Team": {
			Description:     "Practice basketball skills and compete against other schools",
			Schedule:        "Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 15,
			Participants:    []string{"liam@mergington.edu", "noah@mergington.edu"},
		},
		"Tennis Club": {
			Description:     "Learn tennis fundamentals and play friendly matches",
			Schedule:        "Tuesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 10,
			Participants:    []string{"ava@mergington.edu", "mia@mergington.edu"},
		},
		"Drama Club": {
			Description:     "Act, direct, and produce plays and performances",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"ella@mergington.edu", "scarlett@mergington.edu"},
		},
		"Art Studio": {
			Description:     "Explore painting, drawing, and sculpture techniques",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"amelia@mergington.edu", "harper@mergington.edu"},
		},
		"Robotics Club": {
			Description:     "Design, build, and program robots for competitions",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 12,
			Participants:    []string{"james@mergington.edu", "benjamin@mergington.edu"},
		},
		"Debate Team": {
			Description:     "Develop argumentation and public speaking skills",
			Schedule:        "Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 16,
			Participants:    []string{"charlotte@mergington.edu", "henry@mergington.edu"},
		},
	}
}

// LoadSeedFile reads and validates a seed JSON file.
func LoadSeedFile(path string) (map[string]Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed validates raw seed JSON against the seed schema and decodes it.
func ParseSeed(data []byte) (map[string]Activity, error) {
	schemaLoader := gojsonschema.NewStringLoader(seedSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, apperrors.NewSeedInvalidError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, apperrors.NewSeedInvalidError(strings.Join(details, "; "))
	}

	var seed map[string]Activity
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, apperrors.NewSeedInvalidError(err.Error())
	}

	// Schema can't compare fields against each other; check capacity here.
	for name, act := range seed {
		if len(act.Participants) > act.MaxParticipants {
			return nil, apperrors.NewSeedInvalidError(fmt.Sprintf(
				"activity %q seeds %d participants over its capacity of %d",
				name, len(act.Participants), act.MaxParticipants,
			))
		}
	}

	return seed, nil
}

// SaveSeedFile writes a seed mapping back to disk, pretty-printed for
// hand editing.
func SaveSeedFile(path string, seed map[string]Activity) error {
	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seed: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
