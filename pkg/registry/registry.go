// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mergington-activities/internal/activities"

	"github.com/xeipuuv/gojsonschema"
)

const CurrentVersion = "1.0.0"

// LoadRegistry reads a seed catalog and checks it against the catalog schema
// and the registry invariants.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := activities.ValidateSeed(reg.ToActivities()); err != nil {
		return nil, err
	}
	return &reg, nil
}

func validateSchema(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// New returns an empty catalog stamped with the current time.
func New() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     CurrentVersion,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities:  []Activity{},
	}
}

// FromActivities builds a catalog from registry activities, keeping order.
func FromActivities(list []activities.Activity) *ActivityRegistry {
	reg := New()
	for _, a := range list {
		participants := make([]string, len(a.Participants))
		copy(participants, a.Participants)
		reg.Activities = append(reg.Activities, Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		})
	}
	return reg
}

func (r *ActivityRegistry) ToActivities() []activities.Activity {
	out := make([]activities.Activity, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, activities.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    a.Participants,
		}.Clone())
	}
	return out
}

func (r *ActivityRegistry) Find(name string) (int, bool) {
	for i, a := range r.Activities {
		if a.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Save writes the catalog as indented JSON, creating parent directories.
func Save(reg *ActivityRegistry, path string) error {
	for i := range reg.Activities {
		if reg.Activities[i].Participants == nil {
			reg.Activities[i].Participants = []string{}
		}
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
