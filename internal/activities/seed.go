package activities

import (
	"fmt"
	"strings"

	apperrors "mergington-activities/internal/common/errors"
)

// DefaultSeed returns the built-in Mergington High School activities.
func DefaultSeed() []Activity {
	return []Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Soccer Practice",
			Description:     "Team drills, conditioning, and scrimmages",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 22,
			Participants:    []string{},
		},
		{
			Name:            "Track & Field",
			Description:     "Sprint, distance, and field event training",
			Schedule:        "Mondays and Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 28,
			Participants:    []string{},
		},
		{
			Name:            "Drama Club",
			Description:     "Acting workshops and preparing stage performances",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
			Participants:    []string{},
		},
		{
			Name:            "Art Studio",
			Description:     "Drawing, painting, and mixed-media projects",
			Schedule:        "Mondays, 3:30 PM - 5:00 PM",
			MaxParticipants: 16,
			Participants:    []string{},
		},
		{
			Name:            "Debate Team",
			Description:     "Practice structured debates and public speaking",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 14,
			Participants:    []string{},
		},
		{
			Name:            "Math Olympiad",
			Description:     "Problem-solving sessions and competition prep",
			Schedule:        "Tuesdays, 3:30 PM - 4:45 PM",
			MaxParticipants: 20,
			Participants:    []string{},
		},
	}
}

// ValidateSeed checks the registry invariants on a seed set before it is loaded.
func ValidateSeed(seed []Activity) error {
	if len(seed) == 0 {
		return apperrors.NewInvalidSeedError("seed contains no activities")
	}

	names := make(map[string]bool, len(seed))
	for _, a := range seed {
		if strings.TrimSpace(a.Name) == "" {
			return apperrors.NewInvalidSeedError("activity with empty name")
		}
		if names[a.Name] {
			return apperrors.NewInvalidSeedError(fmt.Sprintf("duplicate activity name %q", a.Name))
		}
		names[a.Name] = true

		if a.MaxParticipants < 1 {
			return apperrors.NewInvalidSeedError(fmt.Sprintf("%s: max participants must be positive, got %d", a.Name, a.MaxParticipants))
		}
		if len(a.Participants) > a.MaxParticipants {
			return apperrors.NewInvalidSeedError(fmt.Sprintf("%s: %d participants exceed capacity %d", a.Name, len(a.Participants), a.MaxParticipants))
		}

		emails := make(map[string]bool, len(a.Participants))
		for _, email := range a.Participants {
			if emails[email] {
				return apperrors.NewInvalidSeedError(fmt.Sprintf("%s: duplicate participant %s", a.Name, email))
			}
			emails[email] = true
		}
	}
	return nil
}
