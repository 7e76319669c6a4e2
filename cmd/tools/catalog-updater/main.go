// cmd/tools/catalog-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"mergington-activities/internal/activities"
	"mergington-activities/pkg/registry"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "help":
		help()
	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	path := fs.String("path", "configs/activities.json", "Path to catalog file")
	name := fs.String("name", "", "Activity name (e.g., Robotics Club)")
	description := fs.String("description", "", "Description")
	schedule := fs.String("schedule", "", "Schedule (e.g., Mondays, 3:30 PM - 5:00 PM)")
	maxParticipants := fs.Int("max", 0, "Maximum participants")
	participants := fs.String("participants", "", "Comma-separated initial participant emails")
	fs.Parse(args)

	if *name == "" || *maxParticipants < 1 {
		fs.Usage()
		return fmt.Errorf("name and a positive max are required for add")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		reg = registry.New()
	}

	if _, exists := reg.Find(*name); exists {
		return fmt.Errorf("activity %q already exists", *name)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		Name:            *name,
		Description:     *description,
		Schedule:        *schedule,
		MaxParticipants: *maxParticipants,
		Participants:    splitEmails(*participants),
	})
	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *name)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", "configs/activities.json", "Path to catalog file")
	name := fs.String("name", "", "Activity name to update")
	field := fs.String("field", "", "Field to update (description, schedule, maxParticipants, participants)")
	value := fs.String("value", "", "New value for the field")
	fs.Parse(args)

	if *name == "" || *field == "" {
		fs.Usage()
		return fmt.Errorf("name and field are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	i, found := reg.Find(*name)
	if !found {
		return fmt.Errorf("activity %q not found", *name)
	}

	switch *field {
	case "description":
		reg.Activities[i].Description = *value
	case "schedule":
		reg.Activities[i].Schedule = *value
	case "maxParticipants":
		n, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid maxParticipants value: %w", err)
		}
		reg.Activities[i].MaxParticipants = n
	case "participants":
		reg.Activities[i].Participants = splitEmails(*value)
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *name, *field, *value)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", "configs/activities.json", "Path to catalog file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}
	fmt.Printf("Catalog validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	path := fs.String("path", "configs/activities.json", "Path to write the built-in catalog to")
	fs.Parse(args)

	if err := save(registry.FromActivities(activities.DefaultSeed()), *path); err != nil {
		return err
	}
	fmt.Printf("Exported built-in catalog to %s\n", *path)
	return nil
}

// save refuses to write a catalog the server would reject at startup.
func save(reg *registry.ActivityRegistry, path string) error {
	if err := activities.ValidateSeed(reg.ToActivities()); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return registry.Save(reg, path)
}

func splitEmails(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if email := strings.TrimSpace(part); email != "" {
			out = append(out, email)
		}
	}
	return out
}

func help() {
	fmt.Print(`
Usage: catalog-updater <command> [flags]

Commands:
  add      Add a new activity to the catalog
  update   Update an existing activity's field
  validate Validate the catalog file
  export   Write the built-in activities to a catalog file
  help     Show this help message

Examples:
  catalog-updater export -path configs/activities.json
  catalog-updater add -name "Robotics Club" -description "Build robots" -schedule "Mondays, 3:30 PM - 5:00 PM" -max 10
  catalog-updater update -name "Robotics Club" -field maxParticipants -value 12
  catalog-updater validate -path configs/activities.json

Use 'catalog-updater <command> -h' for more information about a command.
` + "\n")
}
