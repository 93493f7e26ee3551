// cmd/tools/seed-tool/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"activities-api/internal/registry"
)

var seedPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	removeCmd := flag.NewFlagSet("remove", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)

	// Add command flags
	nameAdd := addCmd.String("name", "", "Activity name (e.g., Chess Club)")
	description := addCmd.String("description", "", "Description")
	schedule := addCmd.String("schedule", "", "Schedule (e.g., Fridays, 3:30 PM - 5:00 PM)")
	maxParticipants := addCmd.Int("max", 0, "Maximum number of participants")
	addCmd.StringVar(&seedPath, "path", "configs/activities-seed.json", "Path to seed file")

	// Update command flags
	nameUpdate := updateCmd.String("name", "", "Activity name to update")
	field := updateCmd.String("field", "", "Field to update (description, schedule, max)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&seedPath, "path", "configs/activities-seed.json", "Path to seed file")

	// Remove command flags
	nameRemove := removeCmd.String("name", "", "Activity name to remove")
	removeCmd.StringVar(&seedPath, "path", "configs/activities-seed.json", "Path to seed file")

	// Validate command flags
	validateCmd.StringVar(&seedPath, "path", "configs/activities-seed.json", "Path to seed file")

	// Export command flags
	exportCmd.StringVar(&seedPath, "path", "configs/activities-seed.json", "Path to seed file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *nameAdd == "" || *description == "" || *schedule == "" || *maxParticipants <= 0 {
			fmt.Println("Error: name, description, schedule, and a positive max are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		err := addActivity(*nameAdd, registry.Activity{
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    []string{},
		})
		if err != nil {
			fmt.Printf("Error adding activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added activity: %s\n", *nameAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: name, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err := updateActivity(*nameUpdate, *field, *value)
		if err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *nameUpdate, *field, *value)

	case "remove":
		removeCmd.Parse(os.Args[2:])
		if *nameRemove == "" {
			fmt.Println("Error: name is required for remove.")
			removeCmd.Usage()
			os.Exit(1)
		}
		err := removeActivity(*nameRemove)
		if err != nil {
			fmt.Printf("Error removing activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed activity: %s\n", *nameRemove)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		seed, err := registry.LoadSeedFile(seedPath)
		if err != nil {
			fmt.Printf("Seed validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seed validation passed (%d activities).\n", len(seed))

	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := registry.SaveSeedFile(seedPath, registry.DefaultSeed()); err != nil {
			fmt.Printf("Error exporting default seed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default seed to %s\n", seedPath)

	case "help":
		fallthrough
	default:
		help()
	}
}

func addActivity(name string, activity registry.Activity) error {
	seed, err := loadOrEmpty()
	if err != nil {
		return err
	}

	if _, exists := seed[name]; exists {
		return fmt.Errorf("activity %q already exists", name)
	}

	seed[name] = activity
	return registry.SaveSeedFile(seedPath, seed)
}

func updateActivity(name, field, value string) error {
	seed, err := registry.LoadSeedFile(seedPath)
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}

	activity, found := seed[name]
	if !found {
		return fmt.Errorf("activity %q not found", name)
	}

	switch field {
	case "description":
		activity.Description = value
	case "schedule":
		activity.Schedule = value
	case "max":
		var max int
		if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &max); err != nil || max <= 0 {
			return fmt.Errorf("invalid max value: %s", value)
		}
		if max < len(activity.Participants) {
			return fmt.Errorf("max %d is below the current participant count %d", max, len(activity.Participants))
		}
		activity.MaxParticipants = max
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	seed[name] = activity
	return registry.SaveSeedFile(seedPath, seed)
}

func removeActivity(name string) error {
	seed, err := registry.LoadSeedFile(seedPath)
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}

	if _, found := seed[name]; !found {
		return fmt.Errorf("activity %q not found", name)
	}

	delete(seed, name)
	if len(seed) == 0 {
		return fmt.Errorf("refusing to write an empty seed file")
	}
	return registry.SaveSeedFile(seedPath, seed)
}

func loadOrEmpty() (map[string]registry.Activity, error) {
	seed, err := registry.LoadSeedFile(seedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]registry.Activity{}, nil
		}
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}
	return seed, nil
}

func help() {
	fmt.Println(`seed-tool manages the activities seed file.

Usage:
  seed-tool add -name <name> -description <text> -schedule <text> -max <n> [-path <file>]
  seed-tool update -name <name> -field <description|schedule|max> -value <value> [-path <file>]
  seed-tool remove -name <name> [-path <file>]
  seed-tool validate [-path <file>]
  seed-tool export [-path <file>]`)
}
