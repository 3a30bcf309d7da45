// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"match-engine/pkg/registry"
)

const defaultPath = "configs/activity-registry.json"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportPath := exportCmd.String("path", defaultPath, "Path to write the registry file")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		reg := registry.Catalog()
		if err := registry.Save(reg, *exportPath, time.Now()); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), *exportPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(*validatePath); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

// validateRegistry checks the file on its own and against the job types the
// engine serves.
func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	missing, unknown := reg.Drift(registry.Catalog())
	if len(missing) > 0 {
		return fmt.Errorf("registry is missing served task types: %v", missing)
	}
	if len(unknown) > 0 {
		return fmt.Errorf("registry lists task types no worker serves: %v", unknown)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  export   Write the catalog of served job types to a registry file
  validate Check a registry file against the served job types
  help     Show this help message

Examples:
  registry-updater export -path configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json`)
}
