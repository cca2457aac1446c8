// Package main provides the CLI entrypoint for gapi.
//
// gapi maintains generated data models for API responses:
//   - Accumulates response fixtures into a schema per entity
//   - Regenerates model source text whenever the schema widens
//   - Applies YAML-declared customizations to the generated text
//   - Prunes fixtures that no longer affect the schema
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ryn-cx/gapi"
)

func main() {
	_ = godotenv.Load()

	root := flag.String("root", envOr("GAPI_ROOT", "."), "artifact root directory")
	custom := flag.String("customizations", "", "YAML customization file")
	flag.Parse()

	if err := run(*root, *custom, flag.Args()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(root, customPath string, args []string) error {
	if len(args) == 0 {
		return usageError()
	}

	client := gapi.NewClient(root, gapi.DefaultConfig())

	switch cmd := args[0]; cmd {
	case "generate":
		if len(args) != 2 {
			return fmt.Errorf("usage: gapi generate <entity>")
		}

		entity := args[1]

		if customPath != "" {
			custom, err := gapi.LoadCustomizationsFile(customPath)
			if err != nil {
				return err
			}

			client.SetCustomizations(entity, custom)
		}

		if _, err := client.UpdateModel(entity); err != nil {
			return err
		}

		fmt.Println("wrote", client.SchemaPath(entity))
		fmt.Println("wrote", client.ModelPath(entity))

		return nil
	case "minimize":
		if len(args) != 2 {
			return fmt.Errorf("usage: gapi minimize <entity>")
		}

		return client.Minimize(args[1])
	default:
		return usageError()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func usageError() error {
	return fmt.Errorf("usage: gapi [-root dir] [-customizations file] generate|minimize <entity>")
}
