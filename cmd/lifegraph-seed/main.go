// Command lifegraph-seed loads a relationship type catalog into the database.
// With no arguments it applies the built-in default catalog; pass -file to
// seed a custom one. Seeding is an upsert keyed on name, so re-running is
// safe and existing type IDs are preserved.
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/scrypster/lifegraph/internal/config"
	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/internal/storage/postgres"
	"github.com/scrypster/lifegraph/internal/storage/sqlite"
	"github.com/scrypster/lifegraph/pkg/types"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// catalogFile is the YAML shape of a seed catalog.
type catalogFile struct {
	Types []catalogEntry `yaml:"types"`
}

type catalogEntry struct {
	Name              string `yaml:"name"`
	InverseName       string `yaml:"inverse_name"`
	Category          string `yaml:"category"`
	Symmetric         bool   `yaml:"symmetric"`
	AutoCreateInverse bool   `yaml:"auto_create_inverse"`
}

func main() {
	file := flag.String("file", "", "Path to a catalog YAML file (default: built-in catalog)")
	envFile := flag.String("env", ".env", "Path to .env file (optional)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	raw := defaultCatalog
	if *file != "" {
		raw, err = os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read catalog: %v", err)
		}
	}

	seed, err := parseCatalog(raw)
	if err != nil {
		log.Fatalf("Failed to parse catalog: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	if err := store.SeedTypes(context.Background(), seed); err != nil {
		log.Fatalf("Failed to seed relationship types: %v", err)
	}
	log.Printf("Seeded %d relationship types", len(seed))
}

func parseCatalog(raw []byte) ([]types.RelationshipType, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}
	if len(file.Types) == 0 {
		return nil, fmt.Errorf("catalog contains no types")
	}

	seed := make([]types.RelationshipType, 0, len(file.Types))
	names := make(map[string]bool, len(file.Types))
	for _, entry := range file.Types {
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog entry is missing a name")
		}
		if names[entry.Name] {
			return nil, fmt.Errorf("catalog lists %q twice", entry.Name)
		}
		names[entry.Name] = true

		seed = append(seed, types.RelationshipType{
			ID:                types.NewRelationshipTypeID(),
			Name:              entry.Name,
			InverseName:       entry.InverseName,
			Category:          entry.Category,
			IsSymmetric:       entry.Symmetric,
			AutoCreateInverse: entry.AutoCreateInverse,
		})
	}
	return seed, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Engine {
	case "postgres":
		return postgres.New(cfg.Storage.PostgresDSN)
	default:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, err
		}
		return sqlite.New(cfg.Storage.DataPath + "/lifegraph.db")
	}
}
