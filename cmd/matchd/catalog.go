package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the skill catalog",
}

var catalogDir string

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configured catalog and report any problems",
	Long:  "Loads the skill catalog from the configured source (CSV directory or JSON file), prints a summary, and exits non-zero if the catalog cannot be loaded.",
	RunE:  runCatalogValidate,
}

func init() {
	catalogValidateCmd.Flags().StringVarP(&catalogDir, "dir", "d", "", "Catalog directory (overrides config)")
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if catalogDir != "" {
		cfg.CatalogDir = catalogDir
		cfg.CatalogJSON = ""
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	source := cfg.CatalogDir
	if cfg.CatalogJSON != "" {
		source = cfg.CatalogJSON
	}
	fmt.Printf("Catalog: %s\n", source)
	fmt.Printf("Skills: %d\n", cat.Len())

	variants := 0
	for _, name := range cat.Names() {
		variants += len(cat.Variants(name))
	}
	fmt.Printf("Variants (names + synonyms): %d\n", variants)

	if warnings := cat.Warnings(); len(warnings) > 0 {
		fmt.Printf("Warnings: %d\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "  - %s\n", w)
		}
	} else {
		fmt.Println("Warnings: none")
	}
	return nil
}
