package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/logger"
)

func main() {
	assumeYes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed [-y] <file.xlsx|file.yaml>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	data, err := readSeedFile(filePath)
	if err != nil {
		logger.Fatal("Failed to read seed file", err, map[string]interface{}{
			"path": filePath,
		})
	}

	fmt.Printf("Publications to import: %d\n", len(data.Publications))
	fmt.Printf("Customers to import:    %d\n", len(data.Customers))

	if !*assumeYes && !confirm("Do you want to proceed with the import? (yes/no): ") {
		fmt.Println("Import cancelled.")
		return
	}

	conn, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close(conn)

	if err := db.Migrate(conn, cfg.Admin); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	importer := newImporter(
		repository.NewPublicationRepository(conn),
		repository.NewStockRepository(conn),
		repository.NewCustomerRepository(conn),
	)
	summary, err := importer.Import(context.Background(), data)
	if err != nil {
		logger.Fatal("Import failed", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Publications: %d imported, %d skipped\n", summary.Publications, summary.SkippedPublications)
	fmt.Printf("Customers:    %d imported, %d skipped\n", summary.Customers, summary.SkippedCustomers)
}

// readSeedFile picks the reader by extension.
func readSeedFile(path string) (*seedData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".yaml", ".yml":
		return readYAML(path)
	}
	return nil, fmt.Errorf("unsupported seed file %q: want .xlsx or .yaml", path)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
