package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const (
	publicationsSheet = "Publications"
	customersSheet    = "Customers"
)

type seedPublication struct {
	Category    string  `yaml:"category"`
	Title       string  `yaml:"title"`
	Publisher   string  `yaml:"publisher"`
	PublishType string  `yaml:"publish_type"`
	Price       float64 `yaml:"price"`
	Stock       int     `yaml:"stock"`
}

type seedCustomer struct {
	Name         string `yaml:"name"`
	Address      string `yaml:"address"`
	ContactNo    string `yaml:"contact_no"`
	CustomerType string `yaml:"customer_type"`
}

type seedData struct {
	Publications []seedPublication `yaml:"publications"`
	Customers    []seedCustomer    `yaml:"customers"`
}

func readYAML(path string) (*seedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var data seedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return &data, nil
}

// readXLSX reads the Publications sheet (category, title, publisher,
// publish type, price, stock) and the Customers sheet (name, address,
// contact no, customer type). The first row of each sheet is a header.
// A missing sheet is treated as empty.
func readXLSX(path string) (*seedData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	var data seedData

	pubRows, err := sheetRows(f, publicationsSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range pubRows {
		price, err := parseNumber(cell(row, 4))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid price %q", publicationsSheet, i+2, cell(row, 4))
		}
		stock := 0
		if s := cell(row, 5); s != "" {
			if stock, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("%s row %d: invalid stock %q", publicationsSheet, i+2, s)
			}
		}
		data.Publications = append(data.Publications, seedPublication{
			Category:    cell(row, 0),
			Title:       cell(row, 1),
			Publisher:   cell(row, 2),
			PublishType: cell(row, 3),
			Price:       price,
			Stock:       stock,
		})
	}

	customerRows, err := sheetRows(f, customersSheet)
	if err != nil {
		return nil, err
	}
	for _, row := range customerRows {
		data.Customers = append(data.Customers, seedCustomer{
			Name:         cell(row, 0),
			Address:      cell(row, 1),
			ContactNo:    cell(row, 2),
			CustomerType: cell(row, 3),
		})
	}

	return &data, nil
}

// sheetRows returns the data rows of a sheet without its header.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

type importSummary struct {
	Publications        int
	SkippedPublications int
	Customers           int
	SkippedCustomers    int
}

type importer struct {
	publicationRepo repository.PublicationRepository
	stockRepo       repository.StockRepository
	customerRepo    repository.CustomerRepository
}

func newImporter(
	publicationRepo repository.PublicationRepository,
	stockRepo repository.StockRepository,
	customerRepo repository.CustomerRepository,
) *importer {
	return &importer{
		publicationRepo: publicationRepo,
		stockRepo:       stockRepo,
		customerRepo:    customerRepo,
	}
}

// Import writes every valid record. Invalid records are logged and
// skipped; a storage error stops the import.
func (im *importer) Import(ctx context.Context, data *seedData) (*importSummary, error) {
	var summary importSummary

	for i, p := range data.Publications {
		pub, ok := p.toModel()
		if !ok {
			logger.Warn("Skipping invalid publication", map[string]interface{}{
				"index": i,
				"title": p.Title,
			})
			summary.SkippedPublications++
			continue
		}
		if err := im.publicationRepo.Create(ctx, &pub); err != nil {
			return &summary, fmt.Errorf("failed to create publication %q: %w", pub.Title, err)
		}
		if p.Stock > 0 {
			if err := im.stockRepo.SetQuantity(ctx, pub.ID, p.Stock); err != nil {
				return &summary, fmt.Errorf("failed to set stock for %q: %w", pub.Title, err)
			}
		}
		summary.Publications++
	}

	for i, c := range data.Customers {
		customer, ok := c.toModel()
		if !ok {
			logger.Warn("Skipping invalid customer", map[string]interface{}{
				"index": i,
				"name":  c.Name,
			})
			summary.SkippedCustomers++
			continue
		}
		if err := im.customerRepo.Create(ctx, &customer); err != nil {
			return &summary, fmt.Errorf("failed to create customer %q: %w", customer.Name, err)
		}
		summary.Customers++
	}

	logger.Info("Seed import finished", map[string]interface{}{
		"publications":         summary.Publications,
		"skipped_publications": summary.SkippedPublications,
		"customers":            summary.Customers,
		"skipped_customers":    summary.SkippedCustomers,
	})
	return &summary, nil
}

func (p seedPublication) toModel() (model.Publication, bool) {
	category := model.PublicationCategory(strings.TrimSpace(p.Category))
	if category == "" {
		category = model.CategoryOther
	}
	switch category {
	case model.CategoryNewspaper, model.CategoryMagazine, model.CategoryBook, model.CategoryOther:
	default:
		return model.Publication{}, false
	}

	title := strings.TrimSpace(p.Title)
	if title == "" || p.Price < 0 || p.Stock < 0 {
		return model.Publication{}, false
	}
	return model.Publication{
		Category:    category,
		Title:       title,
		Publisher:   strings.TrimSpace(p.Publisher),
		PublishType: strings.TrimSpace(p.PublishType),
		Price:       p.Price,
	}, true
}

func (c seedCustomer) toModel() (model.Customer, bool) {
	customerType := model.CustomerType(strings.TrimSpace(c.CustomerType))
	if customerType == "" {
		customerType = model.CustomerPrepaid
	}
	name := strings.TrimSpace(c.Name)
	if name == "" || !customerType.Valid() {
		return model.Customer{}, false
	}
	return model.Customer{
		Name:         name,
		Address:      strings.TrimSpace(c.Address),
		ContactNo:    strings.TrimSpace(c.ContactNo),
		CustomerType: customerType,
	}, true
}
