package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ratewise/ratewise-backend/config"
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/internal/db"
	"github.com/ratewise/ratewise-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Expected sheet layout (first row is the header):
// name | description | address | city | state | zip_code | phone | email | website | category
const minColumns = 10

const seedOwnerEmail = "imports@ratewise.local"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())

	owner, err := ensureImportOwner(userRepo)
	if err != nil {
		log.Fatal("Failed to prepare import owner account:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	stores, err := readStoresFromXLSX(filePath, owner.ID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total stores to import: %d\n", len(stores))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := storeRepo.BulkCreate(stores, batchSize); err != nil {
		log.Fatal("Failed to bulk create stores:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total stores imported: %d\n", len(stores))
}

// ensureImportOwner finds or creates the store_owner account that
// imported stores are attached to.
func ensureImportOwner(userRepo repository.UserRepository) (*model.User, error) {
	owner, err := userRepo.FindByEmail(seedOwnerEmail)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(randomPassword())
	if err != nil {
		return nil, err
	}

	owner = &model.User{
		Email:        seedOwnerEmail,
		PasswordHash: hash,
		FirstName:    "RateWise",
		LastName:     "Imports",
		Role:         model.RoleStoreOwner,
		Status:       model.StatusActive,
	}
	if err := userRepo.Create(owner); err != nil {
		return nil, err
	}

	fmt.Printf("Created import owner account: %s\n", seedOwnerEmail)
	return owner, nil
}

func randomPassword() string {
	// The import account is never logged into, but it is reachable
	// through the public login endpoint, so the throwaway password
	// must actually be unguessable.
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate import account password: %v", err)
	}
	return hex.EncodeToString(buf)
}

func readStoresFromXLSX(filePath string, ownerID uint) ([]model.Store, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var stores []model.Store
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < minColumns {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		city := strings.TrimSpace(row[3])
		category := strings.TrimSpace(row[9])
		if name == "" || city == "" || category == "" {
			skippedCount++
			continue
		}

		// Same name in the same city is treated as a duplicate row
		dedupeKey := strings.ToLower(name) + "|" + strings.ToLower(city)
		if seen[dedupeKey] {
			skippedCount++
			continue
		}
		seen[dedupeKey] = true

		stores = append(stores, model.Store{
			OwnerID:     ownerID,
			Name:        name,
			Description: strings.TrimSpace(row[1]),
			Address:     strings.TrimSpace(row[2]),
			City:        city,
			State:       strings.TrimSpace(row[4]),
			ZipCode:     strings.TrimSpace(row[5]),
			Phone:       strings.TrimSpace(row[6]),
			Email:       strings.TrimSpace(row[7]),
			Website:     strings.TrimSpace(row[8]),
			Category:    category,
			Status:      model.StatusActive,
		})
	}

	if skippedCount > 0 {
		fmt.Printf("Skipped %d rows (missing fields or duplicates)\n", skippedCount)
	}

	return stores, nil
}
