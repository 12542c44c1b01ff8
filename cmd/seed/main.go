package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/stmiyata/seibi-backend/config"
	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/db"
)

// 拠点と顧客のマスタをXLSXから取り込む。
// シート1: 拠点 (ID, 名称, 住所, 電話, メール, 通知先ユーザーID)
// シート2: 顧客 (ユーザー名, 表示名, 拠点ID, 初期パスワード)
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

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	locations, customers, err := readMasterFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Locations to import: %d\n", len(locations))
	fmt.Printf("Customers to import: %d\n", len(customers))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	locationRepo := repository.NewLocationRepository(db.GetDB())
	userRepo := repository.NewUserRepository(db.GetDB())

	imported := 0
	for i := range locations {
		if _, err := locationRepo.FindByID(locations[i].ID); err == nil {
			fmt.Printf("  Skipping existing location: %s\n", locations[i].ID)
			continue
		}
		if err := locationRepo.Create(&locations[i]); err != nil {
			log.Fatal("Failed to create location:", err)
		}
		imported++
	}
	fmt.Printf("Locations imported: %d\n", imported)

	imported = 0
	for i := range customers {
		if _, err := userRepo.FindByUsername(customers[i].Username); err == nil {
			fmt.Printf("  Skipping existing user: %s\n", customers[i].Username)
			continue
		}
		if err := userRepo.Create(&customers[i]); err != nil {
			log.Fatal("Failed to create user:", err)
		}
		imported++
	}
	fmt.Printf("Customers imported: %d\n", imported)

	fmt.Println("Import completed successfully!")
}

func readMasterFromXLSX(filePath string) ([]model.Location, []model.User, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	locations, err := readLocations(f)
	if err != nil {
		return nil, nil, err
	}

	customers, err := readCustomers(f)
	if err != nil {
		return nil, nil, err
	}

	return locations, customers, nil
}

func readLocations(f *excelize.File) ([]model.Location, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading location sheet: %s\n", sheetName)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var locations []model.Location
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			// ヘッダー行
			continue
		}
		if len(row) < 2 {
			skipped++
			continue
		}

		id := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		if id == "" || name == "" {
			skipped++
			continue
		}

		location := model.Location{
			ID:       id,
			Name:     name,
			IsActive: true,
		}
		if len(row) > 2 {
			location.Address = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			location.Phone = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			location.Email = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			location.NotifyUserID = strings.TrimSpace(row[5])
		}

		locations = append(locations, location)
	}

	if skipped > 0 {
		fmt.Printf("  Skipped %d invalid location rows\n", skipped)
	}
	return locations, nil
}

func readCustomers(f *excelize.File) ([]model.User, error) {
	sheetName := f.GetSheetName(1)
	if sheetName == "" {
		fmt.Println("No customer sheet, importing locations only")
		return nil, nil
	}

	fmt.Printf("Reading customer sheet: %s\n", sheetName)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var customers []model.User
	seen := make(map[string]bool)
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			skipped++
			continue
		}

		username := strings.TrimSpace(row[0])
		displayName := strings.TrimSpace(row[1])
		locationID := strings.TrimSpace(row[2])
		if username == "" || displayName == "" || locationID == "" {
			skipped++
			continue
		}
		if seen[username] {
			skipped++
			continue
		}
		seen[username] = true

		// 初期パスワード列が無い行はユーザー名をそのまま使う（初回ログインで変更させる）
		password := username
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			password = strings.TrimSpace(row[3])
		}

		customers = append(customers, model.User{
			Username:    username,
			Password:    password, // モデルフックでハッシュ化される
			Role:        model.RoleCustomer,
			DisplayName: displayName,
			LocationID:  &locationID,
		})
	}

	if skipped > 0 {
		fmt.Printf("  Skipped %d invalid customer rows\n", skipped)
	}
	return customers, nil
}
