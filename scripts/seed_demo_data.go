package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"torgplus/server/internal/config"
	"torgplus/server/internal/database"
	"torgplus/server/internal/models"
)

// Сидер демо-данных для локальной разработки
// Наполняет обе торговые точки товарами, покупателями и расходами,
// документы продаж/приходов дальше создаются через API
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ .env файл не найден, используем переменные окружения системы")
	}

	cfg := config.Load()
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ PostgreSQL connection failed: %v", err)
	}
	defer database.ClosePostgres(db)

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	seedItems(db)
	seedCustomers(db)
	seedExpenses(db)
	log.Println("✅ Демо-данные загружены")
}

func seedItems(db *gorm.DB) {
	items := []models.Item{
		{Name: "Кабель UTP cat5e (бухта 305м)", Unit: "pcs", SalePrice: dec("4500"), CostPrice: dec("3200"), Stock: 120, BusinessUnit: models.UnitRetail},
		{Name: "Коннектор RJ45 (уп. 100шт)", Unit: "box", SalePrice: dec("350"), CostPrice: dec("180"), Stock: 300, BusinessUnit: models.UnitRetail},
		{Name: "Патч-панель 24 порта", Unit: "pcs", SalePrice: dec("1800"), CostPrice: dec("1100"), Stock: 45, BusinessUnit: models.UnitRetail},
		{Name: "Кабель UTP cat6 (паллета)", Unit: "pcs", SalePrice: dec("98000"), CostPrice: dec("71000"), Stock: 18, BusinessUnit: models.UnitWholesale},
		{Name: "Шкаф серверный 42U", Unit: "pcs", SalePrice: dec("56000"), CostPrice: dec("39000"), Stock: 7, BusinessUnit: models.UnitWholesale},
	}
	for _, item := range items {
		var existing models.Item
		err := db.Where("name = ? AND business_unit = ?", item.Name, item.BusinessUnit).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&item).Error; err != nil {
				log.Printf("⚠️ Товар %q: %v", item.Name, err)
			}
		}
	}
	log.Println("📦 Товары загружены")
}

func seedCustomers(db *gorm.DB) {
	customers := []models.Customer{
		{Name: "ООО Вектор", Address: "ул. Ленина 15", Phone: "+7 900 111-22-33", BusinessUnit: models.UnitRetail},
		{Name: "ИП Смирнов", Address: "пр. Мира 8", Phone: "+7 900 222-33-44", BusinessUnit: models.UnitRetail},
		{Name: "АО СтройМонтаж", Address: "ул. Заводская 2", Phone: "+7 900 333-44-55", BusinessUnit: models.UnitWholesale},
	}
	for _, customer := range customers {
		var existing models.Customer
		err := db.Where("name = ? AND business_unit = ?", customer.Name, customer.BusinessUnit).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&customer).Error; err != nil {
				log.Printf("⚠️ Покупатель %q: %v", customer.Name, err)
			}
		}
	}
	log.Println("👥 Покупатели загружены")
}

func seedExpenses(db *gorm.DB) {
	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	expenses := []models.ExpenseEntry{
		{Date: firstOfMonth.AddDate(0, 0, 2), Description: "Аренда склада", Quantity: 1, UnitPrice: dec("25000"), Total: dec("25000"), BusinessUnit: models.UnitRetail},
		{Date: firstOfMonth.AddDate(0, 0, 5), Description: "Топливо доставки", Quantity: 1, UnitPrice: dec("4200"), Total: dec("4200"), BusinessUnit: models.UnitRetail},
		{Date: firstOfMonth.AddDate(0, 0, 3), Description: "Аренда склада", Quantity: 1, UnitPrice: dec("60000"), Total: dec("60000"), BusinessUnit: models.UnitWholesale},
	}
	for _, expense := range expenses {
		var count int64
		db.Model(&models.ExpenseEntry{}).
			Where("description = ? AND date = ? AND business_unit = ?", expense.Description, expense.Date, expense.BusinessUnit).
			Count(&count)
		if count == 0 {
			if err := db.Create(&expense).Error; err != nil {
				log.Printf("⚠️ Расход %q: %v", expense.Description, err)
			}
		}
	}
	log.Println("🧾 Расходы загружены")
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
