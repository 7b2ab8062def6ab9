package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rowLock добавляет SELECT ... FOR UPDATE там, где диалект это умеет
// sqlite блокировок строк не знает и сериализует писателей на уровне файла,
// поэтому для него клауза не добавляется вовсе
func rowLock(tx *gorm.DB, tables ...string) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	locking := clause.Locking{Strength: "UPDATE"}
	if len(tables) > 0 {
		locking.Table = clause.Table{Name: tables[0]}
	}
	return tx.Clauses(locking)
}
