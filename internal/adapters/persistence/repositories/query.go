package repositories

import (
	"strconv"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/pagination"

	"gorm.io/gorm"
)

// subquery starts a fresh statement on the same connection for use inside
// a Where clause.
func subquery(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true})
}

// scopeUsers restricts a users query to the part of the hierarchy a scope covers
func scopeUsers(scope domain.Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if col := userScopeColumn(scope.Level); col != "" {
			return db.Where("users."+col+" = ?", scope.ID)
		}
		return db
	}
}

// scopeReports restricts a reports query to reports owned by users in scope
func scopeReports(scope domain.Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch scope.Level {
		case domain.ScopeGlobal:
			return db
		case domain.ScopeOwn:
			return db.Where("reports.user_id = ?", scope.ID)
		}
		owners := subquery(db).Model(&models.User{}).
			Select("id").
			Where(userScopeColumn(scope.Level)+" = ?", scope.ID)
		return db.Where("reports.user_id IN (?)", owners)
	}
}

func userScopeColumn(level domain.ScopeLevel) string {
	switch level {
	case domain.ScopeRegion:
		return "region_id"
	case domain.ScopeZone:
		return "zone_id"
	case domain.ScopeSubzone:
		return "subzone_id"
	case domain.ScopeFellowship:
		return "fellowship_id"
	case domain.ScopeOwn:
		return "id"
	}
	return ""
}

// fellowshipRefs matches fellowship ids by name, or by id when ref is numeric
func fellowshipRefs(db *gorm.DB, ref string) *gorm.DB {
	q := subquery(db).Model(&models.Fellowship{}).Select("id")
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return q.Where("id = ? OR name = ?", id, ref)
	}
	return q.Where("name = ?", ref)
}

// textColumn casts a numeric column so it can be matched with LIKE
func textColumn(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return column + "::text"
	}
	return "CAST(" + column + " AS CHAR)"
}

// page applies stable ordering and the limit/offset window. Ordering by
// primary key keeps consecutive pages disjoint.
func page(table string, params *pagination.Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC").Offset(params.Offset).Limit(params.Limit)
	}
}

// deleteByID deletes one row and reports gorm.ErrRecordNotFound when none matched
func deleteByID(db *gorm.DB, model interface{}, id uint) error {
	result := db.Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// exists counts rows matching the query, skipping excludeID when non-zero
func exists(db *gorm.DB, model interface{}, excludeID uint, query string, args ...interface{}) (bool, error) {
	var count int64
	q := db.Model(model).Where(query, args...)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// replaceUserSets rewrites the many2many join rows of owner for each set.
func replaceUserSets(tx *gorm.DB, owner interface{}, sets UserSets) error {
	for name, users := range sets {
		assoc := tx.Model(owner).Association(name)
		var err error
		if len(users) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(users)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// clearUserSets removes every join row of owner for the named sets.
func clearUserSets(tx *gorm.DB, owner interface{}, names ...string) error {
	for _, name := range names {
		if err := tx.Model(owner).Association(name).Clear(); err != nil {
			return err
		}
	}
	return nil
}

func orderUsers(db *gorm.DB) *gorm.DB {
	return db.Order("users.id ASC")
}
