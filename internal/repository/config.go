package repository

import (
	"context"
	"fmt"

	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigValue is the decoded value of a Config, populated for exactly one
// family of types.
type ConfigValue struct {
	// Text holds TEXT, TEXTAREA, RICH_TEXT values and the IMAGE URL.
	Text     string
	Images   []models.ConfigMultiImageValue
	Texts    []models.ConfigMultiTextValue
	Contents []models.ConfigMultiContentValue
}

// ConfigRepository persists configs together with their satellite value rows.
type ConfigRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Config, error)
	List(ctx context.Context) ([]models.Config, error)
	Taken(ctx context.Context, column, value string, excludeID uint) (bool, error)
	// Create inserts the config and its value in one transaction.
	Create(ctx context.Context, cfg *models.Config, value ConfigValue) error
	// Update applies fields and, when value is non-nil, rewrites the value,
	// all in one transaction.
	Update(ctx context.Context, id uint, fields map[string]any, value *ConfigValue) error
	SetEnabled(ctx context.Context, id uint, enabled bool) error
	Delete(ctx context.Context, id uint) error
}

type configRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewConfigRepository returns a new ConfigRepository implementation.
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db, log: observability.NewRepoLogger("configs")}
}

func withValues(db *gorm.DB) *gorm.DB {
	bySort := func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC").Order("id ASC") }
	return db.
		Preload("TextValue").
		Preload("ImageValue").
		Preload("MultiImageValues", bySort).
		Preload("MultiTextValues", bySort).
		Preload("MultiContentValues", bySort)
}

func (r *configRepository) GetByID(ctx context.Context, id uint) (*models.Config, error) {
	var cfg models.Config
	if err := withValues(r.db.WithContext(ctx)).First(&cfg, id).Error; err != nil {
		return nil, notFoundOr(err, "Config", id)
	}
	return &cfg, nil
}

func (r *configRepository) List(ctx context.Context) ([]models.Config, error) {
	var cfgs []models.Config
	if err := withValues(r.db.WithContext(ctx)).Order("sort ASC").Order("id ASC").Find(&cfgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return cfgs, nil
}

func (r *configRepository) Taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	if column != "key" && column != "title" {
		return false, models.NewInternalError(fmt.Errorf("column %q is not unique on configs", column))
	}
	q := r.db.WithContext(ctx).Model(&models.Config{}).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *configRepository) Create(ctx context.Context, cfg *models.Config, value ConfigValue) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "configs")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("create", "configs")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(cfg).Error; err != nil {
			return err
		}
		return writeValue(tx, cfg.ID, cfg.Type, value)
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return writeError(err, "key", "Config key or title already exists")
	}
	r.log.LogWrite(ctx, "create", "id", cfg.ID, "type", string(cfg.Type))
	observability.ConfigWrites.WithLabelValues(string(cfg.Type)).Inc()
	return nil
}

func (r *configRepository) Update(ctx context.Context, id uint, fields map[string]any, value *ConfigValue) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Update", "configs")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("update", "configs")()

	var cfgType models.ConfigType
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := lockConfig(tx, id)
		if err != nil {
			return err
		}
		cfgType = cfg.Type
		if len(fields) > 0 {
			if err := tx.Model(&models.Config{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}
		if value == nil {
			return nil
		}
		return writeValue(tx, id, cfg.Type, *value)
	})
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return writeError(err, "title", "Config key or title already exists")
	}
	r.log.LogWrite(ctx, "update", "id", id)
	if value != nil {
		observability.ConfigWrites.WithLabelValues(string(cfgType)).Inc()
	}
	return nil
}

func (r *configRepository) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	res := r.db.WithContext(ctx).Model(&models.Config{}).Where("id = ?", id).Update("is_enabled", enabled)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Config", id)
	}
	r.log.LogWrite(ctx, "set_enabled", "id", id, "enabled", enabled)
	return nil
}

// Delete removes the config with every satellite row.
func (r *configRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockConfig(tx, id); err != nil {
			return err
		}
		for _, satellite := range []any{
			&models.ConfigTextValue{},
			&models.ConfigImageValue{},
			&models.ConfigMultiImageValue{},
			&models.ConfigMultiTextValue{},
			&models.ConfigMultiContentValue{},
		} {
			if err := tx.Where("config_id = ?", id).Delete(satellite).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Config{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Config", id)
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return writeError(err, "", "")
	}
	r.log.LogWrite(ctx, "delete", "id", id)
	return nil
}

// lockConfig reads the config row FOR UPDATE so concurrent value rewrites
// of the same config run one after the other.
func lockConfig(tx *gorm.DB, id uint) (*models.Config, error) {
	var cfg models.Config
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "type").First(&cfg, id).Error; err != nil {
		return nil, notFoundOr(err, "Config", id)
	}
	return &cfg, nil
}

// writeValue stores value in the satellite table selected by t. Singular
// types upsert their one row; multi types replace every row.
func writeValue(tx *gorm.DB, configID uint, t models.ConfigType, value ConfigValue) error {
	switch t {
	case models.ConfigTypeText, models.ConfigTypeTextarea, models.ConfigTypeRichText:
		row := models.ConfigTextValue{ConfigID: configID, Value: value.Text}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&row).Error

	case models.ConfigTypeImage:
		row := models.ConfigImageValue{ConfigID: configID, URL: value.Text}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"url", "updated_at"}),
		}).Create(&row).Error

	case models.ConfigTypeMultiImage:
		if err := tx.Where("config_id = ?", configID).Delete(&models.ConfigMultiImageValue{}).Error; err != nil {
			return err
		}
		rows := value.Images
		for i := range rows {
			rows[i].ID = 0
			rows[i].ConfigID = configID
			rows[i].Sort = i
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error

	case models.ConfigTypeMultiText:
		if err := tx.Where("config_id = ?", configID).Delete(&models.ConfigMultiTextValue{}).Error; err != nil {
			return err
		}
		rows := value.Texts
		for i := range rows {
			rows[i].ID = 0
			rows[i].ConfigID = configID
			rows[i].Sort = i
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error

	case models.ConfigTypeMultiContent:
		if err := tx.Where("config_id = ?", configID).Delete(&models.ConfigMultiContentValue{}).Error; err != nil {
			return err
		}
		rows := value.Contents
		for i := range rows {
			rows[i].ID = 0
			rows[i].ConfigID = configID
			rows[i].Sort = i
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	}
	return models.NewValidationError(fmt.Sprintf("unsupported config type %q", t))
}
