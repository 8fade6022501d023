package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

var configKeyRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

type ConfigService struct {
	configs repository.ConfigRepository
}

// ConfigView is a config with its value flattened into one field.
type ConfigView struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Key         string            `json:"key"`
	Type        models.ConfigType `json:"type"`
	Description string            `json:"description"`
	Sort        int               `json:"sort"`
	IsEnabled   bool              `json:"isEnabled"`
	Value       string            `json:"value"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ConfigInput struct {
	Title       string            `json:"title"`
	Key         string            `json:"key"`
	Type        models.ConfigType `json:"type"`
	Description string            `json:"description"`
	Sort        int               `json:"sort"`
	IsEnabled   *bool             `json:"isEnabled"`
	Value       json.RawMessage   `json:"value"`
}

// ConfigUpdateInput is a partial update. Key and Type are accepted only when
// unchanged. A nil Value leaves the stored value alone.
type ConfigUpdateInput struct {
	Title       *string            `json:"title"`
	Key         *string            `json:"key"`
	Type        *models.ConfigType `json:"type"`
	Description *string            `json:"description"`
	Sort        *int               `json:"sort"`
	IsEnabled   *bool              `json:"isEnabled"`
	Value       json.RawMessage    `json:"value"`
}

func NewConfigService(configs repository.ConfigRepository) *ConfigService {
	return &ConfigService{configs: configs}
}

func (s *ConfigService) List(ctx context.Context) ([]ConfigView, error) {
	cfgs, err := s.configs.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ConfigView, 0, len(cfgs))
	for i := range cfgs {
		view, err := toConfigView(&cfgs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ConfigService) Get(ctx context.Context, id uint) (*ConfigView, error) {
	var view ConfigView
	err := cache.CacheAside(ctx, cache.ConfigKey(id), &view, cache.ConfigTTL, func() error {
		cfg, err := s.configs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		view, err = toConfigView(cfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *ConfigService) Create(ctx context.Context, in ConfigInput) (*ConfigView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Key = strings.TrimSpace(in.Key)
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Title, ozzo.Required, ozzo.RuneLength(1, 100)),
		ozzo.Field(&in.Key, ozzo.Required, ozzo.RuneLength(1, 100), ozzo.Match(configKeyRegex)),
		ozzo.Field(&in.Type, ozzo.Required, ozzo.By(validConfigType)),
	)
	if err != nil {
		return nil, validation.AsAppError(err)
	}
	value, err := DecodeValue(in.Type, in.Value)
	if err != nil {
		return nil, err
	}

	if err := s.ensureFree(ctx, "key", in.Key, 0, "Config key already exists"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, "title", in.Title, 0, "Config title already exists"); err != nil {
		return nil, err
	}

	enabled := true
	if in.IsEnabled != nil {
		enabled = *in.IsEnabled
	}
	cfg := &models.Config{
		Title:       in.Title,
		Key:         in.Key,
		Type:        in.Type,
		Description: in.Description,
		Sort:        in.Sort,
		IsEnabled:   enabled,
	}
	if err := s.configs.Create(ctx, cfg, value); err != nil {
		return nil, err
	}
	return s.load(ctx, cfg.ID)
}

func (s *ConfigService) Update(ctx context.Context, id uint, in ConfigUpdateInput) (*ConfigView, error) {
	current, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Key != nil && strings.TrimSpace(*in.Key) != current.Key {
		return nil, models.NewValidationError("key: cannot be changed after creation")
	}
	if in.Type != nil && *in.Type != current.Type {
		return nil, models.NewValidationError("type: cannot be changed after creation")
	}

	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := ozzo.Validate(title, ozzo.Required, ozzo.RuneLength(1, 100)); err != nil {
			return nil, models.NewValidationError("title: " + err.Error())
		}
		if title != current.Title {
			if err := s.ensureFree(ctx, "title", title, id, "Config title already exists"); err != nil {
				return nil, err
			}
		}
		fields["title"] = title
	}
	setString(fields, "description", in.Description)
	if in.Sort != nil {
		fields["sort"] = *in.Sort
	}
	if in.IsEnabled != nil {
		fields["is_enabled"] = *in.IsEnabled
	}

	var value *repository.ConfigValue
	if in.Value != nil {
		decoded, err := DecodeValue(current.Type, in.Value)
		if err != nil {
			return nil, err
		}
		value = &decoded
	}

	if err := s.configs.Update(ctx, id, fields, value); err != nil {
		return nil, err
	}
	cache.InvalidateConfig(ctx, id)
	return s.load(ctx, id)
}

// SetEnabled toggles isEnabled and nothing else.
func (s *ConfigService) SetEnabled(ctx context.Context, id uint, enabled bool) (*ConfigView, error) {
	if err := s.configs.SetEnabled(ctx, id, enabled); err != nil {
		return nil, err
	}
	cache.InvalidateConfig(ctx, id)
	return s.load(ctx, id)
}

func (s *ConfigService) Delete(ctx context.Context, id uint) error {
	if err := s.configs.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateConfig(ctx, id)
	return nil
}

func (s *ConfigService) load(ctx context.Context, id uint) (*ConfigView, error) {
	cfg, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := toConfigView(cfg)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *ConfigService) ensureFree(ctx context.Context, column, value string, excludeID uint, message string) error {
	taken, err := s.configs.Taken(ctx, column, value, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError(column, message)
	}
	return nil
}

func toConfigView(cfg *models.Config) (ConfigView, error) {
	value, err := EncodeValue(cfg)
	if err != nil {
		return ConfigView{}, err
	}
	return ConfigView{
		ID:          cfg.ID,
		Title:       cfg.Title,
		Key:         cfg.Key,
		Type:        cfg.Type,
		Description: cfg.Description,
		Sort:        cfg.Sort,
		IsEnabled:   cfg.IsEnabled,
		Value:       value,
		CreatedAt:   cfg.CreatedAt,
		UpdatedAt:   cfg.UpdatedAt,
	}, nil
}

func validConfigType(v any) error {
	if t, ok := v.(models.ConfigType); ok && t.Valid() {
		return nil
	}
	return ozzo.NewError("validation_config_type", "must be one of TEXT, TEXTAREA, RICH_TEXT, IMAGE, MULTI_IMAGE, MULTI_TEXT, MULTI_CONTENT")
}
