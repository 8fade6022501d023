package service

import (
	"context"
	"strings"
	"time"

	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type WikiService struct {
	wikis repository.WikiRepository
	now   func() time.Time
}

// WikiInput is the full set of fields accepted on create.
type WikiInput struct {
	Name            string   `json:"name"`
	Subdomain       string   `json:"subdomain"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Keywords        string   `json:"keywords"`
	MetaDescription string   `json:"metaDescription"`
	Logo            string   `json:"logo"`
	BackgroundImage string   `json:"backgroundImage"`
	MenuBackground  string   `json:"menuBackground"`
	PrimaryColor    string   `json:"primaryColor"`
	TextColor       string   `json:"textColor"`
	Tags            []string `json:"tags"`
	CustomDomain    *string  `json:"customDomain"`
	ContactInfo     string   `json:"contactInfo"`
	ApplyReason     string   `json:"applyReason"`
	License         string   `json:"license"`
}

// WikiUpdateInput is a partial update. Status is decoded only so that an
// attempt to set it can be rejected.
type WikiUpdateInput struct {
	Name            *string            `json:"name"`
	Subdomain       *string            `json:"subdomain"`
	Title           *string            `json:"title"`
	Description     *string            `json:"description"`
	Keywords        *string            `json:"keywords"`
	MetaDescription *string            `json:"metaDescription"`
	Logo            *string            `json:"logo"`
	BackgroundImage *string            `json:"backgroundImage"`
	MenuBackground  *string            `json:"menuBackground"`
	PrimaryColor    *string            `json:"primaryColor"`
	TextColor       *string            `json:"textColor"`
	Tags            *[]string          `json:"tags"`
	CustomDomain    *string            `json:"customDomain"`
	ContactInfo     *string            `json:"contactInfo"`
	ApplyReason     *string            `json:"applyReason"`
	License         *string            `json:"license"`
	Status          *models.WikiStatus `json:"status"`
}

type WikiListInput struct {
	Keyword  string
	Status   models.WikiStatus
	Page     int
	PageSize int
}

func NewWikiService(wikis repository.WikiRepository) *WikiService {
	return &WikiService{wikis: wikis, now: time.Now}
}

func (s *WikiService) List(ctx context.Context, in WikiListInput) (models.Page[models.Wiki], error) {
	if in.Status != "" && !in.Status.Valid() {
		return models.Page[models.Wiki]{}, models.NewValidationError("invalid status")
	}
	page, pageSize := normalizePage(in.Page, in.PageSize)
	wikis, total, err := s.wikis.List(ctx, repository.WikiFilter{
		Keyword:  strings.TrimSpace(in.Keyword),
		Status:   in.Status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return models.Page[models.Wiki]{}, err
	}
	return models.NewPage(wikis, total, page, pageSize), nil
}

func (s *WikiService) Get(ctx context.Context, id uint) (*models.Wiki, error) {
	return s.wikis.GetByID(ctx, id)
}

// Create files a new wiki owned by creatorID. It always starts PENDING.
func (s *WikiService) Create(ctx context.Context, creatorID uint, in WikiInput) (*models.Wiki, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Subdomain = strings.ToLower(strings.TrimSpace(in.Subdomain))
	in.CustomDomain = normalizeDomain(in.CustomDomain)
	if in.PrimaryColor == "" {
		in.PrimaryColor = "#000000"
	}
	if in.TextColor == "" {
		in.TextColor = "#333333"
	}
	if in.License == "" {
		in.License = "CC-BY-SA"
	}

	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Name, ozzo.Required, ozzo.RuneLength(1, 100)),
		ozzo.Field(&in.Subdomain, ozzo.Required, validation.SubdomainRule),
		ozzo.Field(&in.Title, ozzo.Required, ozzo.RuneLength(1, 200)),
		ozzo.Field(&in.PrimaryColor, validation.HexColorRule),
		ozzo.Field(&in.TextColor, validation.HexColorRule),
		ozzo.Field(&in.CustomDomain, is.Domain),
		ozzo.Field(&in.Logo, is.RequestURI),
		ozzo.Field(&in.ContactInfo, ozzo.RuneLength(0, 100)),
		ozzo.Field(&in.License, ozzo.RuneLength(1, 50)),
	)
	if err != nil {
		return nil, validation.AsAppError(err)
	}

	if err := s.ensureFree(ctx, 0, &in.Name, &in.Subdomain, in.CustomDomain); err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	wiki := &models.Wiki{
		Name:            in.Name,
		Subdomain:       in.Subdomain,
		Title:           in.Title,
		Description:     in.Description,
		Keywords:        in.Keywords,
		MetaDescription: in.MetaDescription,
		Logo:            in.Logo,
		BackgroundImage: in.BackgroundImage,
		MenuBackground:  in.MenuBackground,
		PrimaryColor:    in.PrimaryColor,
		TextColor:       in.TextColor,
		Status:          models.WikiStatusPending,
		CreatorID:       creatorID,
		Tags:            tags,
		CustomDomain:    in.CustomDomain,
		ContactInfo:     in.ContactInfo,
		ApplyReason:     in.ApplyReason,
		License:         in.License,
	}
	if err := s.wikis.Create(ctx, wiki); err != nil {
		return nil, err
	}
	return s.wikis.GetByID(ctx, wiki.ID)
}

// Update edits descriptive fields. Status belongs to the review operations.
func (s *WikiService) Update(ctx context.Context, id uint, in WikiUpdateInput) (*models.Wiki, error) {
	if in.Status != nil {
		return nil, models.NewValidationError("status can only change through approve or reject")
	}
	if _, err := s.wikis.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := ozzo.Validate(name, ozzo.Required, ozzo.RuneLength(1, 100)); err != nil {
			return nil, models.NewValidationError("name: " + err.Error())
		}
		in.Name = &name
		fields["name"] = name
	}
	if in.Subdomain != nil {
		sub := strings.ToLower(strings.TrimSpace(*in.Subdomain))
		if err := validation.ValidateSubdomain(sub); err != nil {
			return nil, models.NewValidationError("subdomain: " + err.Error())
		}
		in.Subdomain = &sub
		fields["subdomain"] = sub
	}
	if in.CustomDomain != nil {
		domain := normalizeDomain(in.CustomDomain)
		if domain != nil {
			if err := ozzo.Validate(*domain, is.Domain); err != nil {
				return nil, models.NewValidationError("customDomain: " + err.Error())
			}
		}
		in.CustomDomain = domain
		fields["custom_domain"] = domain
	}
	if in.Title != nil {
		if err := ozzo.Validate(*in.Title, ozzo.Required, ozzo.RuneLength(1, 200)); err != nil {
			return nil, models.NewValidationError("title: " + err.Error())
		}
		fields["title"] = *in.Title
	}
	for column, color := range map[string]*string{"primary_color": in.PrimaryColor, "text_color": in.TextColor} {
		if color == nil {
			continue
		}
		if err := ozzo.Validate(*color, ozzo.Required, validation.HexColorRule); err != nil {
			return nil, models.NewValidationError(column + ": " + err.Error())
		}
		fields[column] = *color
	}
	if in.Tags != nil {
		raw, err := jsonTags(*in.Tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = raw
	}
	setString(fields, "description", in.Description)
	setString(fields, "keywords", in.Keywords)
	setString(fields, "meta_description", in.MetaDescription)
	setString(fields, "logo", in.Logo)
	setString(fields, "background_image", in.BackgroundImage)
	setString(fields, "menu_background", in.MenuBackground)
	setString(fields, "contact_info", in.ContactInfo)
	setString(fields, "apply_reason", in.ApplyReason)
	setString(fields, "license", in.License)

	if err := s.ensureFree(ctx, id, in.Name, in.Subdomain, in.CustomDomain); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.wikis.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.wikis.GetByID(ctx, id)
}

func (s *WikiService) Delete(ctx context.Context, id uint) error {
	return s.wikis.SoftDelete(ctx, id)
}

// Approve moves a PENDING wiki to DRAFT and stamps the reviewer.
func (s *WikiService) Approve(ctx context.Context, reviewerID, id uint) (*models.Wiki, error) {
	return s.review(ctx, id, "approved", map[string]any{
		"status":         models.WikiStatusDraft,
		"approved_by_id": reviewerID,
		"approved_at":    s.now(),
		"reject_reason":  "",
	})
}

// Reject moves a PENDING wiki to REJECTED with a mandatory reason.
func (s *WikiService) Reject(ctx context.Context, reviewerID, id uint, reason string) (*models.Wiki, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.NewValidationError("reason: cannot be blank")
	}
	return s.review(ctx, id, "rejected", map[string]any{
		"status":         models.WikiStatusRejected,
		"approved_by_id": reviewerID,
		"approved_at":    s.now(),
		"reject_reason":  reason,
	})
}

func (s *WikiService) review(ctx context.Context, id uint, decision string, fields map[string]any) (_ *models.Wiki, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "WikiService", "review")
	defer func() { observability.EndSpan(span, err) }()

	wiki, err := s.wikis.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wiki.Status != models.WikiStatusPending {
		return nil, models.NewValidationError("Only pending wikis can be reviewed")
	}
	ok, err := s.wikis.Transition(ctx, id, models.WikiStatusPending, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("status", "Wiki was already reviewed")
	}
	observability.WikiReviews.WithLabelValues(decision).Inc()
	return s.wikis.GetByID(ctx, id)
}

func (s *WikiService) ensureFree(ctx context.Context, excludeID uint, name, subdomain, customDomain *string) error {
	checks := []struct {
		column, field, message string
		value                  *string
	}{
		{"name", "name", "Wiki name already exists", name},
		{"subdomain", "subdomain", "Subdomain already in use", subdomain},
		{"custom_domain", "customDomain", "Custom domain already in use", customDomain},
	}
	for _, c := range checks {
		if c.value == nil || *c.value == "" {
			continue
		}
		taken, err := s.wikis.Taken(ctx, c.column, *c.value, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return models.NewConflictError(c.field, c.message)
		}
	}
	return nil
}

func normalizeDomain(d *string) *string {
	if d == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*d))
	if v == "" {
		return nil
	}
	return &v
}

func setString(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = *v
	}
}
