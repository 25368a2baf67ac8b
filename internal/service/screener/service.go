package screener

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/ai"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/pkg/errors"
)

type Service interface {
	CreateForm(ctx context.Context, actor *model.TokenClaims, req *model.CreateScreenerRequest) (*model.ScreenerForm, error)
	GetForm(ctx context.Context, id uuid.UUID) (*model.ScreenerForm, error)
	UpdateForm(ctx context.Context, id uuid.UUID, req *model.UpdateScreenerRequest) (*model.ScreenerForm, error)
	DeleteForm(ctx context.Context, id uuid.UUID) error
	ListForms(ctx context.Context) ([]*model.ScreenerForm, error)
	// PublishForm freezes a draft for use; published forms cannot be edited,
	// only duplicated into a new draft.
	PublishForm(ctx context.Context, id uuid.UUID) (*model.ScreenerForm, error)
	// DuplicateForm copies a form into a fresh draft with a bumped version.
	DuplicateForm(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) (*model.ScreenerForm, error)
	// GenerateFields asks the AI generator for eligibility questions and
	// prepends the standard contact fields.
	GenerateFields(ctx context.Context, protocolText string) ([]model.ScreenerField, error)
}

type service struct {
	repo      repository.ScreenerRepository
	generator ai.Generator
}

func NewService(repo repository.ScreenerRepository, generator ai.Generator) Service {
	return &service{repo: repo, generator: generator}
}

// DefaultContactFields are always present on generated screeners so every
// submission is reachable as a lead.
func DefaultContactFields() []model.ScreenerField {
	return []model.ScreenerField{
		{Name: "name", Label: "Full Name", Type: model.FieldTypeText, Required: true, Category: "contact"},
		{Name: "email", Label: "Email Address", Type: model.FieldTypeText, Required: true, Category: "contact"},
		{Name: "phone", Label: "Phone Number", Type: model.FieldTypeText, Required: false, Category: "contact"},
		{Name: "zip", Label: "ZIP Code", Type: model.FieldTypeText, Required: true, Category: "contact"},
	}
}

func (s *service) CreateForm(ctx context.Context, actor *model.TokenClaims, req *model.CreateScreenerRequest) (*model.ScreenerForm, error) {
	form := &model.ScreenerForm{
		Base:      model.Base{ID: uuid.New()},
		Name:      req.Name,
		Version:   1,
		Status:    model.ScreenerStatusDraft,
		Fields:    req.Fields,
		CreatedBy: actor.UserID,
	}

	if err := s.repo.Create(ctx, form); err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create screener form")
		return nil, errors.Internal("failed to create screener form")
	}
	return form, nil
}

func (s *service) GetForm(ctx context.Context, id uuid.UUID) (*model.ScreenerForm, error) {
	form, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("screener form not found")
	}
	return form, nil
}

func (s *service) UpdateForm(ctx context.Context, id uuid.UUID, req *model.UpdateScreenerRequest) (*model.ScreenerForm, error) {
	form, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.Status == model.ScreenerStatusPublished {
		return nil, errors.Conflict("published forms cannot be edited; duplicate it first")
	}

	if req.Name != nil {
		form.Name = *req.Name
	}
	if req.Fields != nil {
		form.Fields = req.Fields
	}
	if req.AssignedPartners != nil {
		ids := make(model.UUIDList, 0, len(req.AssignedPartners))
		for _, raw := range req.AssignedPartners {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, errors.BadRequest("invalid partner id in assigned_partners")
			}
			ids = append(ids, id)
		}
		form.AssignedPartners = ids
	}

	if err := s.repo.Update(ctx, form); err != nil {
		log.Error().Err(err).Str("form_id", id.String()).Msg("Failed to update screener form")
		return nil, errors.Internal("failed to update screener form")
	}
	return form, nil
}

func (s *service) DeleteForm(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetForm(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Internal("failed to delete screener form")
	}
	return nil
}

func (s *service) ListForms(ctx context.Context) ([]*model.ScreenerForm, error) {
	forms, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal("failed to list screener forms")
	}
	return forms, nil
}

func (s *service) PublishForm(ctx context.Context, id uuid.UUID) (*model.ScreenerForm, error) {
	form, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.Status == model.ScreenerStatusPublished {
		return form, nil
	}
	if len(form.Fields) == 0 {
		return nil, errors.BadRequest("cannot publish a form with no fields")
	}

	form.Status = model.ScreenerStatusPublished
	if err := s.repo.Update(ctx, form); err != nil {
		return nil, errors.Internal("failed to publish screener form")
	}
	return form, nil
}

func (s *service) DuplicateForm(ctx context.Context, actor *model.TokenClaims, id uuid.UUID) (*model.ScreenerForm, error) {
	src, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}

	copyFields := make(model.ScreenerFields, len(src.Fields))
	copy(copyFields, src.Fields)

	dup := &model.ScreenerForm{
		Base:             model.Base{ID: uuid.New()},
		Name:             src.Name,
		Version:          src.Version + 1,
		Status:           model.ScreenerStatusDraft,
		Fields:           copyFields,
		AssignedPartners: src.AssignedPartners,
		CreatedBy:        actor.UserID,
	}

	if err := s.repo.Create(ctx, dup); err != nil {
		return nil, errors.Internal("failed to duplicate screener form")
	}
	return dup, nil
}

func (s *service) GenerateFields(ctx context.Context, protocolText string) ([]model.ScreenerField, error) {
	if protocolText == "" {
		return nil, errors.BadRequest("protocol_text is required")
	}

	generated, err := s.generator.GenerateFields(ctx, protocolText)
	if err != nil {
		log.Error().Err(err).Msg("Field generation failed")
		return nil, errors.Internal("field generation failed")
	}

	fields := DefaultContactFields()
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.Name] = true
	}
	for _, f := range generated {
		if f.Name != "" && seen[f.Name] {
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}
