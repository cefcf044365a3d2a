package service

import (
	"context"
	"errors"
	"regexp"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeService defines business operations for the attribute registry.
type AttributeService interface {
	Create(ctx context.Context, req dto.CreateAttributeRequest) (*dto.AttributeResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AttributeResponse, error)
	List(ctx context.Context, filter dto.AttributeFilter) (*dto.AttributeListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateAttributeRequest) (*dto.AttributeResponse, error)
	// Deactivate hides the attribute from future selection. Existing
	// category/product references remain valid (soft-deprecation).
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type attributeService struct {
	repo repository.AttributeRepository
}

func NewAttributeService(repo repository.AttributeRepository) AttributeService {
	return &attributeService{repo: repo}
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validateOptions enforces the registry invariant: option-typed attributes
// need a non-empty, value-unique option list; COLOR swatches must be hex.
func validateOptions(valueType string, options model.OptionList) error {
	needsOptions := valueType == model.ValueTypeSelect ||
		valueType == model.ValueTypeMultiSelect ||
		valueType == model.ValueTypeColor

	if !needsOptions {
		return nil
	}
	if len(options) == 0 {
		return apierror.Validation("OptionsRequired",
			"value type %s requires a non-empty option list", valueType)
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt.Value == "" {
			return apierror.Validation("OptionValueEmpty", "option values must not be empty")
		}
		if seen[opt.Value] {
			return apierror.Validation("DuplicateOptionValue",
				"option value %q appears more than once", opt.Value)
		}
		seen[opt.Value] = true
		if valueType == model.ValueTypeColor && !hexColorRe.MatchString(opt.Swatch) {
			return apierror.Validation("InvalidColorToken",
				"option %q: swatch %q is not a valid color token", opt.Value, opt.Swatch)
		}
	}
	return nil
}

func optionsFromInput(in []dto.AttributeOptionInput) model.OptionList {
	if len(in) == 0 {
		return nil
	}
	out := make(model.OptionList, 0, len(in))
	for _, o := range in {
		out = append(out, model.AttributeOption{Label: o.Label, Value: o.Value, Swatch: o.Swatch})
	}
	return out
}

func mapAttribute(a model.Attribute) dto.AttributeResponse {
	opts := make([]dto.AttributeOptionResponse, 0, len(a.Options))
	for _, o := range a.Options {
		opts = append(opts, dto.AttributeOptionResponse{Label: o.Label, Value: o.Value, Swatch: o.Swatch})
	}
	return dto.AttributeResponse{
		ID:           a.ID.String(),
		Name:         a.Name,
		Slug:         a.Slug,
		ValueType:    a.ValueType,
		InputType:    a.InputType,
		Options:      opts,
		Unit:         a.Unit,
		IsFilterable: a.IsFilterable,
		IsRequired:   a.IsRequired,
		IsVariant:    a.IsVariant,
		Status:       a.Status,
	}
}

func (s *attributeService) Create(ctx context.Context, req dto.CreateAttributeRequest) (*dto.AttributeResponse, error) {
	options := optionsFromInput(req.Options)
	if err := validateOptions(req.ValueType, options); err != nil {
		return nil, err
	}

	slug := slugify(req.Name)
	if existing, err := s.repo.FindBySlug(ctx, slug); err == nil && existing != nil {
		return nil, apierror.Conflict("DuplicateAttributeSlug",
			"an attribute with slug %q already exists", slug)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inputType := req.InputType
	if inputType == "" {
		inputType = defaultInputType(req.ValueType)
	}

	a := &model.Attribute{
		Name:         req.Name,
		Slug:         slug,
		ValueType:    req.ValueType,
		InputType:    inputType,
		Options:      options,
		Unit:         req.Unit,
		IsFilterable: req.IsFilterable,
		IsRequired:   req.IsRequired,
		IsVariant:    req.IsVariant,
		Status:       model.AttributeStatusActive,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("DuplicateAttributeSlug",
				"an attribute with slug %q already exists", slug)
		}
		return nil, err
	}
	resp := mapAttribute(*a)
	return &resp, nil
}

func defaultInputType(valueType string) string {
	switch valueType {
	case model.ValueTypeSelect:
		return "dropdown"
	case model.ValueTypeMultiSelect:
		return "checkbox"
	case model.ValueTypeColor:
		return "swatch"
	case model.ValueTypeBoolean:
		return "toggle"
	case model.ValueTypeDate:
		return "date"
	case model.ValueTypeRange:
		return "slider"
	default:
		return "text"
	}
}

func (s *attributeService) Get(ctx context.Context, id uuid.UUID) (*dto.AttributeResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("AttributeNotFound", "attribute %s not found", id)
		}
		return nil, err
	}
	resp := mapAttribute(*a)
	return &resp, nil
}

func (s *attributeService) List(ctx context.Context, filter dto.AttributeFilter) (*dto.AttributeListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	attrs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.AttributeResponse, 0, len(attrs))
	for _, a := range attrs {
		data = append(data, mapAttribute(a))
	}
	return &dto.AttributeListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *attributeService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateAttributeRequest) (*dto.AttributeResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("AttributeNotFound", "attribute %s not found", id)
		}
		return nil, err
	}

	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.InputType != nil {
		a.InputType = *req.InputType
	}
	if req.Options != nil {
		a.Options = optionsFromInput(req.Options)
	}
	if req.Unit != nil {
		a.Unit = req.Unit
	}
	if req.IsFilterable != nil {
		a.IsFilterable = *req.IsFilterable
	}
	if req.IsRequired != nil {
		a.IsRequired = *req.IsRequired
	}
	if req.IsVariant != nil {
		a.IsVariant = *req.IsVariant
	}
	if req.Status != nil {
		a.Status = *req.Status
	}

	if err := validateOptions(a.ValueType, a.Options); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	resp := mapAttribute(*a)
	return &resp, nil
}

func (s *attributeService) Deactivate(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("AttributeNotFound", "attribute %s not found", id)
		}
		return err
	}
	a.Status = model.AttributeStatusInactive
	return s.repo.Update(ctx, a)
}
