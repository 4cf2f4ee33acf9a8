package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/port"
)

const (
	defaultCategoryColor = "#000000"
	maxCategoryName      = 50
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryService manages the user's categories.
type CategoryService struct {
	store  port.CategoryStore
	logger *zap.Logger
}

// NewCategoryService creates the category service. store is usually the
// cached decorator so the list stays cheap between form submissions.
func NewCategoryService(store port.CategoryStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

// List returns every category sorted by name.
func (s *CategoryService) List(ctx context.Context, sess *domain.Session) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryService.List")
	defer span.End()

	cats, err := s.store.ListCategories(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("categories fetch: %w", err)
	}
	out := make([]domain.Category, len(cats))
	copy(out, cats)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Get fetches one category.
func (s *CategoryService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Get")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	return s.store.GetCategory(ctx, sess.Token, id)
}

// Create validates in and stores a new category. Names are unique
// case-insensitively.
func (s *CategoryService) Create(ctx context.Context, sess *domain.Session, in domain.CategoryInput) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Create")
	defer span.End()

	cat, err := buildCategory(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, sess, cat.Name, ""); err != nil {
		return nil, err
	}

	created, err := s.store.CreateCategory(ctx, sess.Token, cat)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info("category created",
		zap.String("session_id", sess.ID),
		zap.String("category_id", created.ID),
	)
	return created, nil
}

// Update validates in and replaces category id.
func (s *CategoryService) Update(ctx context.Context, sess *domain.Session, id string, in domain.CategoryInput) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Update")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	cat, err := buildCategory(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, sess, cat.Name, id); err != nil {
		return nil, err
	}
	cat.ID = id

	updated, err := s.store.UpdateCategory(ctx, sess.Token, cat)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete removes category id.
func (s *CategoryService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	ctx, span := tracer.Start(ctx, "CategoryService.Delete")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	if err := s.store.DeleteCategory(ctx, sess.Token, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.logger.Info("category deleted",
		zap.String("session_id", sess.ID),
		zap.String("category_id", id),
	)
	return nil
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, sess *domain.Session, name, exceptID string) error {
	cats, err := s.store.ListCategories(ctx, sess.Token)
	if err != nil {
		return fmt.Errorf("categories fetch: %w", err)
	}
	for _, c := range cats {
		if c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return &domain.ErrConflict{Message: fmt.Sprintf("category %q already exists", name)}
		}
	}
	return nil
}

func buildCategory(in domain.CategoryInput) (domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Category{}, &domain.ErrValidation{Field: "name", Message: "is required"}
	}
	if utf8.RuneCountInString(name) > maxCategoryName {
		return domain.Category{}, &domain.ErrValidation{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxCategoryName)}
	}

	kind := in.Kind
	if kind == "" {
		kind = domain.CategoryExpense
	}
	if !kind.Valid() {
		return domain.Category{}, &domain.ErrValidation{Field: "kind", Message: fmt.Sprintf("unknown category kind %q", in.Kind)}
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = defaultCategoryColor
	}
	if !colorPattern.MatchString(color) {
		return domain.Category{}, &domain.ErrValidation{Field: "color", Message: "must be #rrggbb"}
	}

	icon := strings.TrimSpace(in.Icon)
	if err := validateIcon(icon); err != nil {
		return domain.Category{}, err
	}

	return domain.Category{
		Name:  name,
		Kind:  kind,
		Color: strings.ToLower(color),
		Icon:  icon,
	}, nil
}
