package practitioner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/errors"
	"github.com/veracare/marketplace-api/pkg/security"
)

type PractitionerService interface {
	Register(ctx context.Context, req *model.RegisterPractitionerRequest) (*model.Practitioner, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error)
	GetProfile(ctx context.Context, slug string) (*model.Practitioner, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePractitionerRequest) (*model.Practitioner, error)
	ChangeTier(ctx context.Context, id uuid.UUID, req *model.ChangeTierRequest) error
	ChangeStatus(ctx context.Context, id uuid.UUID, req *model.ChangeStatusRequest) error
	SetTags(ctx context.Context, id uuid.UUID, kind string, req *model.SetTagsRequest) error
}

type Service struct {
	repo       repository.PractitionerRepository
	userRepo   repository.UserRepository
	outboxRepo repository.OutboxRepository
	hasher     security.PasswordHasher
}

func NewService(repo repository.PractitionerRepository, userRepo repository.UserRepository, outboxRepo repository.OutboxRepository, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:       repo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		hasher:     hasher,
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses non-alphanumeric runs to
// single hyphens.
func Slugify(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	return strings.Trim(slugStrip.ReplaceAllString(joined, "-"), "-")
}

// Register creates the login user and the practitioner profile
// together. New practitioners start on the FREE tier, unverified, and a
// welcome event is queued for the email worker.
func (s *Service) Register(ctx context.Context, req *model.RegisterPractitionerRequest) (*model.Practitioner, error) {
	email := strings.ToLower(req.Email)
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.BadRequest("email is already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base: model.Base{
			ID: uuid.New(),
		},
		Email:        email,
		PasswordHash: hash,
		Role:         model.RolePractitioner,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slug := Slugify(req.FirstName, req.LastName)
	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		slug = slug + "-" + user.ID.String()[:8]
	}

	practitioner := &model.Practitioner{
		Base: model.Base{
			ID: uuid.New(),
		},
		UserID:           user.ID,
		Slug:             slug,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PracticeName:     req.PracticeName,
		Credentials:      req.Credentials,
		Email:            user.Email,
		Phone:            req.Phone,
		City:             req.City,
		State:            req.State,
		ZipCode:          req.ZipCode,
		MembershipTier:   model.TierFree,
		MembershipStatus: model.MembershipStatusActive,
	}
	if err := s.repo.Create(ctx, practitioner); err != nil {
		return nil, fmt.Errorf("failed to create practitioner: %w", err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"practitioner_id": practitioner.ID,
		"email":           practitioner.Email,
		"first_name":      practitioner.FirstName,
	})
	event := &model.OutboxEvent{
		EventType: model.EventPractitionerRegistered,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to queue welcome event: %w", err)
	}

	return practitioner, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	practitioner, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("practitioner", err)
	}
	if err := s.loadTags(ctx, practitioner); err != nil {
		return nil, err
	}
	return practitioner, nil
}

// GetProfile resolves a public profile by slug and counts the view.
func (s *Service) GetProfile(ctx context.Context, slug string) (*model.Practitioner, error) {
	practitioner, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NotFound("practitioner", err)
	}
	if err := s.loadTags(ctx, practitioner); err != nil {
		return nil, err
	}
	if err := s.repo.IncrementProfileViews(ctx, practitioner.ID); err != nil {
		return nil, fmt.Errorf("failed to record profile view: %w", err)
	}
	practitioner.ProfileViews++
	return practitioner, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error) {
	practitioner, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("practitioner", err)
	}
	if err := s.loadTags(ctx, practitioner); err != nil {
		return nil, err
	}
	return practitioner, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePractitionerRequest) (*model.Practitioner, error) {
	practitioner, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("practitioner", err)
	}

	if req.FirstName != nil {
		practitioner.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		practitioner.LastName = *req.LastName
	}
	if req.PracticeName != nil {
		practitioner.PracticeName = *req.PracticeName
	}
	if req.Credentials != nil {
		practitioner.Credentials = *req.Credentials
	}
	if req.Bio != nil {
		practitioner.Bio = *req.Bio
	}
	if req.Phone != nil {
		practitioner.Phone = *req.Phone
	}
	if req.City != nil {
		practitioner.City = *req.City
	}
	if req.State != nil {
		practitioner.State = *req.State
	}
	if req.ZipCode != nil {
		practitioner.ZipCode = *req.ZipCode
	}

	if err := s.repo.Update(ctx, practitioner); err != nil {
		return nil, fmt.Errorf("failed to update practitioner: %w", err)
	}
	return practitioner, nil
}

func (s *Service) ChangeTier(ctx context.Context, id uuid.UUID, req *model.ChangeTierRequest) error {
	tier := model.MembershipTier(strings.ToUpper(string(req.Tier)))
	if !tier.IsValid() {
		return errors.BadRequest(fmt.Sprintf("unknown membership tier: %s", req.Tier), nil)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return errors.NotFound("practitioner", err)
	}
	if err := s.repo.UpdateTier(ctx, id, tier); err != nil {
		return fmt.Errorf("failed to change tier: %w", err)
	}
	return nil
}

// ChangeStatus pauses or resumes a membership without deleting the
// profile. Inactive and suspended practitioners drop out of the
// directory but keep their data.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, req *model.ChangeStatusRequest) error {
	status := model.MembershipStatus(strings.ToLower(string(req.Status)))
	if !status.IsValid() {
		return errors.BadRequest(fmt.Sprintf("unknown membership status: %s", req.Status), nil)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return errors.NotFound("practitioner", err)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to change status: %w", err)
	}
	return nil
}

// SetTags replaces the practitioner's tag set of one kind (treatment,
// condition or insurance) wholesale.
func (s *Service) SetTags(ctx context.Context, id uuid.UUID, kind string, req *model.SetTagsRequest) error {
	switch kind {
	case model.TagKindTreatment, model.TagKindCondition, model.TagKindInsurance:
	default:
		return errors.BadRequest(fmt.Sprintf("unknown tag kind: %s", kind), nil)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return errors.NotFound("practitioner", err)
	}
	if err := s.repo.ReplaceTags(ctx, id, kind, req.Values); err != nil {
		return fmt.Errorf("failed to replace tags: %w", err)
	}
	return nil
}

func (s *Service) loadTags(ctx context.Context, p *model.Practitioner) error {
	for _, kind := range []string{model.TagKindTreatment, model.TagKindCondition, model.TagKindInsurance} {
		tags, err := s.repo.GetTags(ctx, p.ID, kind)
		if err != nil {
			return fmt.Errorf("failed to load %s tags: %w", kind, err)
		}
		switch kind {
		case model.TagKindTreatment:
			p.Treatments = tags
		case model.TagKindCondition:
			p.Conditions = tags
		case model.TagKindInsurance:
			p.Insurances = tags
		}
	}
	return nil
}
