package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/yukikurage/project-tracker/internal/models"
	"github.com/yukikurage/project-tracker/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrThresholdsEmpty      = errors.New("threshold list cannot be empty")
	ErrThresholdNotPositive = errors.New("thresholds must be positive hour counts")
)

// PolicyService manages per-user reminder policies. A policy is created
// lazily with defaults the first time it is read.
type PolicyService struct {
	policyRepo        repository.PolicyRepository
	defaultThresholds []int
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(policyRepo repository.PolicyRepository, defaultThresholds []int) *PolicyService {
	if len(defaultThresholds) == 0 {
		defaultThresholds = []int{24, 6, 1}
	}
	return &PolicyService{
		policyRepo:        policyRepo,
		defaultThresholds: defaultThresholds,
	}
}

// GetPolicy returns the user's reminder policy, creating the default one on
// first access.
func (s *PolicyService) GetPolicy(userID uint64) (*models.ReminderPolicy, error) {
	policy, err := s.policyRepo.Find(userID)
	if err == nil {
		return policy, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find policy: %w", err)
	}

	policy = &models.ReminderPolicy{
		UserID:     userID,
		Enabled:    true,
		Thresholds: datatypes.NewJSONSlice(normalizeThresholds(s.defaultThresholds)),
	}
	if err := s.policyRepo.Save(policy); err != nil {
		return nil, fmt.Errorf("failed to create default policy: %w", err)
	}

	return policy, nil
}

// SetEnabled turns reminders on or off, keeping thresholds intact.
func (s *PolicyService) SetEnabled(userID uint64, enabled bool) (*models.ReminderPolicy, error) {
	policy, err := s.GetPolicy(userID)
	if err != nil {
		return nil, err
	}

	policy.Enabled = enabled
	if err := s.policyRepo.Save(policy); err != nil {
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}

	return policy, nil
}

// SetThresholds replaces the user's threshold set. The prior policy is left
// intact when validation fails.
func (s *PolicyService) SetThresholds(userID uint64, thresholds []int) (*models.ReminderPolicy, error) {
	if err := validateThresholds(thresholds); err != nil {
		return nil, err
	}

	policy, err := s.GetPolicy(userID)
	if err != nil {
		return nil, err
	}

	policy.Thresholds = datatypes.NewJSONSlice(normalizeThresholds(thresholds))
	if err := s.policyRepo.Save(policy); err != nil {
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}

	return policy, nil
}

// ToggleThreshold adds the hour to the set, or removes it when present.
// Removing the last threshold is rejected.
func (s *PolicyService) ToggleThreshold(userID uint64, hour int) (*models.ReminderPolicy, error) {
	if hour <= 0 {
		return nil, ErrThresholdNotPositive
	}

	policy, err := s.GetPolicy(userID)
	if err != nil {
		return nil, err
	}

	current := []int(policy.Thresholds)
	var next []int
	if lo.Contains(current, hour) {
		next = lo.Without(current, hour)
	} else {
		next = append(append([]int{}, current...), hour)
	}

	return s.SetThresholds(userID, next)
}

func validateThresholds(thresholds []int) error {
	if len(thresholds) == 0 {
		return ErrThresholdsEmpty
	}
	for _, h := range thresholds {
		if h <= 0 {
			return ErrThresholdNotPositive
		}
	}
	return nil
}

// normalizeThresholds applies set semantics: duplicates collapsed, stored in
// descending order.
func normalizeThresholds(thresholds []int) []int {
	normalized := lo.Uniq(thresholds)
	sort.Sort(sort.Reverse(sort.IntSlice(normalized)))
	return normalized
}
