package database

import (
	"context"

	"postpilot/internal/config"
	"postpilot/internal/core/schedule"
)

type RuleRepositoryDatabase struct{}

func NewRuleRepositoryDatabase() *RuleRepositoryDatabase {
	return &RuleRepositoryDatabase{}
}

func (repo *RuleRepositoryDatabase) Create(ctx context.Context, rule *schedule.RecurrenceRule) (*schedule.RecurrenceRule, error) {
	if err := config.DB.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}
