package service

import (
	"context"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
)

type AnalysisBackend interface {
	MonthlyComparison(ctx context.Context, q MonthlyQuery, includeAI bool) (*model.MonthlyComparison, error)
	ProductCost(ctx context.Context, period string, includeAI bool) (*model.ProductCostAnalysis, error)
	SimulateCost(ctx context.Context, input model.CostSimulationInput, period string, includeAI bool) (*model.CostSimulationResult, error)
	Sensitivity(ctx context.Context, period string) (*model.SensitivityResult, error)
}

// AnalysisService fetches the dependent analyses into their view slots.
// A failed fetch leaves its slot as it was.
type AnalysisService struct {
	backend   AnalysisBackend
	view      *ViewStore
	includeAI bool
}

func NewAnalysisService(backend AnalysisBackend, view *ViewStore, includeAI bool) *AnalysisService {
	return &AnalysisService{backend: backend, view: view, includeAI: includeAI}
}

func (s *AnalysisService) Monthly(ctx context.Context, q MonthlyQuery) (*model.MonthlyComparison, error) {
	result, err := s.backend.MonthlyComparison(ctx, q, s.includeAI)
	if err != nil {
		logger.Warn(ctx, "monthly comparison failed", "error", err)
		return nil, err
	}
	s.view.SetMonthlyComparison(result)
	return result, nil
}

func (s *AnalysisService) ProductCost(ctx context.Context, period string) (*model.ProductCostAnalysis, error) {
	result, err := s.backend.ProductCost(ctx, period, s.includeAI)
	if err != nil {
		logger.Warn(ctx, "product cost analysis failed", "period", period, "error", err)
		return nil, err
	}
	s.view.SetProductCost(result)
	return result, nil
}

func (s *AnalysisService) SimulateCost(ctx context.Context, input model.CostSimulationInput, period string) (*model.CostSimulationResult, error) {
	if err := input.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	result, err := s.backend.SimulateCost(ctx, input, period, s.includeAI)
	if err != nil {
		logger.Warn(ctx, "cost simulation failed", "period", period, "error", err)
		return nil, err
	}
	s.view.SetCostSimulation(result)
	return result, nil
}

func (s *AnalysisService) Sensitivity(ctx context.Context, period string) (*model.SensitivityResult, error) {
	result, err := s.backend.Sensitivity(ctx, period)
	if err != nil {
		logger.Warn(ctx, "sensitivity analysis failed", "period", period, "error", err)
		return nil, err
	}
	s.view.SetSensitivity(result)
	return result, nil
}
