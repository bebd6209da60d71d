package service

import (
	"fmt"
	"sync"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
)

// Slot names one entry of the view store.
type Slot string

const (
	SlotProfitLoss        Slot = "profit_loss"
	SlotMonthlyComparison Slot = "monthly_comparison"
	SlotProductCost       Slot = "product_cost"
	SlotCostSimulation    Slot = "cost_simulation"
	SlotSensitivity       Slot = "sensitivity"
)

// Slots lists every slot of the view store.
var Slots = []Slot{
	SlotProfitLoss,
	SlotMonthlyComparison,
	SlotProductCost,
	SlotCostSimulation,
	SlotSensitivity,
}

func ParseSlot(s string) (Slot, error) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("알 수 없는 화면 데이터 항목입니다: %q", s)
}

// ViewStore holds the latest fetched result per analysis type for one
// workspace. Subscribers are notified only for the slot they watch;
// notifications coalesce and never block writers.
type ViewStore struct {
	mu          sync.RWMutex
	profitLoss  *model.ProfitLossData
	monthly     *model.MonthlyComparison
	productCost *model.ProductCostAnalysis
	simulation  *model.CostSimulationResult
	sensitivity *model.SensitivityResult

	subMu  sync.Mutex
	subs   map[Slot]map[uint64]chan struct{}
	nextID uint64
}

func NewViewStore() *ViewStore {
	return &ViewStore{
		subs: make(map[Slot]map[uint64]chan struct{}),
	}
}

func (s *ViewStore) ProfitLoss() (*model.ProfitLossData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profitLoss, s.profitLoss != nil
}

func (s *ViewStore) SetProfitLoss(v *model.ProfitLossData) {
	s.mu.Lock()
	s.profitLoss = v
	s.mu.Unlock()
	s.notify(SlotProfitLoss)
}

func (s *ViewStore) MonthlyComparison() (*model.MonthlyComparison, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monthly, s.monthly != nil
}

func (s *ViewStore) SetMonthlyComparison(v *model.MonthlyComparison) {
	s.mu.Lock()
	s.monthly = v
	s.mu.Unlock()
	s.notify(SlotMonthlyComparison)
}

func (s *ViewStore) ProductCost() (*model.ProductCostAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productCost, s.productCost != nil
}

func (s *ViewStore) SetProductCost(v *model.ProductCostAnalysis) {
	s.mu.Lock()
	s.productCost = v
	s.mu.Unlock()
	s.notify(SlotProductCost)
}

func (s *ViewStore) CostSimulation() (*model.CostSimulationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulation, s.simulation != nil
}

func (s *ViewStore) SetCostSimulation(v *model.CostSimulationResult) {
	s.mu.Lock()
	s.simulation = v
	s.mu.Unlock()
	s.notify(SlotCostSimulation)
}

func (s *ViewStore) Sensitivity() (*model.SensitivityResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sensitivity, s.sensitivity != nil
}

func (s *ViewStore) SetSensitivity(v *model.SensitivityResult) {
	s.mu.Lock()
	s.sensitivity = v
	s.mu.Unlock()
	s.notify(SlotSensitivity)
}

// Get returns the value of any slot, for generic readers.
func (s *ViewStore) Get(slot Slot) (any, bool) {
	switch slot {
	case SlotProfitLoss:
		return s.ProfitLoss()
	case SlotMonthlyComparison:
		return s.MonthlyComparison()
	case SlotProductCost:
		return s.ProductCost()
	case SlotCostSimulation:
		return s.CostSimulation()
	case SlotSensitivity:
		return s.Sensitivity()
	}
	return nil, false
}

// Reset clears every slot at once and notifies the slots that held a value.
func (s *ViewStore) Reset() {
	s.mu.Lock()
	var changed []Slot
	if s.profitLoss != nil {
		changed = append(changed, SlotProfitLoss)
	}
	if s.monthly != nil {
		changed = append(changed, SlotMonthlyComparison)
	}
	if s.productCost != nil {
		changed = append(changed, SlotProductCost)
	}
	if s.simulation != nil {
		changed = append(changed, SlotCostSimulation)
	}
	if s.sensitivity != nil {
		changed = append(changed, SlotSensitivity)
	}
	s.profitLoss = nil
	s.monthly = nil
	s.productCost = nil
	s.simulation = nil
	s.sensitivity = nil
	s.mu.Unlock()

	for _, slot := range changed {
		s.notify(slot)
	}
}

// Subscribe returns a channel signalled after each write to slot and a
// function that releases the subscription.
func (s *ViewStore) Subscribe(slot Slot) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	if s.subs[slot] == nil {
		s.subs[slot] = make(map[uint64]chan struct{})
	}
	s.subs[slot][id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs[slot], id)
			s.subMu.Unlock()
		})
	}
}

func (s *ViewStore) notify(slot Slot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs[slot] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
