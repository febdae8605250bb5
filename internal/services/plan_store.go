package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"flowbarber/internal/core"
	"flowbarber/internal/notify"
	"flowbarber/internal/storage"
)

// RevenueRecorder records a revenue entry in the service log. PlanStore uses
// it to log plan purchases and renewals as services; ServiceStore satisfies
// it.
type RevenueRecorder interface {
	Add(ctx context.Context, svc core.Service) core.Service
}

// PaymentDetails says whether a plan purchase or renewal should also be
// recorded as revenue, and by which payment method.
type PaymentDetails struct {
	AddToRevenue bool
	Method       core.PaymentMethod
}

// PlanStore is the sole owner of the ClientPlan collection, kept sorted by
// client name ascending.
type PlanStore struct {
	mu       sync.Mutex
	store    storage.DocumentStore
	notifier notify.Notifier
	revenue  RevenueRecorder
	log      *slog.Logger

	plans  []core.ClientPlan
	loaded bool
}

func NewPlanStore(store storage.DocumentStore, notifier notify.Notifier, revenue RevenueRecorder, log *slog.Logger) *PlanStore {
	if log == nil {
		log = slog.Default()
	}
	return &PlanStore{store: store, notifier: notifier, revenue: revenue, log: log}
}

// Load reads the persisted plans. Missing or malformed documents fall back
// to an empty list; a failed load is logged, never surfaced.
func (s *PlanStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = nil
	if data, ok, err := s.store.Get(ctx, storage.KeyClientPlans); err != nil {
		s.log.ErrorContext(ctx, "Failed to load plans, starting empty", "error", err)
	} else if ok {
		var plans []core.ClientPlan
		if err := json.Unmarshal(data, &plans); err != nil {
			s.log.ErrorContext(ctx, "Malformed plans document, starting empty", "error", err)
		} else {
			s.plans = plans
			s.sortPlans()
		}
	}
	s.loaded = true
	s.log.InfoContext(ctx, "Plans loaded", "plans", len(s.plans))
}

// Loaded reports whether Load has completed.
func (s *PlanStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Plans returns a copy of the collection, client name ascending.
func (s *PlanStore) Plans() []core.ClientPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ClientPlan(nil), s.plans...)
}

// Add inserts an already-validated plan under a fresh id with a full credit
// balance and returns it. When payment asks for it, the purchase is also
// recorded as a revenue entry dated today, but only once the plan itself has
// persisted.
func (s *PlanStore) Add(ctx context.Context, plan core.ClientPlan, payment PaymentDetails) core.ClientPlan {
	s.mu.Lock()
	plan.ID = core.NewID()
	plan.RemainingCuts = plan.TotalCuts
	s.plans = append(s.plans, plan)
	s.sortPlans()
	persisted := s.persist(ctx)
	if persisted {
		s.notify(ctx, notify.Event{Kind: notify.PlanAdded, Subject: plan.Name})
	}
	s.mu.Unlock()

	if persisted {
		s.recordRevenue(ctx, "Plano - "+plan.Name, plan.Price, payment)
	}
	return plan
}

// Update replaces the non-id fields of the plan matching id. An unknown id
// is a silent no-op.
func (s *PlanStore) Update(ctx context.Context, id string, plan core.ClientPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.plans {
		if s.plans[i].ID == id {
			plan.ID = id
			s.plans[i] = plan
			found = true
			break
		}
	}
	if !found {
		return
	}
	s.sortPlans()
	if s.persist(ctx) {
		s.notify(ctx, notify.Event{Kind: notify.PlanUpdated, Subject: plan.Name})
	}
}

// Delete removes the plan matching id. An unknown id is a silent no-op.
func (s *PlanStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.plans[:0:0]
	var removed *core.ClientPlan
	for _, plan := range s.plans {
		if plan.ID == id {
			p := plan
			removed = &p
			continue
		}
		kept = append(kept, plan)
	}
	if removed == nil {
		return
	}
	s.plans = kept
	if s.persist(ctx) {
		s.notify(ctx, notify.Event{Kind: notify.PlanDeleted, Subject: removed.Name})
	}
}

// ConsumeCredit decrements the plan's remaining cuts by one. A plan already
// at zero is left untouched and announced as out of credits.
func (s *PlanStore) ConsumeCredit(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.plans {
		if s.plans[i].ID != id {
			continue
		}
		if s.plans[i].RemainingCuts <= 0 {
			s.notify(ctx, notify.Event{Kind: notify.NoCreditsLeft, Subject: s.plans[i].Name})
			return
		}
		s.plans[i].RemainingCuts--
		if s.persist(ctx) {
			s.notify(ctx, notify.Event{Kind: notify.CreditUsed, Subject: s.plans[i].Name, Count: s.plans[i].RemainingCuts})
		}
		return
	}
}

// ResetCredits restores the plan's remaining cuts to its total. When payment
// asks for it, the renewal is also recorded as a revenue entry dated today,
// but only once the plan itself has persisted.
func (s *PlanStore) ResetCredits(ctx context.Context, id string, payment PaymentDetails) {
	s.mu.Lock()
	var renewed *core.ClientPlan
	for i := range s.plans {
		if s.plans[i].ID != id {
			continue
		}
		s.plans[i].RemainingCuts = s.plans[i].TotalCuts
		if s.persist(ctx) {
			s.notify(ctx, notify.Event{Kind: notify.PlanRenewed, Subject: s.plans[i].Name, Count: s.plans[i].RemainingCuts})
			p := s.plans[i]
			renewed = &p
		}
		break
	}
	s.mu.Unlock()

	if renewed != nil {
		s.recordRevenue(ctx, "Renovação - "+renewed.Name, renewed.Price, payment)
	}
}

func (s *PlanStore) sortPlans() {
	sort.SliceStable(s.plans, func(i, j int) bool {
		return s.plans[i].Name < s.plans[j].Name
	})
}

// persist writes the full collection. On failure the in-memory state is kept
// and a save-failed event replaces the mutation's own event.
func (s *PlanStore) persist(ctx context.Context) bool {
	plans := s.plans
	if plans == nil {
		plans = []core.ClientPlan{}
	}
	data, err := json.Marshal(plans)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode plans", "error", err)
		return false
	}
	if err := s.store.Set(ctx, storage.KeyClientPlans, data); err != nil {
		s.log.ErrorContext(ctx, "Failed to save plans", "error", err, "count", len(s.plans))
		s.notify(ctx, notify.Event{Kind: notify.SaveFailed})
		return false
	}
	return true
}

func (s *PlanStore) notify(ctx context.Context, e notify.Event) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, e)
	}
}

// recordRevenue logs a plan purchase or renewal as a service. It needs both
// the revenue flag and a valid payment method; anything else is skipped so
// the service log never holds an unknown method.
func (s *PlanStore) recordRevenue(ctx context.Context, name string, price core.Money, payment PaymentDetails) {
	if !payment.AddToRevenue || s.revenue == nil {
		return
	}
	if payment.Method.Validate() != nil {
		return
	}
	s.revenue.Add(ctx, core.Service{
		Name:          name,
		Price:         price,
		PaymentMethod: payment.Method,
		Date:          core.Today(),
	})
}
