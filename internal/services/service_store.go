// Package services holds the canonical collections of the application: the
// service log (with its predefined-service catalog) and the client plans.
// Each store owns its collection, persists it wholesale as one JSON document
// per mutation, and emits exactly one change event per mutation.
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

// ServiceStore is the sole owner of the Service collection and the
// predefined-service catalog. The collection is kept sorted by date
// descending; ties keep insertion order.
type ServiceStore struct {
	mu       sync.Mutex
	store    storage.DocumentStore
	notifier notify.Notifier
	log      *slog.Logger

	items   []core.Service
	catalog []core.PredefinedService
	loaded  bool
}

func NewServiceStore(store storage.DocumentStore, notifier notify.Notifier, log *slog.Logger) *ServiceStore {
	if log == nil {
		log = slog.Default()
	}
	return &ServiceStore{store: store, notifier: notifier, log: log}
}

// Load reads the persisted collections. Missing or malformed documents fall
// back to an empty list (services) or the default catalog (templates); a
// failed load is logged, never surfaced.
func (s *ServiceStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if data, ok, err := s.store.Get(ctx, storage.KeyServices); err != nil {
		s.log.ErrorContext(ctx, "Failed to load services, starting empty", "error", err)
	} else if ok {
		var items []core.Service
		if err := json.Unmarshal(data, &items); err != nil {
			s.log.ErrorContext(ctx, "Malformed services document, starting empty", "error", err)
		} else {
			s.items = items
			s.sortItems()
		}
	}

	s.catalog = core.DefaultCatalog()
	if data, ok, err := s.store.Get(ctx, storage.KeyCatalog); err != nil {
		s.log.ErrorContext(ctx, "Failed to load catalog, using defaults", "error", err)
	} else if ok {
		var catalog []core.PredefinedService
		if err := json.Unmarshal(data, &catalog); err != nil {
			s.log.ErrorContext(ctx, "Malformed catalog document, using defaults", "error", err)
		} else {
			s.catalog = catalog
		}
	}

	s.loaded = true
	s.log.InfoContext(ctx, "Services loaded", "services", len(s.items), "templates", len(s.catalog))
}

// Loaded reports whether Load has completed; callers defer rendering until
// it has.
func (s *ServiceStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// All returns a copy of the full collection, most recent date first.
func (s *ServiceStore) All() []core.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Service(nil), s.items...)
}

// Today returns the services dated on the current calendar day.
func (s *ServiceStore) Today() []core.Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := core.Today()
	var out []core.Service
	for _, item := range s.items {
		if item.Date.SameDay(today) {
			out = append(out, item)
		}
	}
	return out
}

// Catalog returns a copy of the predefined-service templates.
func (s *ServiceStore) Catalog() []core.PredefinedService {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PredefinedService(nil), s.catalog...)
}

// Add inserts an already-validated service under a fresh id and returns it.
func (s *ServiceStore) Add(ctx context.Context, svc core.Service) core.Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc.ID = core.NewID()
	s.items = append(s.items, svc)
	s.sortItems()
	if s.persistServices(ctx) {
		s.notify(ctx, notify.Event{Kind: notify.ServiceAdded, Subject: svc.Name})
	}
	return svc
}

// Update replaces the non-id fields of the record matching id. An unknown
// id is a silent no-op.
func (s *ServiceStore) Update(ctx context.Context, id string, svc core.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			svc.ID = id
			s.items[i] = svc
			found = true
			break
		}
	}
	if !found {
		return
	}
	s.sortItems()
	if s.persistServices(ctx) {
		s.notify(ctx, notify.Event{Kind: notify.ServiceUpdated, Subject: svc.Name})
	}
}

// Delete removes the record matching id. An unknown id is a silent no-op.
func (s *ServiceStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0:0]
	var removed *core.Service
	for _, item := range s.items {
		if item.ID == id {
			it := item
			removed = &it
			continue
		}
		kept = append(kept, item)
	}
	if removed == nil {
		return
	}
	s.items = kept
	if s.persistServices(ctx) {
		s.notify(ctx, notify.Event{Kind: notify.ServiceDeleted, Subject: removed.Name})
	}
}

// BulkAdd inserts all services in one persisted transition with fresh ids,
// emitting a single aggregate event. Returns the number added.
func (s *ServiceStore) BulkAdd(ctx context.Context, list []core.Service) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(list) == 0 {
		return 0
	}
	for _, svc := range list {
		svc.ID = core.NewID()
		s.items = append(s.items, svc)
	}
	s.sortItems()
	if s.persistServices(ctx) {
		s.notify(ctx, notify.Event{Kind: notify.ServicesImported, Count: len(list)})
	}
	return len(list)
}

// ClearToday removes every record dated on the current calendar day and
// returns how many were removed. Nothing to remove is a silent no-op.
func (s *ServiceStore) ClearToday(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := core.Today()
	kept := s.items[:0:0]
	removed := 0
	for _, item := range s.items {
		if item.Date.SameDay(today) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0
	}
	s.items = kept
	if s.persistServices(ctx) {
		s.notify(ctx, notify.Event{Kind: notify.ServicesCleared, Count: removed})
	}
	return removed
}

// SaveCatalog replaces the template catalog wholesale, dropping entries with
// an empty name or non-positive price before persisting.
func (s *ServiceStore) SaveCatalog(ctx context.Context, list []core.PredefinedService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]core.PredefinedService, 0, len(list))
	for _, p := range list {
		if p.Validate() != nil {
			continue
		}
		kept = append(kept, p)
	}
	s.catalog = kept

	data, err := json.Marshal(s.catalog)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode catalog", "error", err)
		return
	}
	if err := s.store.Set(ctx, storage.KeyCatalog, data); err != nil {
		s.log.ErrorContext(ctx, "Failed to save catalog", "error", err)
		s.notify(ctx, notify.Event{Kind: notify.SaveFailed})
		return
	}
	s.notify(ctx, notify.Event{Kind: notify.CatalogSaved, Count: len(kept)})
}

func (s *ServiceStore) sortItems() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[j].Date.Before(s.items[i].Date)
	})
}

// persistServices writes the full collection. On failure the in-memory
// state is kept and a save-failed event replaces the mutation's own event,
// so every mutation still produces exactly one notification.
func (s *ServiceStore) persistServices(ctx context.Context) bool {
	items := s.items
	if items == nil {
		items = []core.Service{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode services", "error", err)
		return false
	}
	if err := s.store.Set(ctx, storage.KeyServices, data); err != nil {
		s.log.ErrorContext(ctx, "Failed to save services", "error", err, "count", len(s.items))
		s.notify(ctx, notify.Event{Kind: notify.SaveFailed})
		return false
	}
	return true
}

func (s *ServiceStore) notify(ctx context.Context, e notify.Event) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, e)
	}
}
