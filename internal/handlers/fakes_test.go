package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/internal/services"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

// store backs the services with maps so the HTTP layer can be exercised
// without a database.
type store struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	houses   map[uint]*models.House
	bookings map[uint]*models.Booking
	nextID   uint
	failWith error
}

func newStore() *store {
	return &store{
		users:    map[uint]*models.User{},
		houses:   map[uint]*models.House{},
		bookings: map[uint]*models.Booking{},
		nextID:   100,
	}
}

func (s *store) id() uint {
	s.nextID++
	return s.nextID
}

type userStore struct{ *store }

func (s userStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperror.Conflict("Duplicate field value entered")
		}
	}
	if u.ID == 0 {
		u.ID = s.id()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s userStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("No user with the id of %d", id)
	}
	cp := *u
	return &cp, nil
}

func (s userStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == models.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("No user with that email")
}

func (s userStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

type houseStore struct{ *store }

func (s houseStore) Search(_ context.Context, f models.HouseFilter) ([]models.House, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, 0, s.failWith
	}
	out := []models.House{}
	for _, h := range s.houses {
		if f.Matches(*h) {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, int64(len(out)), nil
}

func (s houseStore) WithinBox(_ context.Context, box utils.BoundingBox) ([]models.House, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.House
	for _, h := range s.houses {
		if box.Contains(utils.Point{Lat: h.Location.Lat, Lng: h.Location.Lng}) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (s houseStore) FindByID(_ context.Context, id uint) (*models.House, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.houses[id]
	if !ok {
		return nil, apperror.NotFound("No house with the id of %d", id)
	}
	cp := *h
	return &cp, nil
}

func (s houseStore) Create(_ context.Context, h *models.House) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.id()
	h.CreatedAt = time.Now()
	cp := *h
	s.houses[h.ID] = &cp
	return nil
}

func (s houseStore) Update(_ context.Context, h *models.House) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *h
	s.houses[h.ID] = &cp
	return nil
}

func (s houseStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.houses[id]; !ok {
		return apperror.NotFound("No house with the id of %d", id)
	}
	delete(s.houses, id)
	for bid, b := range s.bookings {
		if b.HouseID == id {
			delete(s.bookings, bid)
		}
	}
	return nil
}

type bookingStore struct{ *store }

func (s bookingStore) CountOverlapping(_ context.Context, houseID uint, in, out time.Time, excludeID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, b := range s.bookings {
		if b.HouseID == houseID && b.ID != excludeID && b.Status.IsActive() && b.Overlaps(in, out) {
			n++
		}
	}
	return n, nil
}

func (s bookingStore) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	b.CreatedAt = time.Now()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s bookingStore) Update(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s bookingStore) FindByID(_ context.Context, id uint, withHouse bool) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, apperror.NotFound("No booking with the id of %d", id)
	}
	cp := *b
	if withHouse {
		if h, ok := s.houses[b.HouseID]; ok {
			house := *h
			cp.House = &house
		}
	}
	return &cp, nil
}

func (s bookingStore) ListByHouse(_ context.Context, houseID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.bookings {
		if b.HouseID == houseID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (s bookingStore) List(_ context.Context, userID *uint, page utils.Pagination) ([]models.Booking, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.Booking{}
	for _, b := range s.bookings {
		if userID == nil || b.UserID == *userID {
			all = append(all, *b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if page.Skip >= len(all) {
		return []models.Booking{}, total, nil
	}
	end := page.Skip + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[page.Skip:end], total, nil
}

func (s bookingStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return apperror.NotFound("No booking with the id of %d", id)
	}
	delete(s.bookings, id)
	return nil
}

// fixedGeocoder knows one zip code.
type fixedGeocoder struct {
	zip   string
	point utils.Point
}

func (g fixedGeocoder) Geocode(_ context.Context, q string) (*services.GeoResult, error) {
	if q != g.zip {
		return nil, apperror.NotFound("No location found for %s", q)
	}
	return &services.GeoResult{Point: g.point, ZipCode: q}, nil
}

type fakeAudit struct {
	entries []services.AuditEntry
	err     error
}

func (a *fakeAudit) History(_ context.Context, resource string, id uint, limit int64) ([]services.AuditEntry, error) {
	if a.err != nil {
		return nil, a.err
	}
	var out []services.AuditEntry
	for _, e := range a.entries {
		if e.Resource == resource && e.ResourceID == id && int64(len(out)) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}
