package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

func quietLogger() *logrus.Logger {
	log, _ := logtest.NewNullLogger()
	log.SetOutput(io.Discard)
	return log
}

// memStore is an in-memory stand-in for the gorm repositories. Booking
// writes enforce the overlap rule the same way the exclusion constraint does.
type memStore struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	houses   map[uint]*models.House
	bookings map[uint]*models.Booking
	nextID   uint
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uint]*models.User{},
		houses:   map[uint]*models.House{},
		bookings: map[uint]*models.Booking{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) addHouse(h models.House) *models.House {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.ID == 0 {
		h.ID = m.id()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	m.houses[h.ID] = &h
	cp := h
	return &cp
}

func (m *memStore) addBooking(b models.Booking) *models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.id()
	m.bookings[b.ID] = &b
	cp := b
	return &cp
}

// users

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperror.Conflict("Duplicate field value entered")
		}
	}
	u.ID = m.id()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m memUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("No user with the id of %d", id)
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == models.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("No user with that email")
}

func (m memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// houses

type memHouses struct{ *memStore }

func (m memHouses) Search(_ context.Context, f models.HouseFilter) ([]models.House, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.House
	for _, h := range m.houses {
		if f.Matches(*h) {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (m memHouses) WithinBox(_ context.Context, box utils.BoundingBox) ([]models.House, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.House
	for _, h := range m.houses {
		if box.Contains(utils.Point{Lat: h.Location.Lat, Lng: h.Location.Lng}) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m memHouses) FindByID(_ context.Context, id uint) (*models.House, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	h, ok := m.houses[id]
	if !ok {
		return nil, apperror.NotFound("No house with the id of %d", id)
	}
	cp := *h
	return &cp, nil
}

func (m memHouses) Create(_ context.Context, h *models.House) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = m.id()
	h.CreatedAt = time.Now()
	cp := *h
	m.houses[h.ID] = &cp
	return nil
}

func (m memHouses) Update(_ context.Context, h *models.House) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *h
	m.houses[h.ID] = &cp
	return nil
}

func (m memHouses) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.houses[id]; !ok {
		return apperror.NotFound("No house with the id of %d", id)
	}
	delete(m.houses, id)
	for bid, b := range m.bookings {
		if b.HouseID == id {
			delete(m.bookings, bid)
		}
	}
	return nil
}

// bookings

type memBookings struct{ *memStore }

func (m memBookings) overlapping(houseID uint, in, out time.Time, excludeID uint) int64 {
	var n int64
	for _, b := range m.bookings {
		if b.HouseID == houseID && b.ID != excludeID && b.Status.IsActive() && b.Overlaps(in, out) {
			n++
		}
	}
	return n
}

func (m memBookings) CountOverlapping(_ context.Context, houseID uint, in, out time.Time, excludeID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapping(houseID, in, out, excludeID), nil
}

func (m memBookings) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.Status.IsActive() && m.overlapping(b.HouseID, b.CheckIn, b.CheckOut, 0) > 0 {
		return apperror.Conflict("House is already booked for the selected dates")
	}
	b.ID = m.id()
	b.CreatedAt = time.Now()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m memBookings) Update(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.Status.IsActive() && m.overlapping(b.HouseID, b.CheckIn, b.CheckOut, b.ID) > 0 {
		return apperror.Conflict("House is already booked for the selected dates")
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m memBookings) FindByID(_ context.Context, id uint, withHouse bool) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperror.NotFound("No booking with the id of %d", id)
	}
	cp := *b
	if withHouse {
		h := *m.houses[b.HouseID]
		cp.House = &h
	}
	return &cp, nil
}

func (m memBookings) ListByHouse(_ context.Context, houseID uint) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.HouseID == houseID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (m memBookings) List(_ context.Context, userID *uint, page utils.Pagination) ([]models.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Booking
	for _, b := range m.bookings {
		if userID == nil || b.UserID == *userID {
			all = append(all, *b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if page.Skip >= len(all) {
		return nil, total, nil
	}
	end := page.Skip + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[page.Skip:end], total, nil
}

func (m memBookings) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return apperror.NotFound("No booking with the id of %d", id)
	}
	delete(m.bookings, id)
	return nil
}

// recorder captures events.

type recorder struct {
	mu       sync.Mutex
	bookings []BookingEvent
	houses   []HouseEvent
	err      error
}

func (r *recorder) NotifyBooking(_ context.Context, e BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, e)
	return r.err
}

func (r *recorder) NotifyHouse(_ context.Context, e HouseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.houses = append(r.houses, e)
	return r.err
}

// stubGeocoder resolves from a fixed table.

type stubGeocoder struct {
	places map[string]utils.Point
	calls  int
}

func (g *stubGeocoder) Geocode(_ context.Context, q string) (*GeoResult, error) {
	g.calls++
	p, ok := g.places[q]
	if !ok {
		return nil, apperror.NotFound("No location found for %q", q)
	}
	return &GeoResult{Point: p, City: "City " + q, ZipCode: q}, nil
}

type failingGeocoder struct{}

func (failingGeocoder) Geocode(context.Context, string) (*GeoResult, error) {
	return nil, apperror.Upstream("Geocoding failed", errors.New("timeout"))
}

// memPhotos stores photos in a map.

type memPhotos struct {
	saved   map[string][]byte
	deleted []string
	fail    bool
}

func (p *memPhotos) Save(_ context.Context, folder, name, _ string, data []byte) (string, error) {
	if p.fail {
		return "", errors.New("bucket unavailable")
	}
	if p.saved == nil {
		p.saved = map[string][]byte{}
	}
	url := fmt.Sprintf("https://cdn.example.com/%s/%s", folder, name)
	p.saved[url] = data
	return url, nil
}

func (p *memPhotos) Delete(_ context.Context, url string) error {
	p.deleted = append(p.deleted, url)
	return nil
}
