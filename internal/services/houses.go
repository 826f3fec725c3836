package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

// HousePatch holds the listing fields an update may change. The owner is
// fixed at creation.
type HousePatch struct {
	Title       *string
	Description *string
	Price       *float64
	Bedrooms    *int
	Bathrooms   *int
	Images      *[]string
	Amenities   *[]string
	IsAvailable *bool
	Location    *models.Location
}

// PhotoUpload is a file received from a multipart form.
type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type HouseService struct {
	houses    HouseStore
	geocoder  Geocoder
	photos    PhotoStore
	notifier  HouseNotifier
	maxUpload int64
	log       logrus.FieldLogger
}

func NewHouseService(houses HouseStore, geocoder Geocoder, photos PhotoStore, notifier HouseNotifier, maxUpload int64, log logrus.FieldLogger) *HouseService {
	return &HouseService{
		houses:    houses,
		geocoder:  geocoder,
		photos:    photos,
		notifier:  notifier,
		maxUpload: maxUpload,
		log:       log,
	}
}

func (s *HouseService) Search(ctx context.Context, f models.HouseFilter) ([]models.House, int64, error) {
	return s.houses.Search(ctx, f)
}

func (s *HouseService) Get(ctx context.Context, id uint) (*models.House, error) {
	return s.houses.FindByID(ctx, id)
}

func (s *HouseService) Create(ctx context.Context, caller Caller, house *models.House) (*models.House, error) {
	house.ID = 0
	house.OwnerID = caller.ID
	house.Owner = nil

	if err := s.locate(ctx, &house.Location); err != nil {
		return nil, err
	}
	if err := house.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}
	if err := s.houses.Create(ctx, house); err != nil {
		return nil, err
	}

	s.notify(ctx, HouseCreated, house.ID, caller)
	return house, nil
}

func (s *HouseService) Update(ctx context.Context, caller Caller, id uint, patch HousePatch) (*models.House, error) {
	house, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		house.Title = *patch.Title
	}
	if patch.Description != nil {
		house.Description = *patch.Description
	}
	if patch.Price != nil {
		house.Price = *patch.Price
	}
	if patch.Bedrooms != nil {
		house.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		house.Bathrooms = *patch.Bathrooms
	}
	if patch.Images != nil {
		house.Images = *patch.Images
	}
	if patch.Amenities != nil {
		house.Amenities = *patch.Amenities
	}
	if patch.IsAvailable != nil {
		house.IsAvailable = *patch.IsAvailable
	}
	if patch.Location != nil {
		house.Location = *patch.Location
		if err := s.locate(ctx, &house.Location); err != nil {
			return nil, err
		}
	}

	if err := house.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}
	if err := s.houses.Update(ctx, house); err != nil {
		return nil, err
	}

	s.notify(ctx, HouseUpdated, house.ID, caller)
	return house, nil
}

// Delete removes the house along with its bookings and uploaded photo.
func (s *HouseService) Delete(ctx context.Context, caller Caller, id uint) error {
	house, err := s.authorized(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.houses.Delete(ctx, id); err != nil {
		return err
	}

	if house.Photo != "" && s.photos != nil {
		if err := s.photos.Delete(ctx, house.Photo); err != nil {
			s.log.WithError(err).WithField("houseId", id).Warn("failed to remove house photo")
		}
	}

	s.notify(ctx, HouseDeleted, id, caller)
	return nil
}

// InRadius finds houses within distance miles of the zipcode's location.
func (s *HouseService) InRadius(ctx context.Context, zipcode string, distance float64) ([]models.House, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return nil, apperror.Validation("Distance must be a positive number")
	}

	place, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	box := utils.GetBoundingBox(place.Point, distance, utils.EarthRadiusMiles)
	candidates, err := s.houses.WithinBox(ctx, box)
	if err != nil {
		return nil, err
	}

	houses := make([]models.House, 0, len(candidates))
	for _, h := range candidates {
		p := utils.Point{Lat: h.Location.Lat, Lng: h.Location.Lng}
		if utils.IsWithinRadius(place.Point, p, distance) {
			houses = append(houses, h)
		}
	}
	return houses, nil
}

// UploadPhoto stores an image as photo_<id><ext> and records it on the house.
func (s *HouseService) UploadPhoto(ctx context.Context, caller Caller, id uint, file *PhotoUpload) (*models.House, error) {
	house, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if file == nil || file.Body == nil {
		return nil, apperror.Validation("Please upload a file")
	}
	if file.Size > s.maxUpload {
		return nil, apperror.Validation("Please upload an image less than %d bytes", s.maxUpload)
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, s.maxUpload+1))
	if err != nil {
		return nil, apperror.Upstream("Problem with file upload", err)
	}
	if int64(len(data)) > s.maxUpload {
		return nil, apperror.Validation("Please upload an image less than %d bytes", s.maxUpload)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.Validation("Please upload an image file")
	}

	name := fmt.Sprintf("photo_%d%s", house.ID, strings.ToLower(filepath.Ext(file.Filename)))
	url, err := s.photos.Save(ctx, "houses", name, contentType, data)
	if err != nil {
		return nil, apperror.Upstream("Problem with file upload", err)
	}

	house.Photo = url
	if !contains(house.Images, url) {
		house.Images = append(house.Images, url)
	}
	if err := s.houses.Update(ctx, house); err != nil {
		return nil, err
	}

	s.notify(ctx, HouseUpdated, house.ID, caller)
	return house, nil
}

func (s *HouseService) authorized(ctx context.Context, caller Caller, id uint) (*models.House, error) {
	house, err := s.houses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(house.OwnerID) {
		return nil, apperror.Unauthorized("User %d is not authorized to update this house", caller.ID)
	}
	return house, nil
}

// locate fills coordinates from the zip code when none were given.
func (s *HouseService) locate(ctx context.Context, loc *models.Location) error {
	if loc.HasCoordinates() || loc.ZipCode == "" || s.geocoder == nil {
		return nil
	}

	place, err := s.geocoder.Geocode(ctx, loc.ZipCode)
	if err != nil {
		return err
	}
	loc.Lat = place.Point.Lat
	loc.Lng = place.Point.Lng
	if loc.City == "" {
		loc.City = place.City
	}
	if loc.State == "" {
		loc.State = place.State
	}
	if loc.Address == "" {
		loc.Address = place.Address
	}
	return nil
}

func (s *HouseService) notify(ctx context.Context, action HouseAction, id uint, caller Caller) {
	if s.notifier == nil {
		return
	}
	event := HouseEvent{Action: action, HouseID: id, ActorID: caller.ID, At: time.Now().UTC()}
	if err := s.notifier.NotifyHouse(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"houseId": id,
		}).Warn("house event delivery failed")
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
