// Command seed loads sample data into the database or wipes it.
//
//	seed -i   create the admin user and the sample houses
//	seed -d   delete all users, houses and bookings
package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chachabrian/staybook-backend/internal/config"
	"github.com/chachabrian/staybook-backend/internal/database"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/internal/repository"
)

var sampleHouses = []models.House{
	{
		Title:       "Luxury Beachfront Villa",
		Description: "Beautiful villa with direct beach access and stunning ocean views. Perfect for family vacations.",
		Price:       350,
		Bedrooms:    4,
		Bathrooms:   3,
		Images: []string{
			"https://images.unsplash.com/photo-1512917774080-9991f1c4c750",
			"https://images.unsplash.com/photo-1613490493576-7fde63acd811",
		},
		Amenities:   []string{"Pool", "WiFi", "Air Conditioning", "Kitchen", "Free Parking"},
		IsAvailable: true,
		Location: models.Location{
			Lat: 17.3850, Lng: 78.4867,
			Address: "123 Beach Road", City: "Hyderabad", State: "Telangana", ZipCode: "500001",
		},
	},
	{
		Title:       "Modern City Apartment",
		Description: "Stylish apartment in the heart of the city with amazing skyline views.",
		Price:       150,
		Bedrooms:    2,
		Bathrooms:   2,
		Images: []string{
			"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267",
			"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688",
		},
		Amenities:   []string{"WiFi", "Air Conditioning", "Gym", "Security"},
		IsAvailable: true,
		Location: models.Location{
			Lat: 17.3755, Lng: 78.4761,
			Address: "456 City Center", City: "Hyderabad", State: "Telangana", ZipCode: "500002",
		},
	},
	{
		Title:       "Cozy Garden Cottage",
		Description: "Charming cottage surrounded by beautiful gardens in a peaceful neighborhood.",
		Price:       120,
		Bedrooms:    1,
		Bathrooms:   1,
		Images: []string{
			"https://images.unsplash.com/photo-1518780664697-55e3ad937233",
			"https://images.unsplash.com/photo-1449158743715-0a90ebb6d2d8",
		},
		Amenities:   []string{"Garden", "WiFi", "Kitchen", "Parking"},
		IsAvailable: true,
		Location: models.Location{
			Lat: 17.3934, Lng: 78.4931,
			Address: "789 Garden Lane", City: "Hyderabad", State: "Telangana", ZipCode: "500003",
		},
	},
}

func main() {
	importData := flag.Bool("i", false, "import the sample data")
	deleteData := flag.Bool("d", false, "delete all data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := cfg.NewLogger()

	if *importData == *deleteData {
		log.Fatal("Pass exactly one of -i or -d")
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if *deleteData {
		if err := database.Truncate(db); err != nil {
			log.Fatalf("Failed to delete data: %v", err)
		}
		log.Info("Data Destroyed...")
		return
	}

	if err := seed(context.Background(), db); err != nil {
		log.Fatalf("Failed to import data: %v", err)
	}
	log.WithField("houses", len(sampleHouses)).Info("Data Imported...")
}

func seed(ctx context.Context, db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		admin := &models.User{Name: "Admin User", Email: "admin@example.com", Role: models.RoleAdmin}
		if err := admin.SetPassword("123456"); err != nil {
			return err
		}
		if err := repository.NewUserRepository(tx).Create(ctx, admin); err != nil {
			return err
		}

		houses := repository.NewHouseRepository(tx)
		for _, h := range sampleHouses {
			house := h
			house.OwnerID = admin.ID
			if err := house.Validate(); err != nil {
				return err
			}
			if err := houses.Create(ctx, &house); err != nil {
				return err
			}
		}
		return nil
	})
}
