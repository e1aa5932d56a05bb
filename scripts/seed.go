package main

import (
	"context"
	"os"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	"github.com/zatekoja/phr/backend/pkg/config"
)

// seeder inserts the reference catalogues the API reads from
type seeder struct {
	db *goqu.Database
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("phr-seed", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating catalogue tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				user_care_packages,
				care_packages,
				lab_bookings,
				ambulance_bookings,
				ambulance_services,
				chat_messages,
				lab_tests,
				symptoms,
				appointments,
				doctors
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	s := &seeder{db: goqu.New("postgres", pgClient.DB())}

	s.insert(ctx, "doctors", doctorRecords())
	s.insert(ctx, "symptoms", symptomRecords())
	s.insert(ctx, "lab_tests", labTestRecords())
	s.insert(ctx, "care_packages", carePackageRecords())
	s.insert(ctx, "ambulance_services", ambulanceRecords())

	log.Info().Msg("Seeding completed successfully")
}

func (s *seeder) insert(ctx context.Context, table string, records []goqu.Record) {
	rows := make([]interface{}, len(records))
	for i, r := range records {
		rows[i] = r
	}

	query, args, err := s.db.Insert(table).Rows(rows...).OnConflict(goqu.DoNothing()).ToSQL()
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("Failed to build insert")
		return
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("Failed to seed table")
		return
	}
	n, _ := res.RowsAffected()
	log.Info().Str("table", table).Int64("rows", n).Msg("Seeded")
}

func price(v float64) *float64 { return &v }

func doctorRecords() []goqu.Record {
	weekdays := entities.WeeklyAvailability{
		"monday":    {"09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "14:30", "15:00"},
		"tuesday":   {"09:00", "09:30", "10:00", "10:30", "11:00"},
		"wednesday": {"09:00", "09:30", "10:00", "14:00", "14:30", "15:00"},
		"thursday":  {"09:00", "09:30", "10:00", "10:30", "11:00"},
		"friday":    {"09:00", "09:30", "10:00", "14:00", "14:30"},
	}
	saturdays := entities.WeeklyAvailability{
		"saturday": {"10:00", "10:30", "11:00", "11:30"},
	}

	doctors := []struct {
		name, specialty, qualification, hospital string
		experience                               int
		fee, rating                              float64
		availability                             entities.WeeklyAvailability
	}{
		{"Dr. Asha Menon", "General Medicine", "MBBS, MD", "City General Hospital", 12, 500, 4.6, weekdays},
		{"Dr. Rahul Verma", "Cardiology", "MBBS, MD, DM (Cardiology)", "Heart Care Institute", 18, 1200, 4.8, weekdays},
		{"Dr. Priya Nair", "Dermatology", "MBBS, DDVL", "Skin & Care Clinic", 8, 700, 4.4, saturdays},
		{"Dr. Imran Sheikh", "Orthopedics", "MBBS, MS (Ortho)", "City General Hospital", 15, 900, 4.5, weekdays},
		{"Dr. Kavya Iyer", "Pediatrics", "MBBS, DCH", "Children's Wellness Centre", 10, 600, 4.7, weekdays},
		{"Dr. Arjun Rao", "Neurology", "MBBS, MD, DM (Neurology)", "NeuroLife Hospital", 20, 1500, 4.9, saturdays},
	}

	records := make([]goqu.Record, 0, len(doctors))
	for _, d := range doctors {
		records = append(records, goqu.Record{
			"id":               uuid.New().String(),
			"name":             d.name,
			"specialty":        d.specialty,
			"qualification":    d.qualification,
			"experience_years": d.experience,
			"hospital_name":    d.hospital,
			"consultation_fee": d.fee,
			"rating":           d.rating,
			"availability":     d.availability,
			"is_active":        true,
		})
	}
	return records
}

func symptomRecords() []goqu.Record {
	levels := entities.StringList{"mild", "moderate", "severe"}
	symptoms := []struct {
		name, description, category string
		specialties                 entities.StringList
	}{
		{"Fever", "Raised body temperature", "general", entities.StringList{"General Medicine"}},
		{"Headache", "Pain in the head or neck region", "neurological", entities.StringList{"General Medicine", "Neurology"}},
		{"Chest Pain", "Pain or discomfort in the chest", "cardiovascular", entities.StringList{"Cardiology"}},
		{"Shortness of Breath", "Difficulty breathing", "respiratory", entities.StringList{"Pulmonology", "Cardiology"}},
		{"Cough", "Persistent or recurring cough", "respiratory", entities.StringList{"General Medicine", "Pulmonology"}},
		{"Skin Rash", "Redness, itching or eruptions on the skin", "dermatological", entities.StringList{"Dermatology"}},
		{"Joint Pain", "Pain or stiffness in one or more joints", "musculoskeletal", entities.StringList{"Orthopedics"}},
		{"Abdominal Pain", "Pain between the chest and pelvis", "gastrointestinal", entities.StringList{"Gastroenterology", "General Medicine"}},
		{"Dizziness", "Light-headedness or loss of balance", "neurological", entities.StringList{"Neurology", "General Medicine"}},
		{"Fatigue", "Persistent tiredness", "general", entities.StringList{"General Medicine"}},
	}

	records := make([]goqu.Record, 0, len(symptoms))
	for _, s := range symptoms {
		records = append(records, goqu.Record{
			"id":                     uuid.New().String(),
			"name":                   s.name,
			"description":            s.description,
			"category":               s.category,
			"severity_levels":        levels,
			"associated_specialties": s.specialties,
		})
	}
	return records
}

func labTestRecords() []goqu.Record {
	tests := []entities.LabTest{
		{Name: "Complete Blood Count", Description: "Measures blood cells and haemoglobin", Category: "haematology",
			NormalRange: "Hb 12-17 g/dL", Price: price(350), PreparationInstructions: "No fasting required"},
		{Name: "Fasting Blood Sugar", Description: "Blood glucose after an overnight fast", Category: "diabetes",
			NormalRange: "70-100 mg/dL", Price: price(150), PreparationInstructions: "Fast for 8-10 hours"},
		{Name: "HbA1c", Description: "Average blood sugar over three months", Category: "diabetes",
			NormalRange: "Below 5.7%", Price: price(500), PreparationInstructions: "No fasting required"},
		{Name: "Lipid Profile", Description: "Cholesterol and triglycerides", Category: "cardiac",
			NormalRange: "Total cholesterol below 200 mg/dL", Price: price(600), PreparationInstructions: "Fast for 12 hours"},
		{Name: "Thyroid Profile", Description: "T3, T4 and TSH levels", Category: "hormone",
			NormalRange: "TSH 0.4-4.0 mIU/L", Price: price(550), PreparationInstructions: "Morning sample preferred"},
		{Name: "Liver Function Test", Description: "Liver enzymes, bilirubin and proteins", Category: "biochemistry",
			NormalRange: "ALT 7-56 U/L", Price: price(700), PreparationInstructions: "Fast for 8 hours"},
	}

	records := make([]goqu.Record, 0, len(tests))
	for _, t := range tests {
		records = append(records, goqu.Record{
			"id":                       uuid.New().String(),
			"name":                     t.Name,
			"description":              t.Description,
			"category":                 t.Category,
			"normal_range":             t.NormalRange,
			"price":                    t.Price,
			"preparation_instructions": t.PreparationInstructions,
			"is_active":                true,
		})
	}
	return records
}

func carePackageRecords() []goqu.Record {
	packages := []entities.CarePackage{
		{Name: "Diabetes Care", Description: "Quarterly monitoring for diabetic patients", Category: "chronic",
			Features: entities.StringList{"Quarterly HbA1c", "Diet consultation", "Medicine reminders"}, Price: price(4999), DurationMonths: 12},
		{Name: "Heart Health", Description: "Cardiac check-ups and lipid monitoring", Category: "chronic",
			Features: entities.StringList{"Lipid profile every 6 months", "ECG", "Cardiologist consultation"}, Price: price(6999), DurationMonths: 12},
		{Name: "Senior Wellness", Description: "Annual preventive package for adults over 60", Category: "preventive",
			Features: entities.StringList{"Full body check-up", "Home sample collection", "Two GP consultations"}, Price: price(3499), DurationMonths: 12},
		{Name: "Mother & Child", Description: "Pregnancy and newborn follow-up", Category: "maternal",
			Features: entities.StringList{"Antenatal visits", "Vaccination schedule", "Pediatric consultations"}, Price: price(8999), DurationMonths: 18},
	}

	records := make([]goqu.Record, 0, len(packages))
	for _, p := range packages {
		records = append(records, goqu.Record{
			"id":              uuid.New().String(),
			"name":            p.Name,
			"description":     p.Description,
			"category":        p.Category,
			"features":        p.Features,
			"price":           p.Price,
			"duration_months": p.DurationMonths,
			"is_active":       true,
		})
	}
	return records
}

func ambulanceRecords() []goqu.Record {
	operators := []entities.AmbulanceService{
		{ServiceName: "City Emergency 108", PhoneNumber: "108", ServiceType: entities.AmbulanceTypeEmergency,
			CoverageArea: "City wide", BasePrice: price(0), Rating: price(4.5)},
		{ServiceName: "LifeLine Ambulance", PhoneNumber: "+91-9800000001", ServiceType: entities.AmbulanceTypeEmergency,
			CoverageArea: "North and Central", BasePrice: price(1500), PerKmRate: price(25), Rating: price(4.7)},
		{ServiceName: "CareRide Patient Transport", PhoneNumber: "+91-9800000002", ServiceType: entities.AmbulanceTypeNonEmergency,
			CoverageArea: "City and suburbs", BasePrice: price(800), PerKmRate: price(15), Rating: price(4.3)},
	}

	records := make([]goqu.Record, 0, len(operators))
	for _, o := range operators {
		records = append(records, goqu.Record{
			"id":            uuid.New().String(),
			"service_name":  o.ServiceName,
			"phone_number":  o.PhoneNumber,
			"service_type":  o.ServiceType,
			"coverage_area": o.CoverageArea,
			"base_price":    o.BasePrice,
			"per_km_rate":   o.PerKmRate,
			"rating":        o.Rating,
			"is_active":     true,
		})
	}
	return records
}
