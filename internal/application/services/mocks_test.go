package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/domain/repositories"
)

// Repositories

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) ListByUser(ctx context.Context, userID string, filter repositories.AppointmentFilter) ([]*entities.AppointmentView, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AppointmentView), args.Error(1)
}

func (m *MockAppointmentRepository) BookedTimes(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAppointmentRepository) IsSlotTaken(ctx context.Context, doctorID string, date time.Time, slot string) (bool, error) {
	args := m.Called(ctx, doctorID, date, slot)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) ListScheduledOn(ctx context.Context, date time.Time) ([]*entities.Appointment, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) Search(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Doctor), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByMobile(ctx context.Context, mobile string) (*entities.User, error) {
	return m.user(m.Called(ctx, mobile))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByAbhaID(ctx context.Context, abhaID string) (*entities.User, error) {
	return m.user(m.Called(ctx, abhaID))
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) user(args mock.Arguments) (*entities.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entities.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) ExistsForExtra(ctx context.Context, userID string, notificationType entities.NotificationType, key, value string, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, notificationType, key, value, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockMedicineRepository struct {
	mock.Mock
}

func (m *MockMedicineRepository) CreateTracker(ctx context.Context, tracker *entities.MedicineTracker) error {
	args := m.Called(ctx, tracker)
	return args.Error(0)
}

func (m *MockMedicineRepository) ListActiveTrackers(ctx context.Context, userID string) ([]*entities.MedicineTracker, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MedicineTracker), args.Error(1)
}

func (m *MockMedicineRepository) ListAllActiveTrackers(ctx context.Context) ([]*entities.MedicineTracker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MedicineTracker), args.Error(1)
}

func (m *MockMedicineRepository) CreatePrescription(ctx context.Context, p *entities.Prescription) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockMedicineRepository) UpdatePrescription(ctx context.Context, p *entities.Prescription) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockMedicineRepository) ListPrescriptions(ctx context.Context, userID string) ([]*entities.Prescription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Prescription), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *entities.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, userID, id string) (*entities.Document, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByUser(ctx context.Context, userID, documentType string) ([]*entities.Document, error) {
	args := m.Called(ctx, userID, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByIDs(ctx context.Context, userID string, ids []string) ([]*entities.Document, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

func (m *MockDocumentRepository) CreateSummary(ctx context.Context, summary *entities.RecordSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) ListSymptoms(ctx context.Context, category string) ([]*entities.Symptom, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Symptom), args.Error(1)
}

func (m *MockAssessmentRepository) Create(ctx context.Context, assessment *entities.SymptomAssessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.SymptomAssessment, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SymptomAssessment), args.Error(1)
}

type MockLabRepository struct {
	mock.Mock
}

func (m *MockLabRepository) ListTests(ctx context.Context, category string) ([]*entities.LabTest, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LabTest), args.Error(1)
}

func (m *MockLabRepository) GetTestsByIDs(ctx context.Context, ids []string) ([]*entities.LabTest, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LabTest), args.Error(1)
}

func (m *MockLabRepository) CreateBooking(ctx context.Context, booking *entities.LabBooking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

type MockCarePackageRepository struct {
	mock.Mock
}

func (m *MockCarePackageRepository) ListActive(ctx context.Context) ([]*entities.CarePackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CarePackage), args.Error(1)
}

func (m *MockCarePackageRepository) GetByID(ctx context.Context, id string) (*entities.CarePackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CarePackage), args.Error(1)
}

func (m *MockCarePackageRepository) HasActiveSubscription(ctx context.Context, userID, packageID string) (bool, error) {
	args := m.Called(ctx, userID, packageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarePackageRepository) Subscribe(ctx context.Context, sub *entities.UserCarePackage) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// Providers

type MockHospitalSystem struct {
	mock.Mock
}

func (m *MockHospitalSystem) SearchDoctors(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func (m *MockHospitalSystem) GetDoctorAvailability(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockHospitalSystem) ShareProfile(ctx context.Context, share entities.ProfileShare) (string, error) {
	args := m.Called(ctx, share)
	return args.String(0), args.Error(1)
}

func (m *MockHospitalSystem) BookAppointment(ctx context.Context, booking entities.HMISBooking) (*entities.HMISBookingResult, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HMISBookingResult), args.Error(1)
}

func (m *MockHospitalSystem) ListHospitals(ctx context.Context) ([]entities.Hospital, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Hospital), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.HealthEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.HealthEvent, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return m.Called(ctx, channel).Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockOTPSender struct {
	mock.Mock
}

func (m *MockOTPSender) SendOTP(ctx context.Context, mobile, code string, validFor time.Duration) error {
	args := m.Called(ctx, mobile, code, validFor)
	return args.Error(0)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) AnalyzeSymptoms(ctx context.Context, in entities.SymptomInput) *entities.SymptomAnalysis {
	return m.Called(ctx, in).Get(0).(*entities.SymptomAnalysis)
}

func (m *MockAnalyzer) TranscribeAudio(ctx context.Context, audio providers.Attachment) *entities.Transcription {
	return m.Called(ctx, audio).Get(0).(*entities.Transcription)
}

func (m *MockAnalyzer) SummarizeRecords(ctx context.Context, docs []entities.DocumentMeta) *entities.RecordSummaryResult {
	return m.Called(ctx, docs).Get(0).(*entities.RecordSummaryResult)
}

func (m *MockAnalyzer) AnalyzePrescription(ctx context.Context, image providers.Attachment) *entities.PrescriptionAnalysis {
	return m.Called(ctx, image).Get(0).(*entities.PrescriptionAnalysis)
}

func (m *MockAnalyzer) GenerateHealthInsights(ctx context.Context, profile entities.ProfileSubset, docs []entities.DocumentMeta, history []entities.SymptomHistoryEntry) *entities.HealthInsights {
	return m.Called(ctx, profile, docs, history).Get(0).(*entities.HealthInsights)
}

// Helpers

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func floatPtr(v float64) *float64 { return &v }

// silentNotifications returns a notification service that accepts every
// write and has no event bus
func silentNotifications() (*MockNotificationRepository, *services.NotificationService) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return repo, services.NewNotificationService(repo, nil, nil, nil, 30, fixedClock)
}

type MockAmbulanceRepository struct {
	mock.Mock
}

func (m *MockAmbulanceRepository) ListServices(ctx context.Context, serviceType string) ([]*entities.AmbulanceService, error) {
	args := m.Called(ctx, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AmbulanceService), args.Error(1)
}

func (m *MockAmbulanceRepository) GetService(ctx context.Context, id string) (*entities.AmbulanceService, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AmbulanceService), args.Error(1)
}

func (m *MockAmbulanceRepository) CreateBooking(ctx context.Context, booking *entities.AmbulanceBooking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, msg *entities.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepository) ListRoom(ctx context.Context, roomID string, limit int) ([]*entities.ChatMessage, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ChatMessage), args.Error(1)
}
