package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/phr/backend/internal/api/middleware"
	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

const testUserID = "user-1"

// asUser attaches an authenticated user to the request
func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) RequestOTP(ctx context.Context, mobile string) error {
	return m.Called(ctx, mobile).Error(0)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, mobile, code string) (*services.AuthResult, error) {
	args := m.Called(ctx, mobile, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) LoginWithEmail(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) LoginWithABHA(ctx context.Context, abhaID string) (*services.AuthResult, error) {
	args := m.Called(ctx, abhaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

type MockProfileService struct{ mock.Mock }

func (m *MockProfileService) Get(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID string, update entities.ProfileUpdate) (*entities.User, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockProfileService) QRCode(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockProfileService) Share(ctx context.Context, userID, hospitalID string) (string, error) {
	args := m.Called(ctx, userID, hospitalID)
	return args.String(0), args.Error(1)
}

func (m *MockProfileService) ListHospitals(ctx context.Context) []entities.Hospital {
	return m.Called(ctx).Get(0).([]entities.Hospital)
}

type MockDoctorService struct{ mock.Mock }

func (m *MockDoctorService) Search(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func (m *MockDoctorService) GetAvailability(ctx context.Context, doctorID string, date time.Time) (*entities.AvailabilitySet, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AvailabilitySet), args.Error(1)
}

type MockAppointmentService struct{ mock.Mock }

func (m *MockAppointmentService) Book(ctx context.Context, userID string, req entities.AppointmentRequest) (*entities.Appointment, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) List(ctx context.Context, userID string, status entities.AppointmentStatus) ([]*entities.AppointmentView, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AppointmentView), args.Error(1)
}

type MockAssessmentService struct{ mock.Mock }

func (m *MockAssessmentService) ListSymptoms(ctx context.Context, category string) ([]*entities.Symptom, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Symptom), args.Error(1)
}

func (m *MockAssessmentService) Assess(ctx context.Context, userID string, in entities.SymptomInput) (*entities.SymptomAssessment, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SymptomAssessment), args.Error(1)
}

func (m *MockAssessmentService) AssessAudio(ctx context.Context, userID string, audio entities.Upload) (*services.AudioAssessmentResult, error) {
	args := m.Called(ctx, userID, audio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AudioAssessmentResult), args.Error(1)
}

func (m *MockAssessmentService) History(ctx context.Context, userID string, limit int) ([]*entities.SymptomAssessment, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SymptomAssessment), args.Error(1)
}

type MockRecordService struct{ mock.Mock }

func (m *MockRecordService) Upload(ctx context.Context, userID string, req services.UploadRequest) (*entities.Document, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

func (m *MockRecordService) List(ctx context.Context, userID, documentType string) ([]*entities.Document, error) {
	args := m.Called(ctx, userID, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

func (m *MockRecordService) Download(ctx context.Context, userID, id string) (*services.DocumentContent, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DocumentContent), args.Error(1)
}

func (m *MockRecordService) Summarize(ctx context.Context, userID string, req services.SummarizeRequest) (*services.SummaryOutcome, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SummaryOutcome), args.Error(1)
}

func (m *MockRecordService) ReceiveFromHospital(ctx context.Context, in entities.InboundDocument) (*entities.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

type MockMedicineService struct{ mock.Mock }

func (m *MockMedicineService) CreateTracker(ctx context.Context, userID string, req entities.MedicineTrackerRequest) (*entities.MedicineTracker, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MedicineTracker), args.Error(1)
}

func (m *MockMedicineService) ListTrackers(ctx context.Context, userID string) ([]*entities.MedicineTracker, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MedicineTracker), args.Error(1)
}

func (m *MockMedicineService) UploadPrescription(ctx context.Context, userID string, image entities.Upload) (*entities.Prescription, error) {
	args := m.Called(ctx, userID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Prescription), args.Error(1)
}

func (m *MockMedicineService) ListPrescriptions(ctx context.Context, userID string) ([]*entities.Prescription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Prescription), args.Error(1)
}

type MockLabService struct{ mock.Mock }

func (m *MockLabService) ListTests(ctx context.Context, category string) ([]*entities.LabTest, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LabTest), args.Error(1)
}

func (m *MockLabService) Book(ctx context.Context, userID string, req services.LabBookingRequest) (*entities.LabBooking, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LabBooking), args.Error(1)
}

type MockCarePackageService struct{ mock.Mock }

func (m *MockCarePackageService) List(ctx context.Context) ([]*entities.CarePackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CarePackage), args.Error(1)
}

func (m *MockCarePackageService) Apply(ctx context.Context, userID, packageID string) (*entities.UserCarePackage, error) {
	args := m.Called(ctx, userID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserCarePackage), args.Error(1)
}

type MockInsightsService struct{ mock.Mock }

func (m *MockInsightsService) Generate(ctx context.Context, userID string) (*entities.HealthInsights, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HealthInsights), args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*entities.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

// MockEventBus fans published events out to in-process subscribers
type MockEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.HealthEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subscribers: make(map[string][]chan *entities.HealthEvent)}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.HealthEvent) error {
	m.mu.RLock()
	channels := append([]chan *entities.HealthEvent(nil), m.subscribers[channel]...)
	m.mu.RUnlock()
	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.HealthEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.HealthEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) SubscriberCount(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[channel])
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error { return nil }

// newMultipartRequest builds a POST with one file field and extra form values
func newMultipartRequest(t *testing.T, url, field, filename string, data []byte, values map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range values {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type MockAmbulanceService struct{ mock.Mock }

func (m *MockAmbulanceService) ListServices(ctx context.Context, serviceType string) ([]*entities.AmbulanceService, error) {
	args := m.Called(ctx, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AmbulanceService), args.Error(1)
}

func (m *MockAmbulanceService) Book(ctx context.Context, userID string, req services.AmbulanceBookingRequest) (*entities.AmbulanceBooking, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AmbulanceBooking), args.Error(1)
}

type MockPeerSupportService struct{ mock.Mock }

func (m *MockPeerSupportService) Post(ctx context.Context, userID, message string) (*entities.ChatMessage, error) {
	args := m.Called(ctx, userID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChatMessage), args.Error(1)
}

func (m *MockPeerSupportService) Recent(ctx context.Context, limit int) ([]entities.PeerMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PeerMessage), args.Error(1)
}
