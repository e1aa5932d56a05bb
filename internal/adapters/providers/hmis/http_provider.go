package hmis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
)

// BookedVia identifies this application to the hospital system
const BookedVia = "phr_app"

// HTTPProvider implements HospitalSystemProvider over the HMIS REST API
type HTTPProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a new HMIS adapter
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// remoteID accepts numeric and string ids
type remoteID string

func (r *remoteID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = remoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid hmis id %s", string(data))
	}
	*r = remoteID(n.String())
	return nil
}

type remoteDoctor struct {
	ID              remoteID `json:"id"`
	Name            string   `json:"name"`
	Specialty       string   `json:"specialty"`
	Qualification   string   `json:"qualification"`
	ExperienceYears *int     `json:"experience_years"`
	HospitalName    string   `json:"hospital_name"`
	ConsultationFee *float64 `json:"consultation_fee"`
	Rating          *float64 `json:"rating"`
	ProfileImage    string   `json:"profile_image"`
}

func (d remoteDoctor) toDoctor() *entities.Doctor {
	id := string(d.ID)
	return &entities.Doctor{
		ID:              entities.HMISIDPrefix + id,
		Name:            d.Name,
		Specialty:       d.Specialty,
		Qualification:   d.Qualification,
		ExperienceYears: d.ExperienceYears,
		HospitalName:    d.HospitalName,
		ConsultationFee: d.ConsultationFee,
		Rating:          d.Rating,
		ProfileImage:    d.ProfileImage,
		IsActive:        true,
		Source:          entities.DoctorSourceHMIS,
		HMISID:          id,
	}
}

// SearchDoctors queries GET /doctors/search
func (p *HTTPProvider) SearchDoctors(ctx context.Context, filter entities.DoctorFilter) ([]*entities.Doctor, error) {
	params := url.Values{}
	if filter.Specialty != "" {
		params.Set("specialty", filter.Specialty)
	}
	if filter.Name != "" {
		params.Set("name", filter.Name)
	}

	var result struct {
		Doctors []remoteDoctor `json:"doctors"`
	}
	if err := p.call(ctx, "search_doctors", http.MethodGet, "/doctors/search", params, nil, &result); err != nil {
		return nil, err
	}

	doctors := make([]*entities.Doctor, 0, len(result.Doctors))
	for _, d := range result.Doctors {
		doctors = append(doctors, d.toDoctor())
	}
	return doctors, nil
}

// GetDoctorAvailability queries GET /doctors/{id}/availability
func (p *HTTPProvider) GetDoctorAvailability(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	path := fmt.Sprintf("/doctors/%s/availability", url.PathEscape(entities.HMISDoctorID(doctorID)))
	params := url.Values{"date": []string{date.Format(entities.DateLayout)}}

	var result struct {
		AvailableSlots []string `json:"available_slots"`
	}
	if err := p.call(ctx, "doctor_availability", http.MethodGet, path, params, nil, &result); err != nil {
		return nil, err
	}
	if result.AvailableSlots == nil {
		return []string{}, nil
	}
	return result.AvailableSlots, nil
}

// ShareProfile posts to /patients/share-profile
func (p *HTTPProvider) ShareProfile(ctx context.Context, share entities.ProfileShare) (string, error) {
	var result struct {
		ShareToken string `json:"share_token"`
	}
	if err := p.call(ctx, "share_profile", http.MethodPost, "/patients/share-profile", nil, share, &result); err != nil {
		return "", err
	}
	return result.ShareToken, nil
}

// BookAppointment posts to /appointments/book
func (p *HTTPProvider) BookAppointment(ctx context.Context, booking entities.HMISBooking) (*entities.HMISBookingResult, error) {
	booking.DoctorID = entities.HMISDoctorID(booking.DoctorID)
	if booking.BookedVia == "" {
		booking.BookedVia = BookedVia
	}

	var result struct {
		AppointmentID      remoteID `json:"appointment_id"`
		ConfirmationNumber string   `json:"confirmation_number"`
	}
	if err := p.call(ctx, "book_appointment", http.MethodPost, "/appointments/book", nil, booking, &result); err != nil {
		return nil, err
	}
	return &entities.HMISBookingResult{
		AppointmentID:      string(result.AppointmentID),
		ConfirmationNumber: result.ConfirmationNumber,
	}, nil
}

// ListHospitals queries GET /hospitals
func (p *HTTPProvider) ListHospitals(ctx context.Context) ([]entities.Hospital, error) {
	var result struct {
		Hospitals []struct {
			ID      remoteID `json:"id"`
			Name    string   `json:"name"`
			Address string   `json:"address"`
			City    string   `json:"city"`
			Phone   string   `json:"phone"`
		} `json:"hospitals"`
	}
	if err := p.call(ctx, "list_hospitals", http.MethodGet, "/hospitals", nil, nil, &result); err != nil {
		return nil, err
	}

	hospitals := make([]entities.Hospital, 0, len(result.Hospitals))
	for _, h := range result.Hospitals {
		hospitals = append(hospitals, entities.Hospital{
			ID:      string(h.ID),
			Name:    h.Name,
			Address: h.Address,
			City:    h.City,
			Phone:   h.Phone,
		})
	}
	return hospitals, nil
}

// call performs one request and decodes a 2xx body into out. Every failure
// wraps ErrHospitalSystemUnavailable.
func (p *HTTPProvider) call(ctx context.Context, operation, method, path string, params url.Values, payload, out interface{}) error {
	endpoint := p.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode hmis %s request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: %v", providers.ErrHospitalSystemUnavailable, err)
	}
	p.addHeaders(req)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		recordHMISMetric(ctx, operation, 0, time.Since(start), err)
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("operation", operation).Msg("HMIS request failed")
		return fmt.Errorf("%w: %v", providers.ErrHospitalSystemUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: %s returned status %d", providers.ErrHospitalSystemUnavailable, operation, resp.StatusCode)
		recordHMISMetric(ctx, operation, resp.StatusCode, time.Since(start), err)
		observability.LoggerFromContext(ctx).Warn().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Str("body", string(detail)).
			Msg("HMIS request rejected")
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("%w: invalid %s response: %v", providers.ErrHospitalSystemUnavailable, operation, err)
		recordHMISMetric(ctx, operation, resp.StatusCode, time.Since(start), err)
		return err
	}
	recordHMISMetric(ctx, operation, resp.StatusCode, time.Since(start), nil)
	return nil
}

func (p *HTTPProvider) addHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	req.Header.Set("Content-Type", "application/json")
}
