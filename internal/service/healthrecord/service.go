package healthrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/internal/service/event"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/pagination"
	"github.com/homecare/visit-api/pkg/storage"
)

type Repositories struct {
	Records  repository.HealthRecordRepository
	Orders   repository.MedicalOrderRepository
	Patients repository.PatientRepository
	Users    repository.UserRepository
}

// Upload is one file attached to a visit record.
type Upload struct {
	Filename string
	Content  io.Reader
}

type Attachments struct {
	Audio     *Upload
	Photos    []Upload
	Signature *Upload
}

// Service records home visits and the medical orders doctors issue
// against them.
type Service struct {
	tx     repository.Transactor
	repos  Repositories
	store  storage.Store
	events event.Emitter
	now    func() time.Time
}

func NewService(tx repository.Transactor, repos Repositories, store storage.Store, events event.Emitter) *Service {
	return &Service{
		tx:     tx,
		repos:  repos,
		store:  store,
		events: events,
		now:    time.Now,
	}
}

type recordEvent struct {
	RecordID   uuid.UUID `json:"record_id"`
	PatientID  uuid.UUID `json:"patient_id"`
	RecorderID uuid.UUID `json:"recorder_id"`
	VisitDate  string    `json:"visit_date"`
}

// Create stores a visit record for recorderID. Attachments are saved
// before the row is written; scope limits the patient to the caseload.
func (s *Service) Create(ctx context.Context, form *model.CreateHealthRecordForm, files Attachments, recorderID uuid.UUID, scope *uuid.UUID) (*model.HealthRecord, error) {
	record, err := s.recordFromForm(form, recorderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Patients.GetByID(ctx, record.PatientID, scope); err != nil {
		return nil, apperrors.Wrap("load patient", err)
	}

	if files.Audio != nil {
		url, err := s.save(ctx, storage.KindAudio, files.Audio)
		if err != nil {
			return nil, err
		}
		record.AudioFile = &url
	}
	for i := range files.Photos {
		url, err := s.save(ctx, storage.KindImage, &files.Photos[i])
		if err != nil {
			return nil, err
		}
		record.Photos = append(record.Photos, url)
	}
	if files.Signature != nil {
		url, err := s.save(ctx, storage.KindImage, files.Signature)
		if err != nil {
			return nil, err
		}
		record.PatientSignature = &url
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Records.Create(ctx, record); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventHealthRecordCreated, recordEvent{
			RecordID:   record.ID,
			PatientID:  record.PatientID,
			RecorderID: record.RecorderID,
			VisitDate:  record.VisitDate.String(),
		})
	})
	if err != nil {
		return nil, apperrors.Wrap("create health record", err)
	}
	return record, nil
}

func (s *Service) recordFromForm(form *model.CreateHealthRecordForm, recorderID uuid.UUID) (*model.HealthRecord, error) {
	patientID, err := uuid.Parse(form.PatientID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid patient_id", err)
	}
	visitDate, err := model.ParseDate(form.VisitDate)
	if err != nil {
		return nil, apperrors.NewValidation("visit_date must be YYYY-MM-DD", err)
	}
	visitTime, err := model.ParseClock(form.VisitTime)
	if err != nil {
		return nil, apperrors.NewValidation("visit_time must be HH:MM", err)
	}

	record := &model.HealthRecord{
		ID:              uuid.New(),
		PatientID:       patientID,
		RecorderID:      recorderID,
		VisitDate:       visitDate,
		VisitTime:       visitTime,
		VitalSigns:      parseVitalSigns(form.VitalSigns),
		Symptoms:        optional(form.Symptoms),
		Notes:           optional(form.Notes),
		LocationAddress: optional(form.LocationAddress),
		Photos:          model.StringList{},
		CreatedAt:       s.now(),
	}

	if form.AppointmentID != "" {
		id, err := uuid.Parse(form.AppointmentID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid appointment_id", err)
		}
		record.AppointmentID = &id
	}
	if record.LocationLat, err = parseCoordinate("location_lat", form.LocationLat); err != nil {
		return nil, err
	}
	if record.LocationLng, err = parseCoordinate("location_lng", form.LocationLng); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) save(ctx context.Context, kind storage.Kind, u *Upload) (string, error) {
	url, err := s.store.Save(ctx, kind, u.Filename, u.Content)
	switch {
	case errors.Is(err, storage.ErrExtensionNotAllowed):
		return "", apperrors.NewValidation(fmt.Sprintf("%s file type not allowed: %s", kind, u.Filename), err)
	case errors.Is(err, storage.ErrTooLarge):
		return "", apperrors.NewValidation(fmt.Sprintf("%s is too large", u.Filename), err)
	case err != nil:
		return "", apperrors.NewInternal(err)
	}
	return url, nil
}

// parseVitalSigns accepts a JSON object; anything else becomes {}.
func parseVitalSigns(raw string) model.JSONMap {
	signs := model.JSONMap{}
	if strings.TrimSpace(raw) == "" {
		return signs
	}
	if err := json.Unmarshal([]byte(raw), &signs); err != nil || signs == nil {
		return model.JSONMap{}
	}
	return signs
}

func parseCoordinate(field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidation(field+" must be a number", err)
	}
	return &v, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.HealthRecord, error) {
	record, err := s.repos.Records.Get(ctx, id, scope)
	if err != nil {
		return nil, apperrors.Wrap("load health record", err)
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, scope, patientID *uuid.UUID, page pagination.Params) (*model.HealthRecordPage, error) {
	records, total, err := s.repos.Records.List(ctx, model.HealthRecordFilter{
		RecorderID: scope,
		PatientID:  patientID,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, apperrors.Wrap("list health records", err)
	}
	if records == nil {
		records = []*model.HealthRecord{}
	}
	return &model.HealthRecordPage{
		Records:    records,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}

// CreateOrder issues a medical order from the doctor profile of userID.
func (s *Service) CreateOrder(ctx context.Context, req *model.CreateMedicalOrderRequest, userID uuid.UUID) (*model.MedicalOrder, error) {
	doctor, err := s.repos.Users.GetDoctorByUserID(ctx, userID)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewForbidden("a doctor profile is required to issue orders")
	}
	if err != nil {
		return nil, apperrors.Wrap("load doctor", err)
	}
	if _, err := s.repos.Patients.GetByID(ctx, req.PatientID, nil); err != nil {
		return nil, apperrors.Wrap("load patient", err)
	}

	order := &model.MedicalOrder{
		ID:             uuid.New(),
		PatientID:      req.PatientID,
		DoctorID:       doctor.ID,
		HealthRecordID: req.HealthRecordID,
		OrderType:      req.OrderType,
		Content:        req.Content,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Duration:       req.Duration,
		Notes:          req.Notes,
		Status:         model.OrderStatusActive,
		CreatedAt:      s.now(),
	}
	if err := s.repos.Orders.Create(ctx, order); err != nil {
		return nil, apperrors.Wrap("create medical order", err)
	}
	return order, nil
}

// PatientOrders lists a patient's orders, newest first.
func (s *Service) PatientOrders(ctx context.Context, patientID uuid.UUID, scope *uuid.UUID) ([]*model.MedicalOrder, error) {
	if _, err := s.repos.Patients.GetByID(ctx, patientID, scope); err != nil {
		return nil, apperrors.Wrap("load patient", err)
	}
	orders, err := s.repos.Orders.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Wrap("list medical orders", err)
	}
	if orders == nil {
		orders = []*model.MedicalOrder{}
	}
	return orders, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*model.MedicalOrder, error) {
	switch status {
	case model.OrderStatusActive, model.OrderStatusCompleted, model.OrderStatusCancelled:
	default:
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown order status %q", status), nil)
	}

	order, err := s.repos.Orders.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("load medical order", err)
	}
	if err := s.repos.Orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.Wrap("update medical order", err)
	}
	order.Status = status
	return order, nil
}
