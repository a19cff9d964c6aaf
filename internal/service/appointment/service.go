package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/internal/service/event"
	"github.com/homecare/visit-api/pkg/cache"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/pagination"
)

var serviceTypesKey = cache.Key("service_types", "active")

// todayStatuses are the statuses shown on a recorder's daily schedule.
var todayStatuses = []string{
	string(model.AppointmentStatusScheduled),
	string(model.AppointmentStatusConfirmed),
}

type Repositories struct {
	Appointments repository.AppointmentRepository
	Payments     repository.PaymentRepository
	Patients     repository.PatientRepository
	ServiceTypes repository.ServiceTypeRepository
}

type Options struct {
	Cache    cache.Cache
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
	// Location interprets scheduled dates and times. Defaults to time.Local.
	Location *time.Location
}

// Service schedules visits and keeps one payment per appointment.
type Service struct {
	tx     repository.Transactor
	repos  Repositories
	events event.Emitter
	opts   Options
	now    func() time.Time
}

func NewService(tx repository.Transactor, repos Repositories, events event.Emitter, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		tx:     tx,
		repos:  repos,
		events: events,
		opts:   opts,
		now:    time.Now,
	}
}

type appointmentEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	RecorderID    uuid.UUID `json:"recorder_id"`
	ScheduledDate string    `json:"scheduled_date,omitempty"`
	Status        string    `json:"status,omitempty"`
}

type paymentEvent struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"payment_status"`
}

// Create books a visit for recorderID. scope, when set, limits the
// patient lookup to that recorder's caseload.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest, recorderID uuid.UUID, scope *uuid.UUID) (*model.AppointmentDetail, error) {
	appt, err := s.newAppointment(req, recorderID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repos.Patients.GetByID(ctx, appt.PatientID, scope); err != nil {
			return err
		}
		if err := s.checkServiceType(ctx, appt.ServiceTypeID); err != nil {
			return err
		}
		if err := s.repos.Appointments.Create(ctx, appt); err != nil {
			return err
		}
		if err := s.events.Emit(ctx, model.EventAppointmentCreated, appointmentEvent{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			RecorderID:    appt.RecorderID,
			ScheduledDate: appt.ScheduledDate.String(),
			Status:        string(appt.Status),
		}); err != nil {
			return err
		}
		if req.Payment == nil {
			return nil
		}
		return s.createPayment(ctx, appt, req.Payment)
	})
	if err != nil {
		return nil, apperrors.Wrap("create appointment", err)
	}

	return s.Get(ctx, appt.ID, scope)
}

func (s *Service) newAppointment(req *model.CreateAppointmentRequest, recorderID uuid.UUID) (*model.Appointment, error) {
	if req.PatientID == uuid.Nil || req.ScheduledDate == "" || req.StartTime == "" {
		return nil, apperrors.NewValidation("patient_id, scheduled_date and start_time are required", nil)
	}

	date, err := model.ParseDate(req.ScheduledDate)
	if err != nil {
		return nil, apperrors.NewValidation("scheduled_date must be YYYY-MM-DD", err)
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.NewValidation("start_time must be HH:MM", err)
	}

	now := s.now()
	if !start.On(date, s.opts.Location).After(now) {
		return nil, apperrors.NewValidation("appointment cannot be scheduled in the past", nil)
	}

	appt := &model.Appointment{
		PatientID:       req.PatientID,
		RecorderID:      recorderID,
		ServiceTypeID:   req.ServiceTypeID,
		ScheduledDate:   date,
		StartTime:       start,
		AppointmentType: req.AppointmentType,
		Status:          model.AppointmentStatus(req.Status),
		Notes:           req.Notes,
	}
	if appt.AppointmentType == "" {
		appt.AppointmentType = model.AppointmentTypeRegular
	}
	if appt.Status == "" {
		appt.Status = model.AppointmentStatusScheduled
	}
	if req.EndTime != nil && *req.EndTime != "" {
		end, err := model.ParseClock(*req.EndTime)
		if err != nil {
			return nil, apperrors.NewValidation("end_time must be HH:MM", err)
		}
		appt.EndTime = &end
	}
	if err := checkTimes(appt); err != nil {
		return nil, err
	}

	appt.Touch(now)
	return appt, nil
}

func checkTimes(a *model.Appointment) error {
	if a.EndTime != nil && a.EndTime.Minutes() <= a.StartTime.Minutes() {
		return apperrors.NewValidation("end_time must be after start_time", nil)
	}
	return nil
}

func (s *Service) checkServiceType(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.repos.ServiceTypes.Get(ctx, *id)
	if apperrors.IsNotFound(err) {
		return apperrors.NewValidation("unknown service_type_id", err)
	}
	return err
}

// Update applies a partial update. A payment patch updates the
// appointment's existing payment or creates the first one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, scope *uuid.UUID) (*model.AppointmentDetail, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		appt, err := s.repos.Appointments.Get(ctx, id, scope)
		if err != nil {
			return err
		}

		if req.PatientID != nil && *req.PatientID != appt.PatientID {
			if _, err := s.repos.Patients.GetByID(ctx, *req.PatientID, scope); err != nil {
				return err
			}
		}
		if req.ServiceTypeID != nil {
			if err := s.checkServiceType(ctx, req.ServiceTypeID); err != nil {
				return err
			}
		}
		if err := applyUpdate(appt, req); err != nil {
			return err
		}

		appt.UpdatedAt = s.now()
		if err := s.repos.Appointments.Update(ctx, appt); err != nil {
			return err
		}
		if req.Payment == nil {
			return nil
		}
		return s.reconcilePayment(ctx, appt, req.Payment)
	})
	if err != nil {
		return nil, apperrors.Wrap("update appointment", err)
	}

	return s.Get(ctx, id, scope)
}

// reconcilePayment looks the payment up before inserting so an
// appointment never gains a second row from an update.
func (s *Service) reconcilePayment(ctx context.Context, appt *model.Appointment, in *model.PaymentInput) error {
	payment, err := s.repos.Payments.GetByAppointment(ctx, appt.ID)
	if apperrors.IsNotFound(err) {
		return s.createPayment(ctx, appt, in)
	}
	if err != nil {
		return err
	}

	in.ApplyTo(payment)
	payment.PatientID = appt.PatientID
	payment.UpdatedAt = s.now()
	if err := s.repos.Payments.Update(ctx, payment); err != nil {
		return err
	}
	s.countPayment("updated")
	return s.emitPayment(ctx, payment)
}

func (s *Service) createPayment(ctx context.Context, appt *model.Appointment, in *model.PaymentInput) error {
	payment := in.NewPayment(appt.ID, appt.PatientID)
	payment.Touch(s.now())
	if err := s.repos.Payments.Create(ctx, payment); err != nil {
		return err
	}
	s.countPayment("created")
	return s.emitPayment(ctx, payment)
}

func (s *Service) emitPayment(ctx context.Context, p *model.Payment) error {
	return s.events.Emit(ctx, model.EventPaymentRecorded, paymentEvent{
		PaymentID:     p.ID,
		AppointmentID: p.AppointmentID,
		Amount:        p.Amount,
		Status:        p.PaymentStatus,
	})
}

func (s *Service) countPayment(outcome string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.PaymentsReconciled.WithLabelValues(outcome).Inc()
	}
}

func applyUpdate(a *model.Appointment, req *model.UpdateAppointmentRequest) error {
	if req.PatientID != nil {
		a.PatientID = *req.PatientID
	}
	if req.ServiceTypeID != nil {
		a.ServiceTypeID = req.ServiceTypeID
	}
	if req.ScheduledDate != nil {
		d, err := model.ParseDate(*req.ScheduledDate)
		if err != nil {
			return apperrors.NewValidation("scheduled_date must be YYYY-MM-DD", err)
		}
		a.ScheduledDate = d
	}
	if req.StartTime != nil {
		c, err := model.ParseClock(*req.StartTime)
		if err != nil {
			return apperrors.NewValidation("start_time must be HH:MM", err)
		}
		a.StartTime = c
	}
	if req.EndTime != nil {
		if *req.EndTime == "" {
			a.EndTime = nil
		} else {
			c, err := model.ParseClock(*req.EndTime)
			if err != nil {
				return apperrors.NewValidation("end_time must be HH:MM", err)
			}
			a.EndTime = &c
		}
	}
	if req.AppointmentType != nil {
		a.AppointmentType = *req.AppointmentType
	}
	// any status is accepted as written
	if req.Status != nil {
		a.Status = model.AppointmentStatus(*req.Status)
	}
	if req.Notes != nil {
		a.Notes = req.Notes
	}
	return checkTimes(a)
}

// Complete marks the visit completed whatever its current status.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.AppointmentView, error) {
	var appt *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.repos.Appointments.Get(ctx, id, scope)
		if err != nil {
			return err
		}
		appt.Status = model.AppointmentStatusCompleted
		appt.UpdatedAt = s.now()
		if err := s.repos.Appointments.Update(ctx, appt); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventAppointmentCompleted, appointmentEvent{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			RecorderID:    appt.RecorderID,
			Status:        string(appt.Status),
		})
	})
	if err != nil {
		return nil, apperrors.Wrap("complete appointment", err)
	}

	if s.opts.Metrics != nil {
		s.opts.Metrics.AppointmentsCompleted.Inc()
	}
	view := model.NewAppointmentView(appt)
	return &view, nil
}

// Delete removes the appointment together with its payments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, scope *uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		appt, err := s.repos.Appointments.Get(ctx, id, scope)
		if err != nil {
			return err
		}
		if err := s.repos.Appointments.Delete(ctx, id); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventAppointmentDeleted, appointmentEvent{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			RecorderID:    appt.RecorderID,
		})
	})
	return apperrors.Wrap("delete appointment", err)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.AppointmentDetail, error) {
	appt, err := s.repos.Appointments.Get(ctx, id, scope)
	if err != nil {
		return nil, apperrors.Wrap("get appointment", err)
	}

	detail := &model.AppointmentDetail{AppointmentView: model.NewAppointmentView(appt)}

	summaries, err := s.repos.Patients.Summaries(ctx, []uuid.UUID{appt.PatientID})
	if err != nil {
		return nil, apperrors.Wrap("get appointment", err)
	}
	detail.Patient = summaries[appt.PatientID]

	if appt.ServiceTypeID != nil {
		st, err := s.repos.ServiceTypes.Get(ctx, *appt.ServiceTypeID)
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, apperrors.Wrap("get appointment", err)
		}
		detail.ServiceType = st
	}

	payment, err := s.repos.Payments.GetByAppointment(ctx, appt.ID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.Wrap("get appointment", err)
	}
	detail.Payment = payment

	return detail, nil
}

// Today lists the day's open visits in start time order.
func (s *Service) Today(ctx context.Context, scope *uuid.UUID) ([]model.AppointmentWithPatient, error) {
	today := model.NewDate(s.now().In(s.opts.Location))
	appts, err := s.repos.Appointments.ListForDay(ctx, scope, today, todayStatuses)
	if err != nil {
		return nil, apperrors.Wrap("list today's appointments", err)
	}

	summaries, err := s.repos.Patients.Summaries(ctx, patientIDs(appts))
	if err != nil {
		return nil, apperrors.Wrap("list today's appointments", err)
	}

	out := make([]model.AppointmentWithPatient, 0, len(appts))
	for _, a := range appts {
		out = append(out, model.AppointmentWithPatient{
			AppointmentView: model.NewAppointmentView(a),
			Patient:         summaries[a.PatientID],
		})
	}
	return out, nil
}

// ListQuery holds the raw listing filters. Malformed dates are ignored.
type ListQuery struct {
	Status   string
	DateFrom string
	DateTo   string
}

func (s *Service) List(ctx context.Context, scope *uuid.UUID, page pagination.Params, q ListQuery) (*model.AppointmentPage, error) {
	filter := model.AppointmentFilter{
		RecorderID: scope,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	}
	for _, st := range strings.Split(q.Status, ",") {
		if st = strings.TrimSpace(st); st != "" {
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	if d, err := model.ParseDate(q.DateFrom); err == nil {
		filter.DateFrom = &d
	}
	if d, err := model.ParseDate(q.DateTo); err == nil {
		filter.DateTo = &d
	}

	appts, total, err := s.repos.Appointments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap("list appointments", err)
	}

	views := make([]model.AppointmentView, 0, len(appts))
	for _, a := range appts {
		views = append(views, model.NewAppointmentView(a))
	}
	return &model.AppointmentPage{
		Appointments: views,
		Total:        total,
		Page:         page.Page,
		Limit:        page.Limit,
		TotalPages:   page.TotalPages(total),
	}, nil
}

// ServiceTypes returns the active service types, read through the cache.
func (s *Service) ServiceTypes(ctx context.Context) ([]*model.ServiceType, error) {
	var types []*model.ServiceType
	if s.opts.Cache != nil {
		if ok, err := s.opts.Cache.Get(ctx, serviceTypesKey, &types); err == nil && ok {
			return types, nil
		}
	}

	types, err := s.repos.ServiceTypes.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap("list service types", err)
	}
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Set(ctx, serviceTypesKey, types, s.opts.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", serviceTypesKey).Msg("cache set failed")
		}
	}
	return types, nil
}

func patientIDs(appts []*model.Appointment) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(appts))
	ids := make([]uuid.UUID, 0, len(appts))
	for _, a := range appts {
		if !seen[a.PatientID] {
			seen[a.PatientID] = true
			ids = append(ids, a.PatientID)
		}
	}
	return ids
}
