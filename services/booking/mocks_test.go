package booking

import (
	"context"
	"sync"
	"time"

	bookingRepo "petcare/database/repository/booking"
	"petcare/models"
	"petcare/services/availability"
	"petcare/services/payment"

	"go.uber.org/zap"
)

// memRepo mirrors the Mongo repository's compare-and-set and capacity semantics.
type memRepo struct {
	mu            sync.Mutex
	records       map[string]*models.BookingRecord
	notes         map[string][]string
	transitionErr error
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[string]*models.BookingRecord{}, notes: map[string][]string{}}
}

func (r *memRepo) occupied(key models.SlotKey) int {
	n := 0
	for _, rec := range r.records {
		if rec.SlotKey() == key && rec.Status.HoldsSlot() {
			n++
		}
	}
	return n
}

func (r *memRepo) Reserve(ctx context.Context, record *models.BookingRecord, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.occupied(record.SlotKey()) >= capacity {
		return bookingRepo.ErrSlotFull
	}
	cp := *record
	r.records[record.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id string) (*models.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memRepo) FindByGatewayOrderID(ctx context.Context, orderID string) (*models.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Payment.GatewayOrderID == orderID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *memRepo) ListByCategoryDate(ctx context.Context, category, date string) ([]models.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BookingRecord
	for _, rec := range r.records {
		if rec.ServiceCategory == category && rec.SelectedDate == date {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memRepo) AttachOrder(ctx context.Context, id string, p models.PaymentRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if rec.Status != models.StatusPending {
		return bookingRepo.ErrStatusConflict
	}
	rec.Payment.GatewayOrderID = p.GatewayOrderID
	rec.Payment.Amount = p.Amount
	rec.Payment.Currency = p.Currency
	rec.Payment.Status = p.Status
	return nil
}

func (r *memRepo) Transition(ctx context.Context, id string, from, to models.BookingStatus, patch bookingRepo.Patch) (*models.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transitionErr != nil {
		return nil, r.transitionErr
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if rec.Status != from {
		return nil, bookingRepo.ErrStatusConflict
	}
	rec.Status = to
	if patch.PaymentStatus != "" {
		rec.Payment.Status = patch.PaymentStatus
	}
	if patch.GatewayPaymentID != "" {
		rec.Payment.GatewayPaymentID = patch.GatewayPaymentID
	}
	if patch.Signature != "" {
		rec.Payment.Signature = patch.Signature
	}
	if patch.RefundID != "" {
		rec.Payment.RefundID = patch.RefundID
	}
	if patch.ReportRef != "" {
		rec.ReportRef = patch.ReportRef
	}
	if patch.CancelReason != "" {
		rec.CancelReason = patch.CancelReason
	}
	cp := *rec
	return &cp, nil
}

func (r *memRepo) Reschedule(ctx context.Context, id string, from models.BookingStatus, date, clock string, capacity int) (*models.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if rec.Status != from {
		return nil, bookingRepo.ErrStatusConflict
	}
	if r.occupied(models.SlotKey{ServiceCategory: rec.ServiceCategory, Date: date, Time: clock}) >= capacity {
		return nil, bookingRepo.ErrSlotFull
	}
	rec.Status = models.StatusRescheduled
	rec.SelectedDate = date
	rec.SelectedTime = clock
	cp := *rec
	return &cp, nil
}

func (r *memRepo) FlagForReview(ctx context.Context, id, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	rec.ReviewRequired = true
	r.notes[id] = append(r.notes[id], note)
	return nil
}

func (r *memRepo) EnsureIndexes(ctx context.Context) error { return nil }

type staticSettings struct {
	settings models.AvailabilitySettings
}

func (s *staticSettings) GetAvailabilitySettings(ctx context.Context, category string) (*models.AvailabilitySettings, error) {
	cp := s.settings
	return &cp, nil
}

type staticPrices struct {
	amount int64
	err    error
}

func (p *staticPrices) GetBasePrice(ctx context.Context, serviceRef string, location models.LocationType) (*models.ServicePrice, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &models.ServicePrice{ServiceRef: serviceRef, LocationType: location, Amount: p.amount, Currency: "inr"}, nil
}

type refundCall struct {
	paymentID string
	amount    int64
	metadata  map[string]string
}

type mockGateway struct {
	mu          sync.Mutex
	signer      *payment.Signer
	createErr   error
	verifyErr   error
	orders      int
	statusFunc  func(orderID string) (*models.GatewayOrderStatus, error)
	refundErr   error
	refundCalls []refundCall
}

func (g *mockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, metadata map[string]string) (*models.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.orders++
	return &models.GatewayOrder{OrderID: "pi_" + receipt, ClientSecret: "secret_" + receipt, Amount: amount, Currency: currency}, nil
}

func (g *mockGateway) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	if g.verifyErr != nil {
		return false, g.verifyErr
	}
	return g.signer.Verify(orderID, paymentID, signature), nil
}

func (g *mockGateway) GetOrderStatus(ctx context.Context, orderID string) (*models.GatewayOrderStatus, error) {
	if g.statusFunc == nil {
		return &models.GatewayOrderStatus{OrderID: orderID, Status: models.PaymentCreated}, nil
	}
	return g.statusFunc(orderID)
}

func (g *mockGateway) Refund(ctx context.Context, paymentID string, amount int64, metadata map[string]string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundCalls = append(g.refundCalls, refundCall{paymentID: paymentID, amount: amount, metadata: metadata})
	if g.refundErr != nil {
		return "", g.refundErr
	}
	return "re_1", nil
}

type mockScheduler struct {
	mu       sync.Mutex
	triggers map[string][]string
	err      error
}

func (m *mockScheduler) ScheduleReconcile(ctx context.Context, bookingID, trigger string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.triggers == nil {
		m.triggers = map[string][]string{}
	}
	m.triggers[bookingID] = append(m.triggers[bookingID], trigger)
	return nil
}

type mockNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (m *mockNotifier) Notify(ctx context.Context, subjectRef, title, body string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append(m.titles, title)
	return nil
}

func (m *mockNotifier) count(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.titles {
		if t == title {
			n++
		}
	}
	return n
}

const testSecret = "verify-secret"

// fixedNow is a Sunday; bookings in tests target Monday 2025-03-03.
var fixedNow = time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

type harness struct {
	svc       *DefaultBookingService
	repo      *memRepo
	gateway   *mockGateway
	scheduler *mockScheduler
	notifier  *mockNotifier
	signer    *payment.Signer
}

func newHarness(capacity int) *harness {
	repo := newMemRepo()
	signer := payment.NewSigner(testSecret)
	settings := &staticSettings{settings: models.AvailabilitySettings{
		ServiceCategory:     "consultation",
		OpenTime:            "09:00",
		CloseTime:           "11:00",
		SlotDurationMinutes: 30,
		PerSlotCapacity:     capacity,
	}}
	avail := availability.NewAvailabilityService(settings, repo, time.UTC, 14, zap.NewNop())
	avail.Now = func() time.Time { return fixedNow }

	h := &harness{
		repo:      repo,
		gateway:   &mockGateway{signer: signer},
		scheduler: &mockScheduler{},
		notifier:  &mockNotifier{},
		signer:    signer,
	}
	h.svc = NewBookingService(repo, avail, &staticPrices{amount: 50000}, h.gateway, h.scheduler, h.notifier, "inr", zap.NewNop())
	h.svc.Now = func() time.Time { return fixedNow }
	return h
}

func intentAt(clock string) models.BookingIntent {
	return models.BookingIntent{
		SubjectRef:      "pet-7",
		ServiceRef:      "general-checkup",
		ServiceCategory: "consultation",
		SelectedDate:    "2025-03-03",
		SelectedTime:    clock,
		LocationType:    models.LocationClinic,
		ClinicRef:       "clinic-1",
	}
}
