package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ServiGo-Platform/service-marketplace/internal/domain/booking"
	"github.com/ServiGo-Platform/service-marketplace/internal/domain/catalog"
	"github.com/ServiGo-Platform/service-marketplace/internal/domain/user"
	"github.com/ServiGo-Platform/service-marketplace/pkg/auth"
	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
)

// --- In-memory fakes ---

type fakeBookingRepo struct {
	store map[uuid.UUID]*booking.Booking
	// stored version per booking, for the conditional update check
	versions map[uuid.UUID]int64
	// beforeUpdate runs at the start of Update, before the version check.
	// Tests use it to commit a competing write in the update window.
	beforeUpdate func()
}

// cloneBooking copies a booking the way a row read does, so mutating a
// loaded aggregate never touches what the repo holds.
func cloneBooking(bk *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(
		bk.ID(),
		bk.BookingNumber(),
		bk.ClientID(),
		bk.ContactInfo(),
		bk.ProviderID(),
		append([]booking.ServiceLine(nil), bk.Lines()...),
		bk.ScheduledDate(),
		bk.ScheduledTime(),
		bk.Location(),
		bk.ClientNotes(),
		bk.Pricing(),
		bk.Status(),
		append([]booking.StatusChange(nil), bk.StatusHistory()...),
		bk.Payment(),
		bk.ProviderCanSeeContact(),
		bk.Rating(),
		bk.Version(),
		bk.CreatedAt(),
		bk.UpdatedAt(),
		bk.ConfirmedAt(),
		bk.CompletedAt(),
		bk.CancelledAt(),
	)
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		store:    make(map[uuid.UUID]*booking.Booking),
		versions: make(map[uuid.UUID]int64),
	}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	bk, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	bk = cloneBooking(bk)
	return bk, nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*booking.Booking, error) {
	for _, bk := range r.store {
		if bk.BookingNumber() == number {
			return cloneBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID, status booking.BookingStatus) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, bk := range r.store {
		if bk.ClientID() != clientID {
			continue
		}
		if status != "" && bk.Status() != status {
			continue
		}
		out = append(out, bk)
	}
	return out, nil
}

func (r *fakeBookingRepo) FindByProviderID(_ context.Context, providerID uuid.UUID, status booking.BookingStatus) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, bk := range r.store {
		if bk.ProviderID() != providerID {
			continue
		}
		if status != "" && bk.Status() != status {
			continue
		}
		out = append(out, bk)
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, filter booking.ListFilter, page, limit int) ([]*booking.Booking, int64, error) {
	var out []*booking.Booking
	for _, bk := range r.store {
		if filter.Status != "" && bk.Status() != filter.Status {
			continue
		}
		if filter.ProviderID != uuid.Nil && bk.ProviderID() != filter.ProviderID {
			continue
		}
		if filter.ClientID != uuid.Nil && bk.ClientID() != filter.ClientID {
			continue
		}
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.store {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *booking.Booking) error {
	r.store[bk.ID()] = cloneBooking(bk)
	r.versions[bk.ID()] = bk.Version()
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *booking.Booking) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	if r.versions[bk.ID()] != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.store[bk.ID()] = cloneBooking(bk)
	r.versions[bk.ID()] = bk.Version()
	return nil
}

type fakeServiceRepo struct {
	store         map[uuid.UUID]*catalog.Service
	bookingCounts map[uuid.UUID]int
	savedRatings  int
}

func newFakeServiceRepo(services ...*catalog.Service) *fakeServiceRepo {
	r := &fakeServiceRepo{
		store:         make(map[uuid.UUID]*catalog.Service),
		bookingCounts: make(map[uuid.UUID]int),
	}
	for _, svc := range services {
		r.store[svc.ID] = svc
	}
	return r
}

func (r *fakeServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Service", id.String())
	}
	return svc, nil
}

func (r *fakeServiceRepo) FindAvailableByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	var out []*catalog.Service
	for _, id := range ids {
		if svc, ok := r.store[id]; ok && svc.IsAvailable {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) IncrementBookingCount(_ context.Context, id uuid.UUID) error {
	r.bookingCounts[id]++
	return nil
}

func (r *fakeServiceRepo) SaveRatings(_ context.Context, svc *catalog.Service) error {
	r.store[svc.ID] = svc
	r.savedRatings++
	return nil
}

type fakeProviderRepo struct {
	store          map[uuid.UUID]*catalog.Provider
	completedBumps map[uuid.UUID]int
	savedRatings   int
}

func newFakeProviderRepo(providers ...*catalog.Provider) *fakeProviderRepo {
	r := &fakeProviderRepo{
		store:          make(map[uuid.UUID]*catalog.Provider),
		completedBumps: make(map[uuid.UUID]int),
	}
	for _, p := range providers {
		r.store[p.ID] = p
	}
	return r
}

func (r *fakeProviderRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Provider, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Provider", id.String())
	}
	return p, nil
}

func (r *fakeProviderRepo) IncrementCompletedBookings(_ context.Context, id uuid.UUID) error {
	r.completedBumps[id]++
	return nil
}

func (r *fakeProviderRepo) SaveRatings(_ context.Context, p *catalog.Provider) error {
	r.store[p.ID] = p
	r.savedRatings++
	return nil
}

type fakeUserRepo struct {
	store         map[uuid.UUID]*user.User
	bookingCounts map[uuid.UUID]int
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{
		store:         make(map[uuid.UUID]*user.User),
		bookingCounts: make(map[uuid.UUID]int),
	}
	for _, u := range users {
		r.store[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) IncrementBookingCount(_ context.Context, id uuid.UUID) error {
	r.bookingCounts[id]++
	return nil
}

// --- Fixtures ---

type fixture struct {
	svc        *BookingService
	bookings   *fakeBookingRepo
	services   *fakeServiceRepo
	providers  *fakeProviderRepo
	users      *fakeUserRepo
	clientID   uuid.UUID
	providerID uuid.UUID
	serviceID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clientID := uuid.New()
	providerID := uuid.New()
	providerUserID := uuid.New()

	service := &catalog.Service{
		ID:         uuid.New(),
		Title:      "Home cleaning",
		ProviderID: providerID,
		Pricing: catalog.ServicePricing{
			BasePrice: 15000,
			PriceType: catalog.PriceTypeFixed,
			Currency:  "XOF",
		},
		AdditionalOptions: []catalog.AdditionalOption{
			{Name: "Deep clean", Price: 5000},
		},
		IsAvailable: true,
	}
	provider := &catalog.Provider{
		ID:           providerID,
		BusinessName: "Clean Pro Dakar",
		IsActive:     true,
	}
	client := &user.User{
		ID:    clientID,
		Name:  "Awa Diop",
		Phone: "+221770000001",
		Email: "awa@example.test",
		Role:  "client",
	}
	providerUser := &user.User{
		ID:                providerUserID,
		Name:              "Moussa Ba",
		Role:              "provider",
		ProviderProfileID: &providerID,
	}

	bookings := newFakeBookingRepo()
	services := newFakeServiceRepo(service)
	providers := newFakeProviderRepo(provider)
	users := newFakeUserRepo(client, providerUser)

	return &fixture{
		svc:        NewBookingService(bookings, services, providers, users, nil, zap.NewNop()),
		bookings:   bookings,
		services:   services,
		providers:  providers,
		users:      users,
		clientID:   clientID,
		providerID: providerID,
		serviceID:  service.ID,
	}
}

func (f *fixture) providerUserID(t *testing.T) uuid.UUID {
	t.Helper()
	for id, u := range f.users.store {
		if u.ProviderProfileID != nil {
			return id
		}
	}
	t.Fatal("no provider user seeded")
	return uuid.Nil
}

func (f *fixture) createBooking(t *testing.T) *BookingDTO {
	t.Helper()
	dto, err := f.svc.CreateBooking(context.Background(), f.clientID, CreateBookingRequest{
		Services:      []booking.LineRequest{{ServiceID: f.serviceID, Quantity: 1}},
		ScheduledDate: time.Now().UTC().Add(48 * time.Hour),
		ScheduledTime: "10:00",
		ServiceLocation: booking.ServiceLocation{
			Type: booking.LocationClientAddress,
			City: "Dakar",
		},
		PaymentMethod: booking.PaymentMobileMoney,
	})
	require.NoError(t, err)
	return dto
}

// --- Tests ---

func TestCreateBooking_HappyPath(t *testing.T) {
	f := newFixture(t)

	dto := f.createBooking(t)

	assert.Equal(t, booking.StatusPending, dto.Status)
	assert.Equal(t, f.providerID, dto.Provider)
	require.NotNil(t, dto.Client)
	assert.Equal(t, f.clientID, *dto.Client)
	assert.Equal(t, "Awa Diop", dto.ContactInfo.Name)
	assert.Equal(t, int64(15000), dto.Pricing.ServiceTotal)
	assert.Equal(t, int64(1500), dto.Pricing.PlatformFee)
	assert.Equal(t, int64(16500), dto.Pricing.TotalAmount)

	// Denormalized counters bumped.
	assert.Equal(t, 1, f.users.bookingCounts[f.clientID])
	assert.Equal(t, 1, f.services.bookingCounts[f.serviceID])
}

func TestCreateBooking_PreconditionOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No services selected.
	_, err := f.svc.CreateBooking(ctx, f.clientID, CreateBookingRequest{})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "at least one service")

	// Services given, but no schedule.
	_, err = f.svc.CreateBooking(ctx, f.clientID, CreateBookingRequest{
		Services: []booking.LineRequest{{ServiceID: f.serviceID}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "date and time")

	// Schedule given, but no location.
	_, err = f.svc.CreateBooking(ctx, f.clientID, CreateBookingRequest{
		Services:      []booking.LineRequest{{ServiceID: f.serviceID}},
		ScheduledDate: time.Now().UTC().Add(time.Hour),
		ScheduledTime: "10:00",
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "location")

	// Nothing was persisted along the way.
	assert.Empty(t, f.bookings.store)
	assert.Zero(t, f.users.bookingCounts[f.clientID])
}

func TestCreateBooking_UnknownServiceIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), f.clientID, CreateBookingRequest{
		Services:      []booking.LineRequest{{ServiceID: uuid.New()}},
		ScheduledDate: time.Now().UTC().Add(time.Hour),
		ScheduledTime: "10:00",
		ServiceLocation: booking.ServiceLocation{
			Type: booking.LocationClientAddress,
		},
		PaymentMethod: booking.PaymentCash,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCreateBooking_SuspendedProviderRejected(t *testing.T) {
	f := newFixture(t)
	f.providers.store[f.providerID].IsSuspended = true

	_, err := f.svc.CreateBooking(context.Background(), f.clientID, CreateBookingRequest{
		Services:      []booking.LineRequest{{ServiceID: f.serviceID}},
		ScheduledDate: time.Now().UTC().Add(time.Hour),
		ScheduledTime: "10:00",
		ServiceLocation: booking.ServiceLocation{
			Type: booking.LocationClientAddress,
		},
		PaymentMethod: booking.PaymentCash,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestGetBooking_OwnerSeesFullContact(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	dto, err := f.svc.GetBooking(context.Background(), created.ID, Viewer{
		UserID: f.clientID,
		Role:   auth.RoleClient,
	})
	require.NoError(t, err)
	require.NotNil(t, dto.Client)
	assert.Equal(t, "Awa Diop", dto.ContactInfo.Name)
	assert.Equal(t, "+221770000001", dto.ContactInfo.Phone)
}

func TestGetBooking_ProviderGetsRedactedContact(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	dto, err := f.svc.GetBooking(context.Background(), created.ID, Viewer{
		UserID: f.providerUserID(t),
		Role:   auth.RoleProvider,
	})
	require.NoError(t, err)

	assert.Nil(t, dto.Client, "client reference must be omitted")
	assert.Equal(t, "Client #"+created.BookingNumber[len(created.BookingNumber)-4:], dto.ContactInfo.Name)
	assert.Equal(t, "***********", dto.ContactInfo.Phone)
	assert.Equal(t, "***********", dto.ContactInfo.Email)
}

func TestGetBooking_RedactionIndependentOfStatus(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, uuid.New(), "completed", "")
	require.NoError(t, err)

	dto, err := f.svc.GetBooking(context.Background(), created.ID, Viewer{
		UserID: f.providerUserID(t),
		Role:   auth.RoleProvider,
	})
	require.NoError(t, err)
	assert.Equal(t, "***********", dto.ContactInfo.Phone, "completion must not reveal contact details")
}

func TestGetBooking_RevealedContactVisibleToProvider(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	_, err := f.svc.RevealContact(context.Background(), created.ID, uuid.New())
	require.NoError(t, err)

	dto, err := f.svc.GetBooking(context.Background(), created.ID, Viewer{
		UserID: f.providerUserID(t),
		Role:   auth.RoleProvider,
	})
	require.NoError(t, err)
	assert.Equal(t, "Awa Diop", dto.ContactInfo.Name)
	assert.True(t, dto.CanSeeContact)
}

func TestGetBookingByNumber_OwnerLookup(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	dto, err := f.svc.GetBookingByNumber(context.Background(), created.BookingNumber, Viewer{
		UserID: f.clientID,
		Role:   auth.RoleClient,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, dto.ID)
	assert.Equal(t, "Awa Diop", dto.ContactInfo.Name)
}

func TestGetBookingByNumber_UnknownNumber(t *testing.T) {
	f := newFixture(t)
	f.createBooking(t)

	_, err := f.svc.GetBookingByNumber(context.Background(), "BK-ZZZZZZ", Viewer{
		UserID: f.clientID,
		Role:   auth.RoleClient,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestGetBookingByNumber_ProviderGetsRedactedContact(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	dto, err := f.svc.GetBookingByNumber(context.Background(), created.BookingNumber, Viewer{
		UserID: f.providerUserID(t),
		Role:   auth.RoleProvider,
	})
	require.NoError(t, err)
	assert.Nil(t, dto.Client)
	assert.Equal(t, "***********", dto.ContactInfo.Phone)
}

func TestGetBooking_StrangerForbidden(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	stranger := &user.User{ID: uuid.New(), Role: "client"}
	f.users.store[stranger.ID] = stranger

	_, err := f.svc.GetBooking(context.Background(), created.ID, Viewer{
		UserID: stranger.ID,
		Role:   auth.RoleClient,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestGetBooking_AdminSeesEverything(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	dto, err := f.svc.GetBooking(context.Background(), created.ID, Viewer{
		UserID: uuid.New(),
		Role:   auth.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "Awa Diop", dto.ContactInfo.Name)
}

func TestGetMyBookings_InvalidStatusRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetMyBookings(context.Background(), f.clientID, "delivered")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestGetProviderBookings_RequiresProviderProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetProviderBookings(context.Background(), f.clientID, "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestGetProviderBookings_RedactsUndisclosedContacts(t *testing.T) {
	f := newFixture(t)
	f.createBooking(t)

	list, err := f.svc.GetProviderBookings(context.Background(), f.providerUserID(t), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Client)
	assert.Equal(t, "***********", list[0].ContactInfo.Phone)
}

func TestUpdateStatus_CompletedBumpsProviderCounterOnce(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)
	adminID := uuid.New()

	dto, err := f.svc.UpdateStatus(context.Background(), created.ID, adminID, "completed", "done on site")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, dto.Status)
	assert.NotNil(t, dto.CompletedAt)
	assert.Equal(t, 1, f.providers.completedBumps[f.providerID])

	// Retrying against the completed booking is rejected and the counter
	// stays where it is.
	_, err = f.svc.UpdateStatus(context.Background(), created.ID, adminID, "completed", "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Equal(t, 1, f.providers.completedBumps[f.providerID])
}

func TestUpdateStatus_InvalidStatusRejected(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, uuid.New(), "shipped", "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestUpdateStatus_ConcurrentWriteLoserGetsConflict(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)
	adminID := uuid.New()

	// While the first transition holds a stale read, a competing admin
	// confirms the booking. The conditional update must then fail.
	var raced bool
	f.bookings.beforeUpdate = func() {
		if raced {
			return
		}
		raced = true
		_, err := f.svc.UpdateStatus(context.Background(), created.ID, adminID, "confirmed", "phoned provider")
		require.NoError(t, err)
	}

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, adminID, "in_progress", "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	// The winner's write is the only one that landed.
	f.bookings.beforeUpdate = nil
	stored, err := f.bookings.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, stored.Status())
	assert.Len(t, stored.StatusHistory(), 2)
	assert.Equal(t, int64(2), stored.Version())
}

func TestCancelBooking_ClientFlow(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	dto, err := f.svc.CancelBooking(context.Background(), created.ID, f.clientID, "schedule conflict")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, dto.Status)
	assert.NotNil(t, dto.CancelledAt)

	last := dto.StatusHistory[len(dto.StatusHistory)-1]
	assert.Equal(t, "Cancelled by client. Reason: schedule conflict", last.Note)
}

func TestCancelBooking_WrongClientForbidden(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	_, err := f.svc.CancelBooking(context.Background(), created.ID, uuid.New(), "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestRateBooking_PropagatesToProviderAndServices(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, uuid.New(), "completed", "")
	require.NoError(t, err)

	dto, err := f.svc.RateBooking(context.Background(), created.ID, f.clientID, 5, "excellent")
	require.NoError(t, err)
	require.NotNil(t, dto.Rating.ClientRating)
	assert.Equal(t, 5, dto.Rating.ClientRating.Rating)

	assert.Equal(t, 1, f.providers.savedRatings)
	assert.Equal(t, 1, f.services.savedRatings)
	assert.InDelta(t, 5.0, f.providers.store[f.providerID].AverageRating, 1e-9)
	assert.InDelta(t, 5.0, f.services.store[f.serviceID].AverageRating, 1e-9)
}

func TestRateBooking_SecondAttemptRejected(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, uuid.New(), "completed", "")
	require.NoError(t, err)

	_, err = f.svc.RateBooking(context.Background(), created.ID, f.clientID, 5, "")
	require.NoError(t, err)

	_, err = f.svc.RateBooking(context.Background(), created.ID, f.clientID, 1, "oops")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	// Propagation only happened for the first attempt.
	assert.Equal(t, 1, f.providers.savedRatings)
	assert.Equal(t, 1, f.services.savedRatings)
}

func TestRecordPayment_DuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	created := f.createBooking(t)

	require.NoError(t, f.svc.RecordPayment(context.Background(), created.ID, "MM-111"))

	err := f.svc.RecordPayment(context.Background(), created.ID, "MM-222")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	bk, err := f.bookings.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "MM-111", bk.Payment().TransactionID)
	assert.Equal(t, booking.StatusPending, bk.Status(), "payment must not advance the lifecycle")
}

func TestListAllBookings_FiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	f.createBooking(t)
	f.createBooking(t)

	result, err := f.svc.ListAllBookings(context.Background(), AdminListFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Items, 2)

	result, err = f.svc.ListAllBookings(context.Background(), AdminListFilter{Status: "cancelled"}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, result.Total)

	_, err = f.svc.ListAllBookings(context.Background(), AdminListFilter{Status: "bogus"}, 1, 20)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestGetBookingStats_ReportsAllStatuses(t *testing.T) {
	f := newFixture(t)
	f.createBooking(t)
	created := f.createBooking(t)
	_, err := f.svc.CancelBooking(context.Background(), created.ID, f.clientID, "")
	require.NoError(t, err)

	stats, err := f.svc.GetBookingStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats["pending"])
	assert.Equal(t, int64(1), stats["cancelled"])
	assert.Equal(t, int64(0), stats["completed"])
	assert.Len(t, stats, len(booking.AllStatuses))
}
