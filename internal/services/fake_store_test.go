package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
)

// memStore is an in-memory repositories.Store. A transaction holds the
// store mutex for its whole duration and restores a snapshot when fn fails,
// which gives the same all-or-nothing and serialization guarantees as the
// row locks of the postgres store for the flows under test.
type memStore struct {
	mu             sync.Mutex
	nextID         uint
	users          map[uint]*models.User
	vehicles       map[uint]*models.Vehicle
	rides          map[uint]*models.Ride
	participations map[uint]*models.Participation
	reviews        map[uint]*models.Review
	commissions    map[uint]*models.PlatformCommission
	resets         map[uint]*models.PasswordReset
	txCount        int

	// passwordWriteErr makes memTx.SetPassword fail.
	passwordWriteErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:          map[uint]*models.User{},
		vehicles:       map[uint]*models.Vehicle{},
		rides:          map[uint]*models.Ride{},
		participations: map[uint]*models.Participation{},
		reviews:        map[uint]*models.Review{},
		commissions:    map[uint]*models.PlatformCommission{},
		resets:         map[uint]*models.PasswordReset{},
	}
}

var (
	_ repositories.Store                   = (*memStore)(nil)
	_ repositories.UserRepository          = (*memStore)(nil)
	_ repositories.VehicleRepository       = (*memStore)(nil)
	_ repositories.RideRepository          = (*memStore)(nil)
	_ repositories.ReviewRepository        = (*memStore)(nil)
	_ repositories.PasswordResetRepository = (*memStore)(nil)
	_ repositories.Tx                      = (*memTx)(nil)
)

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

type memSnapshot struct {
	nextID         uint
	users          map[uint]models.User
	vehicles       map[uint]models.Vehicle
	rides          map[uint]models.Ride
	participations map[uint]models.Participation
	reviews        map[uint]models.Review
	commissions    map[uint]models.PlatformCommission
	resets         map[uint]models.PasswordReset
}

func copyMap[T any](src map[uint]*T) map[uint]T {
	dst := make(map[uint]T, len(src))
	for k, v := range src {
		dst[k] = *v
	}
	return dst
}

func restoreMap[T any](src map[uint]T) map[uint]*T {
	dst := make(map[uint]*T, len(src))
	for k, v := range src {
		v := v
		dst[k] = &v
	}
	return dst
}

func (m *memStore) snapshot() memSnapshot {
	return memSnapshot{
		nextID:         m.nextID,
		users:          copyMap(m.users),
		vehicles:       copyMap(m.vehicles),
		rides:          copyMap(m.rides),
		participations: copyMap(m.participations),
		reviews:        copyMap(m.reviews),
		commissions:    copyMap(m.commissions),
		resets:         copyMap(m.resets),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.nextID = s.nextID
	m.users = restoreMap(s.users)
	m.vehicles = restoreMap(s.vehicles)
	m.rides = restoreMap(s.rides)
	m.participations = restoreMap(s.participations)
	m.reviews = restoreMap(s.reviews)
	m.commissions = restoreMap(s.commissions)
	m.resets = restoreMap(s.resets)
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	snap := m.snapshot()
	if err := fn(&memTx{m: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// Seeding and inspection helpers used by the tests.

func (m *memStore) addUser(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.id()
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	m.users[u.ID] = &u
	out := u
	return &out
}

func (m *memStore) addVehicle(v models.Vehicle) *models.Vehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.id()
	m.vehicles[v.ID] = &v
	out := v
	return &out
}

func (m *memStore) addRide(r models.Ride) *models.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	if r.Status == "" {
		r.Status = models.RideStatusPlanned
	}
	m.rides[r.ID] = &r
	out := r
	return &out
}

func (m *memStore) user(id uint) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

func (m *memStore) ride(id uint) models.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rides[id]
}

func (m *memStore) participationsOf(rideID uint) []models.Participation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Participation
	for _, p := range m.participations {
		if p.RideID == rideID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) allReviews() []models.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, r := range m.reviews {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) allCommissions() []models.PlatformCommission {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PlatformCommission
	for _, c := range m.commissions {
		out = append(out, *c)
	}
	return out
}

// memTx runs with memStore.mu held.
type memTx struct {
	m *memStore
}

func (t *memTx) LockRide(id uint) (*models.Ride, error) {
	r, ok := t.m.rides[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (t *memTx) LockUser(id uint) (*models.User, error) {
	u, ok := t.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (t *memTx) LockUsers(ids []uint) (map[uint]*models.User, error) {
	out := make(map[uint]*models.User, len(ids))
	for _, id := range ids {
		u, err := t.LockUser(id)
		if err != nil {
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}

func (t *memTx) LockVehicle(id uint) (*models.Vehicle, error) {
	v, ok := t.m.vehicles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (t *memTx) FindActiveParticipation(rideID, passengerID uint) (*models.Participation, error) {
	for _, p := range t.m.participations {
		if p.RideID == rideID && p.PassengerID == passengerID && !p.Cancelled {
			out := *p
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *memTx) ActiveParticipations(rideID uint) ([]models.Participation, error) {
	var out []models.Participation
	for _, p := range t.m.participations {
		if p.RideID == rideID && !p.Cancelled {
			cp := *p
			if u, ok := t.m.users[p.PassengerID]; ok {
				passenger := *u
				cp.Passenger = &passenger
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CreateParticipation(p *models.Participation) error {
	if _, err := t.FindActiveParticipation(p.RideID, p.PassengerID); err == nil {
		return repositories.ErrDuplicate
	}
	p.ID = t.m.id()
	stored := *p
	t.m.participations[p.ID] = &stored
	return nil
}

func (t *memTx) CancelParticipation(id uint, at time.Time) (int64, error) {
	p, ok := t.m.participations[id]
	if !ok || p.Cancelled {
		return 0, nil
	}
	p.Cancelled = true
	p.CancelledAt = &at
	p.Validation = models.ValidationNotRequested
	return 1, nil
}

func (t *memTx) CancelRideParticipations(rideID uint, at time.Time) (int64, error) {
	var n int64
	for _, p := range t.m.participations {
		if p.RideID == rideID && !p.Cancelled {
			p.Cancelled = true
			p.CancelledAt = &at
			p.Validation = models.ValidationNotRequested
			n++
		}
	}
	return n, nil
}

func (t *memTx) RequestValidation(rideID uint) (int64, error) {
	var n int64
	for _, p := range t.m.participations {
		if p.RideID == rideID && !p.Cancelled && p.Validation == models.ValidationNotRequested {
			p.Validation = models.ValidationPending
			n++
		}
	}
	return n, nil
}

func (t *memTx) MarkValidated(participationID uint) (int64, error) {
	p, ok := t.m.participations[participationID]
	if !ok || p.Validation != models.ValidationPending {
		return 0, nil
	}
	p.Validation = models.ValidationOK
	return 1, nil
}

func (t *memTx) AdjustSeats(rideID uint, delta int) error {
	r, ok := t.m.rides[rideID]
	if !ok {
		return repositories.ErrNotFound
	}
	next := r.SeatsAvailable + delta
	if next < 0 || next > r.SeatsTotal {
		return errors.New("seat count out of bounds")
	}
	r.SeatsAvailable = next
	return nil
}

func (t *memTx) AdjustCredits(userID uint, delta int) error {
	u, ok := t.m.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	if u.Credits+delta < 0 {
		return errors.New("credits would go negative")
	}
	u.Credits += delta
	return nil
}

func (t *memTx) TransitionRide(rideID, driverID uint, from []models.RideStatus, to models.RideStatus) (int64, error) {
	r, ok := t.m.rides[rideID]
	if !ok || r.DriverID != driverID || !allowed(r.Status, from) {
		return 0, nil
	}
	r.Status = to
	return 1, nil
}

func (t *memTx) DeclareIncident(rideID, driverID uint, from []models.RideStatus, comment string, at time.Time) (int64, error) {
	r, ok := t.m.rides[rideID]
	if !ok || r.DriverID != driverID || !allowed(r.Status, from) {
		return 0, nil
	}
	r.Status = models.RideStatusIncident
	r.IncidentComment = comment
	r.IncidentDeclaredAt = &at
	r.IncidentResolved = false
	return 1, nil
}

func (t *memTx) ReviewExists(participationID uint) (bool, error) {
	for _, r := range t.m.reviews {
		if r.ParticipationID == participationID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateReview(r *models.Review) error {
	if exists, _ := t.ReviewExists(r.ParticipationID); exists {
		return repositories.ErrDuplicate
	}
	r.ID = t.m.id()
	stored := *r
	t.m.reviews[r.ID] = &stored
	return nil
}

func (t *memTx) CreateCommission(c *models.PlatformCommission) error {
	for _, existing := range t.m.commissions {
		if existing.ParticipationID == c.ParticipationID {
			return repositories.ErrDuplicate
		}
	}
	c.ID = t.m.id()
	stored := *c
	t.m.commissions[c.ID] = &stored
	return nil
}

func (t *memTx) CreateRide(ride *models.Ride) error {
	ride.ID = t.m.id()
	stored := *ride
	t.m.rides[ride.ID] = &stored
	return nil
}

func (t *memTx) CountOpenRides(vehicleID uint) (int64, error) {
	var n int64
	for _, r := range t.m.rides {
		if r.VehicleID == vehicleID && (r.Status == models.RideStatusPlanned || r.Status == models.RideStatusInProgress) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) DeactivateVehicle(vehicleID uint, at time.Time) (int64, error) {
	v, ok := t.m.vehicles[vehicleID]
	if !ok || !v.Active {
		return 0, nil
	}
	v.Active = false
	v.DeactivatedAt = &at
	return 1, nil
}

func (t *memTx) ConsumePasswordReset(tokenHash string, now time.Time) (*models.PasswordReset, error) {
	for _, r := range t.m.resets {
		if r.TokenHash == tokenHash {
			if !r.IsValid(now) {
				return nil, repositories.ErrNotFound
			}
			r.Used = true
			out := *r
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *memTx) SetPassword(userID uint, hash string) error {
	if t.m.passwordWriteErr != nil {
		return t.m.passwordWriteErr
	}
	u, ok := t.m.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// Repositories.

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) || u.Pseudo == user.Pseudo {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.id()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			out := *u
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memStore) UpdateProfile(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID != user.ID && u.Pseudo == user.Pseudo {
			return repositories.ErrDuplicate
		}
	}
	u, ok := m.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Pseudo, u.Phone = user.Pseudo, user.Phone
	u.IsDriver, u.IsPassenger = user.IsDriver, user.IsPassenger
	u.Smoker, u.Animals = user.Smoker, user.Animals
	return nil
}

func (m *memStore) SetPhoto(_ context.Context, userID uint, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PhotoURL = url
	return nil
}

func (m *memStore) SetStatus(_ context.Context, userID uint, from, to models.UserStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.Status != from {
		return 0, nil
	}
	u.Status = to
	return 1, nil
}

func (m *memStore) CreateEmployee(ctx context.Context, user *models.User, createdBy uint) error {
	if err := m.CreateUser(ctx, user); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Employee = &models.Employee{UserID: user.ID, CreatedBy: &createdBy}
	m.users[user.ID].Employee = user.Employee
	return nil
}

func (m *memStore) CreateVehicle(_ context.Context, v *models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.id()
	stored := *v
	m.vehicles[v.ID] = &stored
	return nil
}

func (m *memStore) GetVehicle(_ context.Context, id uint) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (m *memStore) VehiclesByOwner(_ context.Context, ownerID uint, activeOnly bool) ([]models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Vehicle{}
	for _, v := range m.vehicles {
		if v.OwnerID == ownerID && (!activeOnly || v.Active) {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ActivePlateExists(_ context.Context, plate string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vehicles {
		if v.Active && v.Plate == plate {
			return true, nil
		}
	}
	return false, nil
}

// withRelations attaches driver and vehicle; m.mu must be held.
func (m *memStore) withRelations(r *models.Ride) models.Ride {
	out := *r
	if u, ok := m.users[r.DriverID]; ok {
		driver := *u
		out.Driver = &driver
	}
	if v, ok := m.vehicles[r.VehicleID]; ok {
		vehicle := *v
		out.Vehicle = &vehicle
	}
	return out
}

func (m *memStore) GetRide(_ context.Context, id uint) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := m.withRelations(r)
	return &out, nil
}

// bookable mirrors the search scope of the postgres store; m.mu must be
// held.
func (m *memStore) bookable(q repositories.RideQuery) []models.Ride {
	var out []models.Ride
	for _, r := range m.rides {
		if r.Status != models.RideStatusPlanned || r.SeatsAvailable < 1 {
			continue
		}
		if !strings.EqualFold(r.DepartureCity, q.DepartureCity) || !strings.EqualFold(r.ArrivalCity, q.ArrivalCity) {
			continue
		}
		if r.DepartureAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !r.DepartureAt.Before(q.To) {
			continue
		}
		if q.MaxPrice > 0 && r.PriceCredits > q.MaxPrice {
			continue
		}
		if q.MaxDuration > 0 && r.Duration() > q.MaxDuration {
			continue
		}
		if q.MinRating > 0 && m.driverRating(r.DriverID) < q.MinRating {
			continue
		}
		ride := m.withRelations(r)
		if q.EcoOnly && !ride.IsEco() {
			continue
		}
		out = append(out, ride)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureAt.Before(out[j].DepartureAt) })
	return out
}

// driverRating is the approved average, zero without reviews; m.mu must be
// held.
func (m *memStore) driverRating(driverID uint) float64 {
	sum, count := 0, 0
	for _, r := range m.reviews {
		if r.DriverID == driverID && r.Status == models.ReviewStatusApproved {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func (m *memStore) SearchRides(_ context.Context, q repositories.RideQuery) ([]models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.bookable(q)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) NextDepartureDate(_ context.Context, q repositories.RideQuery) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.To = time.Time{}
	rides := m.bookable(q)
	if len(rides) == 0 {
		return time.Time{}, repositories.ErrNotFound
	}
	return rides[0].DepartureAt, nil
}

func (m *memStore) RidesByDriver(_ context.Context, driverID uint) ([]models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Ride{}
	for _, r := range m.rides {
		if r.DriverID == driverID {
			out = append(out, m.withRelations(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureAt.Before(out[j].DepartureAt) })
	return out, nil
}

func (m *memStore) ParticipationsByPassenger(_ context.Context, passengerID uint) ([]models.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Participation{}
	for _, p := range m.participations {
		if p.PassengerID != passengerID {
			continue
		}
		cp := *p
		if r, ok := m.rides[p.RideID]; ok {
			ride := m.withRelations(r)
			cp.Ride = &ride
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) OpenIncidents(_ context.Context) ([]models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Ride{}
	for _, r := range m.rides {
		if r.Status == models.RideStatusIncident && !r.IncidentResolved {
			out = append(out, m.withRelations(r))
		}
	}
	return out, nil
}

func (m *memStore) ResolveIncident(_ context.Context, rideID, employeeID uint, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideID]
	if !ok || r.Status != models.RideStatusIncident || r.IncidentResolved {
		return 0, nil
	}
	r.IncidentResolved = true
	r.IncidentResolvedAt = &at
	r.IncidentResolvedBy = &employeeID
	return 1, nil
}

func (m *memStore) ModerateReview(_ context.Context, reviewID, employeeID uint, status models.ReviewStatus, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[reviewID]
	if !ok || r.Status != models.ReviewStatusPending {
		return 0, nil
	}
	r.Status = status
	r.ModeratedBy = &employeeID
	r.ModeratedAt = &at
	return 1, nil
}

func (m *memStore) PendingReviews(_ context.Context) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for _, r := range m.reviews {
		if r.Status == models.ReviewStatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) ApprovedReviewsForDriver(_ context.Context, driverID uint) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for _, r := range m.reviews {
		if r.DriverID == driverID && r.Status == models.ReviewStatusApproved {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) DriverRatings(_ context.Context, driverIDs []uint) (map[uint]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[uint]bool, len(driverIDs))
	for _, id := range driverIDs {
		wanted[id] = true
	}
	sums := map[uint]int{}
	counts := map[uint]int{}
	for _, r := range m.reviews {
		if wanted[r.DriverID] && r.Status == models.ReviewStatusApproved {
			sums[r.DriverID] += r.Rating
			counts[r.DriverID]++
		}
	}
	out := make(map[uint]float64, len(sums))
	for id, sum := range sums {
		out[id] = float64(sum) / float64(counts[id])
	}
	return out, nil
}

func (m *memStore) ReviewByParticipation(_ context.Context, participationID uint) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ParticipationID == participationID {
			out := *r
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memStore) CreatePasswordReset(_ context.Context, reset *models.PasswordReset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reset.ID = m.id()
	stored := *reset
	m.resets[reset.ID] = &stored
	return nil
}

func (m *memStore) InvalidatePasswordResets(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resets {
		if r.UserID == userID {
			r.Used = true
		}
	}
	return nil
}

// Side-effect fakes.

type recordingNotifier struct {
	mu      sync.Mutex
	notices []RideNotice
	err     error
}

func (n *recordingNotifier) NotifyRide(_ context.Context, notice RideNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) kinds() []NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]NoticeKind, 0, len(n.notices))
	for _, notice := range n.notices {
		kinds = append(kinds, notice.Kind)
	}
	return kinds
}

type recordingJournal struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (j *recordingJournal) Record(_ context.Context, event models.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return j.err
}

func (j *recordingJournal) actions() []models.EventAction {
	j.mu.Lock()
	defer j.mu.Unlock()
	actions := make([]models.EventAction, 0, len(j.events))
	for _, e := range j.events {
		actions = append(actions, e.Action)
	}
	return actions
}
