package services

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

// memoryData is the whole state of the in-memory store. Values are copies, never shared
// with callers.
type memoryData struct {
	users          map[uuid.UUID]domain.User
	events         map[uuid.UUID]domain.Event
	participations map[uuid.UUID]domain.Participation
	notifications  map[uuid.UUID]domain.Notification
}

func (d *memoryData) clone() *memoryData {
	return &memoryData{
		users:          maps.Clone(d.users),
		events:         maps.Clone(d.events),
		participations: maps.Clone(d.participations),
		notifications:  maps.Clone(d.notifications),
	}
}

// memoryStore implements domain.Store with the same referential rules as the real backends.
// With degraded set, units of work behave like a standalone document server: rollback
// keeps earlier writes.
type memoryStore struct {
	data     *memoryData
	degraded bool
	// failNotificationAdd makes every notification insert fail.
	failNotificationAdd error

	scopes int
	units  []*memoryUnitOfWork
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: &memoryData{
		users:          map[uuid.UUID]domain.User{},
		events:         map[uuid.UUID]domain.Event{},
		participations: map[uuid.UUID]domain.Participation{},
		notifications:  map[uuid.UUID]domain.Notification{},
	}}
}

func (s *memoryStore) NewScope() *domain.Scope {
	s.scopes++
	uow := &memoryUnitOfWork{store: s}
	s.units = append(s.units, uow)
	return &domain.Scope{
		UnitOfWork:     uow,
		Users:          &memoryUsers{s},
		Events:         &memoryEvents{s},
		Participations: &memoryParticipations{s},
		Notifications:  &memoryNotifications{s},
	}
}

func (s *memoryStore) allReleased() bool {
	for _, u := range s.units {
		if u.State() != domain.TxIdle || u.releases == 0 {
			return false
		}
	}
	return true
}

func (s *memoryStore) seedUser(name, login string) *domain.User {
	u := domain.NewUser(uuid.New(), name, login+"@example.com", login, "hash", domain.UserRoleMember)
	s.data.users[u.ID] = *u
	return u
}

func (s *memoryStore) seedEvent(title string, organizer uuid.UUID) *domain.Event {
	e := domain.NewEvent(uuid.New(), title, "", "Main hall", farFuture, organizer)
	s.data.events[e.ID] = *e
	return e
}

func (s *memoryStore) seedParticipation(userID, eventID uuid.UUID, status domain.ParticipationStatus) *domain.Participation {
	p := domain.NewParticipation(uuid.New(), userID, eventID, domain.ParticipationRoleAttendee, status)
	s.data.participations[p.ID] = *p
	return p
}

type memoryUnitOfWork struct {
	store    *memoryStore
	snapshot *memoryData
	active   bool
	releases int
}

func (u *memoryUnitOfWork) BeginTransaction(context.Context) (domain.BeginOutcome, error) {
	if u.active {
		return domain.BeginReused, nil
	}
	u.active = true
	if u.store.degraded {
		return domain.BeginDegraded, nil
	}
	u.snapshot = u.store.data.clone()
	return domain.BeginStarted, nil
}

func (u *memoryUnitOfWork) SaveChanges(ctx context.Context) error { return ctx.Err() }

func (u *memoryUnitOfWork) Commit(context.Context) error {
	u.active = false
	u.snapshot = nil
	return nil
}

func (u *memoryUnitOfWork) Rollback(context.Context) error {
	if u.active && u.snapshot != nil {
		u.store.data = u.snapshot
	}
	u.active = false
	u.snapshot = nil
	return nil
}

func (u *memoryUnitOfWork) State() domain.TxState {
	if u.active {
		return domain.TxInTransaction
	}
	return domain.TxIdle
}

func (u *memoryUnitOfWork) Release(ctx context.Context) {
	u.releases++
	_ = u.Rollback(ctx)
}

func memErr(op string, kind error) error {
	return domain.NewStoreError("memory", op, kind, nil)
}

func sortedValues[T any](m map[uuid.UUID]T, keep func(T) bool, less func(a, b T) int) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		if keep(v) {
			out = append(out, &v)
		}
	}
	slices.SortFunc(out, func(a, b *T) int { return less(*a, *b) })
	return out
}

func all[T any](T) bool { return true }

type memoryUsers struct{ s *memoryStore }

func (r *memoryUsers) Add(_ context.Context, u *domain.User) (*domain.User, error) {
	d := r.s.data
	if _, ok := d.users[u.ID]; ok {
		return nil, memErr("add user", domain.ErrDuplicate)
	}
	for _, other := range d.users {
		if other.Login == u.Login {
			return nil, memErr("add user", domain.ErrDuplicate)
		}
	}
	d.users[u.ID] = *u
	c := *u
	return &c, nil
}

func (r *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, bool, error) {
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (r *memoryUsers) GetByLogin(_ context.Context, login string) (*domain.User, bool, error) {
	for _, u := range r.s.data.users {
		if u.Login == login {
			return &u, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryUsers) GetAll(context.Context) ([]*domain.User, error) {
	return sortedValues(r.s.data.users, all[domain.User], func(a, b domain.User) int { return strings.Compare(a.Login, b.Login) }), nil
}

func (r *memoryUsers) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, ok := r.s.data.users[u.ID]; !ok {
		return nil, memErr("update user", domain.ErrNotFound)
	}
	r.s.data.users[u.ID] = *u
	c := *u
	return &c, nil
}

func (r *memoryUsers) Remove(_ context.Context, id uuid.UUID) error {
	for _, p := range r.s.data.participations {
		if p.UserID == id {
			return memErr("remove user", domain.ErrRestrictedDeletion)
		}
	}
	delete(r.s.data.users, id)
	return nil
}

type memoryEvents struct{ s *memoryStore }

func byStart(a, b domain.Event) int { return a.StartTime.Compare(b.StartTime) }

func (r *memoryEvents) Add(_ context.Context, e *domain.Event) (*domain.Event, error) {
	if _, ok := r.s.data.events[e.ID]; ok {
		return nil, memErr("add event", domain.ErrDuplicate)
	}
	r.s.data.events[e.ID] = *e
	c := *e
	return &c, nil
}

func (r *memoryEvents) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, bool, error) {
	e, ok := r.s.data.events[id]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (r *memoryEvents) FindByTitle(_ context.Context, title string) ([]*domain.Event, error) {
	title = strings.ToLower(title)
	return sortedValues(r.s.data.events, func(e domain.Event) bool {
		return strings.Contains(strings.ToLower(e.Title), title)
	}, byStart), nil
}

func (r *memoryEvents) ListByOrganizer(_ context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	return sortedValues(r.s.data.events, func(e domain.Event) bool { return e.OrganizerID == organizerID }, byStart), nil
}

func (r *memoryEvents) GetAll(context.Context) ([]*domain.Event, error) {
	return sortedValues(r.s.data.events, all[domain.Event], byStart), nil
}

func (r *memoryEvents) Update(_ context.Context, e *domain.Event) (*domain.Event, error) {
	if _, ok := r.s.data.events[e.ID]; !ok {
		return nil, memErr("update event", domain.ErrNotFound)
	}
	r.s.data.events[e.ID] = *e
	c := *e
	return &c, nil
}

func (r *memoryEvents) Remove(_ context.Context, id uuid.UUID) error {
	for _, p := range r.s.data.participations {
		if p.EventID == id {
			return memErr("remove event", domain.ErrRestrictedDeletion)
		}
	}
	delete(r.s.data.events, id)
	return nil
}

type memoryParticipations struct{ s *memoryStore }

func byParticipationID(a, b domain.Participation) int { return strings.Compare(a.ID.String(), b.ID.String()) }

func (r *memoryParticipations) check(op string, p *domain.Participation) error {
	d := r.s.data
	if _, ok := d.users[p.UserID]; !ok {
		return memErr(op, domain.ErrInvalidReference)
	}
	if _, ok := d.events[p.EventID]; !ok {
		return memErr(op, domain.ErrInvalidReference)
	}
	for _, other := range d.participations {
		if other.ID != p.ID && other.UserID == p.UserID && other.EventID == p.EventID {
			return memErr(op, domain.ErrDuplicate)
		}
	}
	return nil
}

func (r *memoryParticipations) Add(_ context.Context, p *domain.Participation) (*domain.Participation, error) {
	if _, ok := r.s.data.participations[p.ID]; ok {
		return nil, memErr("add participation", domain.ErrDuplicate)
	}
	if err := r.check("add participation", p); err != nil {
		return nil, err
	}
	r.s.data.participations[p.ID] = *p
	c := *p
	return &c, nil
}

func (r *memoryParticipations) GetByID(_ context.Context, id uuid.UUID) (*domain.Participation, bool, error) {
	p, ok := r.s.data.participations[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (r *memoryParticipations) GetByUserAndEvent(_ context.Context, userID, eventID uuid.UUID) (*domain.Participation, bool, error) {
	for _, p := range r.s.data.participations {
		if p.UserID == userID && p.EventID == eventID {
			return &p, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryParticipations) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	return sortedValues(r.s.data.participations, func(p domain.Participation) bool { return p.UserID == userID }, byParticipationID), nil
}

func (r *memoryParticipations) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*domain.Participation, error) {
	return sortedValues(r.s.data.participations, func(p domain.Participation) bool { return p.EventID == eventID }, byParticipationID), nil
}

func (r *memoryParticipations) GetAll(context.Context) ([]*domain.Participation, error) {
	return sortedValues(r.s.data.participations, all[domain.Participation], byParticipationID), nil
}

func (r *memoryParticipations) Update(_ context.Context, p *domain.Participation) (*domain.Participation, error) {
	if _, ok := r.s.data.participations[p.ID]; !ok {
		return nil, memErr("update participation", domain.ErrNotFound)
	}
	if err := r.check("update participation", p); err != nil {
		return nil, err
	}
	r.s.data.participations[p.ID] = *p
	c := *p
	return &c, nil
}

func (r *memoryParticipations) Remove(_ context.Context, id uuid.UUID) error {
	for nid, n := range r.s.data.notifications {
		if n.ParticipationID == id {
			delete(r.s.data.notifications, nid)
		}
	}
	delete(r.s.data.participations, id)
	return nil
}

type memoryNotifications struct{ s *memoryStore }

func bySentAtDesc(a, b domain.Notification) int { return b.SentAt.Compare(a.SentAt) }

func (r *memoryNotifications) Add(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	if err := r.s.failNotificationAdd; err != nil {
		return nil, domain.NewStoreError("memory", "add notification", domain.ErrStorageFailure, err)
	}
	if _, ok := r.s.data.notifications[n.ID]; ok {
		return nil, memErr("add notification", domain.ErrDuplicate)
	}
	if _, ok := r.s.data.participations[n.ParticipationID]; !ok {
		return nil, memErr("add notification", domain.ErrInvalidReference)
	}
	r.s.data.notifications[n.ID] = *n
	c := *n
	return &c, nil
}

func (r *memoryNotifications) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, bool, error) {
	n, ok := r.s.data.notifications[id]
	if !ok {
		return nil, false, nil
	}
	return &n, true, nil
}

func (r *memoryNotifications) ListByParticipation(_ context.Context, participationID uuid.UUID) ([]*domain.Notification, error) {
	return sortedValues(r.s.data.notifications, func(n domain.Notification) bool {
		return n.ParticipationID == participationID
	}, bySentAtDesc), nil
}

func (r *memoryNotifications) GetAll(context.Context) ([]*domain.Notification, error) {
	return sortedValues(r.s.data.notifications, all[domain.Notification], bySentAtDesc), nil
}

func (r *memoryNotifications) Update(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	if _, ok := r.s.data.notifications[n.ID]; !ok {
		return nil, memErr("update notification", domain.ErrNotFound)
	}
	r.s.data.notifications[n.ID] = *n
	c := *n
	return &c, nil
}

func (r *memoryNotifications) Remove(_ context.Context, id uuid.UUID) error {
	delete(r.s.data.notifications, id)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeMailer records sent e-mails.
type fakeMailer struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to, subject, html, text string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to, subject, html, text})
	return nil
}

// fakeRenderer echoes the template name and event title.
type fakeRenderer struct {
	err error
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	d := data.(*domain.NotificationEmailData)
	return name + ": " + d.EventTitle, "<p>" + d.Text + "</p>", d.Text, nil
}
