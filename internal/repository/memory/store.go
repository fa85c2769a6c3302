// Package memory is an in-process implementation of the repository
// interfaces. It backs the service when POSTGRES_DSN is unset and in tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/repository"
)

// Store holds every collection behind one lock. Values are copied on the way
// in and out so callers never alias stored records.
type Store struct {
	mu          sync.RWMutex
	seq         int64
	now         func() time.Time
	users       map[string]*userRecord
	complaints  map[string]*complaintRecord
	assignments map[string]*assignmentRecord
	messages    []messageRecord
}

type userRecord struct {
	seq  int64
	user domain.User
}

type complaintRecord struct {
	seq       int64
	complaint domain.Complaint
}

type assignmentRecord struct {
	seq        int64
	assignment domain.AssignedComplaint
}

type messageRecord struct {
	seq     int64
	message domain.Message
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:         time.Now,
		users:       make(map[string]*userRecord),
		complaints:  make(map[string]*complaintRecord),
		assignments: make(map[string]*assignmentRecord),
	}
}

// Users returns the user collection.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Complaints returns the complaint collection.
func (s *Store) Complaints() repository.ComplaintRepository { return &complaintRepo{s} }

// Assignments returns the assignment collection.
func (s *Store) Assignments() repository.AssignmentRepository { return &assignmentRepo{s} }

// Messages returns the message collection.
func (s *Store) Messages() repository.MessageRepository { return &messageRepo{s} }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func newID() string {
	return uuid.NewString()
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneUser(u domain.User) domain.User {
	u.Department = cloneString(u.Department)
	u.District = cloneString(u.District)
	return u
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	c.Images = slices.Clone(c.Images)
	if c.Images == nil {
		c.Images = []string{}
	}
	c.EscalationDate = cloneTime(c.EscalationDate)
	c.CompletionTime = cloneTime(c.CompletionTime)
	return c
}

func cloneAssignment(a domain.AssignedComplaint) domain.AssignedComplaint {
	a.CompletionTime = cloneTime(a.CompletionTime)
	return a
}

// ---- users ----

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, "") {
		return repository.ErrDuplicate
	}
	now := s.now()
	user.ID = newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = &userRecord{seq: s.next(), user: cloneUser(*user)}
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	user.CreatedAt = rec.user.CreatedAt
	user.UpdatedAt = s.now()
	rec.user = cloneUser(*user)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := cloneUser(rec.user)
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.users {
		if rec.user.Email == email {
			u := cloneUser(rec.user)
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*userRecord, 0, len(s.users))
	for _, rec := range s.users {
		if filter.Role != nil && rec.user.Role != *filter.Role {
			continue
		}
		if filter.District != nil && (rec.user.District == nil || *rec.user.District != *filter.District) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	result := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		result = append(result, cloneUser(rec.user))
	}
	return result, nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, rec := range s.users {
		if id != exceptID && rec.user.Email == email {
			return true
		}
	}
	return false
}

// ---- complaints ----

type complaintRepo struct{ s *Store }

func (r *complaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c.ID = newID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Images == nil {
		c.Images = []string{}
	}
	s.complaints[c.ID] = &complaintRecord{seq: s.next(), complaint: cloneComplaint(*c)}
	return nil
}

func (r *complaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneComplaint(rec.complaint)
	return &c, nil
}

func (r *complaintRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Complaint, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*complaintRecord, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if rec, ok := s.complaints[id]; ok {
			recs = append(recs, rec)
		}
	}
	return newestFirst(recs), nil
}

func (r *complaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*complaintRecord, 0, len(s.complaints))
	for _, rec := range s.complaints {
		if filter.UserID != nil && rec.complaint.UserID != *filter.UserID {
			continue
		}
		if filter.Escalated != nil && rec.complaint.Escalated != *filter.Escalated {
			continue
		}
		recs = append(recs, rec)
	}
	return newestFirst(recs), nil
}

func newestFirst(recs []*complaintRecord) []domain.Complaint {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].complaint.CreatedAt, recs[j].complaint.CreatedAt
		if a.Equal(b) {
			return recs[i].seq > recs[j].seq
		}
		return a.After(b)
	})
	result := make([]domain.Complaint, 0, len(recs))
	for _, rec := range recs {
		result = append(result, cloneComplaint(rec.complaint))
	}
	return result
}

func (r *complaintRepo) update(id string, mutate func(c *domain.Complaint)) (*domain.Complaint, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	mutate(&rec.complaint)
	rec.complaint.UpdatedAt = s.now()
	c := cloneComplaint(rec.complaint)
	return &c, nil
}

func (r *complaintRepo) UpdateStatus(_ context.Context, id string, status domain.ComplaintStatus, completionTime *time.Time) (*domain.Complaint, error) {
	return r.update(id, func(c *domain.Complaint) {
		c.Status = status
		if completionTime != nil {
			c.CompletionTime = cloneTime(completionTime)
		}
	})
}

func (r *complaintRepo) MarkAssigned(_ context.Context, id, agentName string) error {
	_, err := r.update(id, func(c *domain.Complaint) {
		c.Assigned = true
		c.AgentName = agentName
	})
	return err
}

func (r *complaintRepo) SetCanEscalate(_ context.Context, id string, canEscalate bool) (*domain.Complaint, error) {
	return r.update(id, func(c *domain.Complaint) {
		c.CanEscalate = canEscalate
	})
}

func (r *complaintRepo) MarkEscalated(_ context.Context, id, reason string, at time.Time) (*domain.Complaint, error) {
	return r.update(id, func(c *domain.Complaint) {
		c.Escalated = true
		c.EscalationReason = reason
		c.EscalationDate = &at
	})
}

func (r *complaintRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.complaints {
		if rec.complaint.UserID == userID {
			delete(s.complaints, id)
			n++
		}
	}
	return n, nil
}

// ---- assignments ----

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) Create(_ context.Context, a *domain.AssignedComplaint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a.ID = newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.assignments[a.ID] = &assignmentRecord{seq: s.next(), assignment: cloneAssignment(*a)}
	return nil
}

func (r *assignmentRepo) List(_ context.Context) ([]domain.AssignedComplaint, error) {
	return r.collect(func(domain.AssignedComplaint) bool { return true }), nil
}

func (r *assignmentRepo) ListByAgent(_ context.Context, agentID string) ([]domain.AssignedComplaint, error) {
	return r.collect(func(a domain.AssignedComplaint) bool { return a.AgentID == agentID }), nil
}

func (r *assignmentRepo) collect(keep func(domain.AssignedComplaint) bool) []domain.AssignedComplaint {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*assignmentRecord, 0, len(s.assignments))
	for _, rec := range s.assignments {
		if keep(rec.assignment) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	result := make([]domain.AssignedComplaint, 0, len(recs))
	for _, rec := range recs {
		result = append(result, cloneAssignment(rec.assignment))
	}
	return result
}

func (r *assignmentRepo) UpdateStatusByComplaint(_ context.Context, complaintID string, status domain.ComplaintStatus, completionTime *time.Time) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := s.now()
	for _, rec := range s.assignments {
		if rec.assignment.ComplaintID != complaintID {
			continue
		}
		rec.assignment.Status = status
		if completionTime != nil {
			rec.assignment.CompletionTime = cloneTime(completionTime)
		}
		rec.assignment.UpdatedAt = now
		n++
	}
	return n, nil
}

func (r *assignmentRepo) DeleteByAgent(_ context.Context, agentID string) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.assignments {
		if rec.assignment.AgentID == agentID {
			delete(s.assignments, id)
			n++
		}
	}
	return n, nil
}

// ---- messages ----

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(_ context.Context, msg *domain.Message) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = newID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	s.messages = append(s.messages, messageRecord{seq: s.next(), message: *msg})
	return nil
}

func (r *messageRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.Message, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]messageRecord, 0)
	for _, rec := range s.messages {
		if rec.message.ComplaintID == complaintID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].message.CreatedAt, recs[j].message.CreatedAt
		if a.Equal(b) {
			return recs[i].seq > recs[j].seq
		}
		return a.After(b)
	})

	result := make([]domain.Message, 0, len(recs))
	for _, rec := range recs {
		result = append(result, rec.message)
	}
	return result, nil
}
