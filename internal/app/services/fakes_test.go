package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/placementcell/pipeline/internal/app/auth"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/repositories"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/cache"
	"github.com/rs/zerolog"
)

// memState is an in-memory stand-in for the Postgres schema. One mutex plays
// the role of the row locks and unique constraints the repositories rely on.
type memState struct {
	mu sync.Mutex

	nextID int64

	companies map[int64]*models.Company
	colleges  map[int64]string
	students  map[int64]*models.Student
	actors    map[string]*models.Actor

	jobs        map[int64]*models.Job
	links       []models.CollegeJobLink
	rounds      []models.Round
	enrollments map[[2]int64]*models.Enrollment
	offers      []models.Offer
}

func newMemState() *memState {
	return &memState{
		companies:   map[int64]*models.Company{},
		colleges:    map[int64]string{},
		students:    map[int64]*models.Student{},
		actors:      map[string]*models.Actor{},
		jobs:        map[int64]*models.Job{},
		enrollments: map[[2]int64]*models.Enrollment{},
	}
}

func (m *memState) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memState) addCompany(uid string, id int64, name string) *models.Company {
	c := &models.Company{ID: id, AuthUID: uid, Name: name}
	m.companies[id] = c
	m.actors[uid] = &models.Actor{UID: uid, Role: models.RoleCompany, Company: c}
	return c
}

func (m *memState) addStaff(uid string, id, collegeID int64, role models.StaffRole) *models.CollegeStaff {
	s := &models.CollegeStaff{ID: id, AuthUID: uid, CollegeID: collegeID, Role: role}
	m.actors[uid] = &models.Actor{UID: uid, Role: models.RoleCollege, Staff: s}
	return s
}

func (m *memState) addStudent(uid string, s *models.Student) *models.Student {
	s.AuthUID = uid
	m.students[s.ID] = s
	m.actors[uid] = &models.Actor{UID: uid, Role: models.RoleStudent, Student: s}
	return s
}

// fakeProfiles implements ProfileStore and auth.ActorResolver
type fakeProfiles struct{ *memState }

func (f fakeProfiles) ResolveActor(_ context.Context, uid string) (*models.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.actors[uid]; ok {
		return a, nil
	}
	return nil, apperrors.ErrUnknownActor
}

func (f fakeProfiles) GetStudent(_ context.Context, id int64) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeProfiles) GetCompany(_ context.Context, id int64) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.companies[id]; ok {
		return c, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

// fakeJobs implements JobStore
type fakeJobs struct{ *memState }

func (f fakeJobs) CreateWithLinks(_ context.Context, job *models.Job, collegeIDs []int64) (*models.JobLinkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var missing []int64
	for _, id := range collegeIDs {
		if _, ok := f.colleges[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewResourceNotFoundError("college(s) not found")
	}

	result := &models.JobLinkResult{}
	for _, existing := range f.jobs {
		if existing.CompanyID == job.CompanyID && existing.Title == job.Title &&
			existing.Location == job.Location && existing.PostedDate.Equal(job.PostedDate) {
			result.Job = existing
		}
	}
	var stored *models.Job
	if result.Job == nil {
		copied := *job
		copied.ID = f.id()
		copied.CreatedAt = time.Now()
		stored = &copied
		result.Job = stored
		result.JobCreated = true
	}

	var newLinks []models.CollegeJobLink
	for _, collegeID := range collegeIDs {
		if f.linkFor(result.Job.ID, collegeID) != nil {
			result.AlreadyLinked = append(result.AlreadyLinked, collegeID)
			continue
		}
		newLinks = append(newLinks, models.CollegeJobLink{
			ID: f.id(), JobID: result.Job.ID, CollegeID: collegeID, Status: models.LinkStatusPending,
		})
		result.LinkedColleges = append(result.LinkedColleges, collegeID)
	}
	if !result.JobCreated && len(result.LinkedColleges) == 0 {
		return nil, apperrors.ErrResourceAlreadyExists
	}

	if stored != nil {
		f.jobs[stored.ID] = stored
	}
	f.links = append(f.links, newLinks...)
	return result, nil
}

func (m *memState) linkFor(jobID, collegeID int64) *models.CollegeJobLink {
	for i := range m.links {
		if m.links[i].JobID == jobID && m.links[i].CollegeID == collegeID {
			return &m.links[i]
		}
	}
	return nil
}

func (f fakeJobs) GetByID(_ context.Context, id int64) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeJobs) ListByCompany(_ context.Context, companyID int64) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Job{}
	for _, j := range f.jobs {
		if j.CompanyID == companyID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// fakeLinks implements LinkageStore
type fakeLinks struct{ *memState }

func (f fakeLinks) GetByID(_ context.Context, id int64) (*models.CollegeJobLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeLinks) UpdateStatus(_ context.Context, id int64, status models.LinkStatus) (*models.CollegeJobLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.links {
		if f.links[i].ID == id {
			f.links[i].Status = status
			f.links[i].UpdatedAt = time.Now()
			l := f.links[i]
			return &l, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeLinks) List(_ context.Context, filter repositories.LinkageFilter) ([]models.LinkedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.LinkedJob{}
	for _, l := range f.links {
		job := f.jobs[l.JobID]
		switch {
		case filter.JobID > 0 && l.JobID != filter.JobID,
			filter.CollegeID > 0 && l.CollegeID != filter.CollegeID,
			filter.CompanyID > 0 && job.CompanyID != filter.CompanyID,
			filter.Status != "" && l.Status != filter.Status:
			continue
		}
		out = append(out, models.LinkedJob{
			Link:        l,
			Job:         *job,
			CompanyName: f.companies[job.CompanyID].Name,
			CollegeName: f.colleges[l.CollegeID],
		})
	}
	return out, nil
}

func (f fakeLinks) setStatus(jobID, collegeID int64, status models.LinkStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkFor(jobID, collegeID).Status = status
}

// fakeRounds implements RoundStore
type fakeRounds struct{ *memState }

func (f fakeRounds) Append(_ context.Context, jobID int64, roundType string) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[jobID]; !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	top := 0
	for i := range f.rounds {
		if f.rounds[i].JobID == jobID && f.rounds[i].RoundNumber > top {
			top = f.rounds[i].RoundNumber
		}
	}
	for i := range f.rounds {
		if f.rounds[i].JobID == jobID && f.rounds[i].RoundNumber == top {
			f.rounds[i].IsNextRound = true
			f.rounds[i].IsTerminal = false
		}
	}
	r := models.Round{ID: f.id(), JobID: jobID, RoundNumber: top + 1, RoundType: roundType, IsTerminal: true}
	f.rounds = append(f.rounds, r)
	return &r, nil
}

func (f fakeRounds) find(match func(models.Round) bool) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rounds {
		if match(r) {
			return &r, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeRounds) GetByID(_ context.Context, id int64) (*models.Round, error) {
	return f.find(func(r models.Round) bool { return r.ID == id })
}

func (f fakeRounds) GetByNumber(_ context.Context, jobID int64, number int) (*models.Round, error) {
	return f.find(func(r models.Round) bool { return r.JobID == jobID && r.RoundNumber == number })
}

func (f fakeRounds) ListByJob(_ context.Context, jobID int64) ([]models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Round{}
	for _, r := range f.rounds {
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].RoundNumber < out[b].RoundNumber })
	return out, nil
}

// fakeEnrollments implements EnrollmentStore with the (job, student) unique key
type fakeEnrollments struct{ *memState }

func (f fakeEnrollments) Create(_ context.Context, jobID, studentID, roundID int64) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{jobID, studentID}
	if _, ok := f.enrollments[key]; ok {
		return nil, apperrors.ErrResourceAlreadyExists
	}
	e := &models.Enrollment{ID: f.id(), JobID: jobID, StudentID: studentID, RoundID: roundID}
	f.enrollments[key] = e
	copied := *e
	return &copied, nil
}

func (f fakeEnrollments) GetByJobAndStudent(_ context.Context, jobID, studentID int64) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.enrollments[[2]int64{jobID, studentID}]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeEnrollments) Advance(_ context.Context, jobID, studentID, fromRoundID, toRoundID int64) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[[2]int64{jobID, studentID}]
	if !ok || e.RoundID != fromRoundID {
		return nil, apperrors.ErrStaleEnrollment
	}
	e.RoundID = toRoundID
	copied := *e
	return &copied, nil
}

func (f fakeEnrollments) ListByRound(_ context.Context, roundID int64) ([]models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Enrollment{}
	for _, e := range f.enrollments {
		if e.RoundID == roundID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].StudentID < out[b].StudentID })
	return out, nil
}

// fakeOffers implements OfferStore; the mutex stands in for the advisory lock
type fakeOffers struct{ *memState }

func (f fakeOffers) CreateCapped(_ context.Context, offer *models.Offer, limit int) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Same order as the repository: the cap wins over the duplicate check.
	count, hasForJob := 0, false
	for _, o := range f.offers {
		if o.StudentID != offer.StudentID {
			continue
		}
		count++
		hasForJob = hasForJob || o.JobID == offer.JobID
	}
	if count >= limit {
		return nil, apperrors.ErrOfferLimitReached
	}
	if hasForJob {
		return nil, apperrors.ErrResourceAlreadyExists
	}
	created := *offer
	created.ID = f.id()
	created.Status = models.OfferStatusOffered
	created.OfferNumber = count + 1
	f.offers = append(f.offers, created)
	return &created, nil
}

func (f fakeOffers) CountByStudent(_ context.Context, studentID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.offers {
		if o.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (f fakeOffers) find(match func(models.Offer) bool) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.offers {
		if match(o) {
			return &o, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeOffers) GetByJobAndStudent(_ context.Context, jobID, studentID int64) (*models.Offer, error) {
	return f.find(func(o models.Offer) bool { return o.JobID == jobID && o.StudentID == studentID })
}

func (f fakeOffers) GetByID(_ context.Context, id int64) (*models.Offer, error) {
	return f.find(func(o models.Offer) bool { return o.ID == id })
}

func (f fakeOffers) UpdateStatus(_ context.Context, id int64, status models.OfferStatus) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.offers {
		if f.offers[i].ID == id {
			f.offers[i].Status = status
			o := f.offers[i]
			return &o, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f fakeOffers) list(match func(models.Offer) bool) []models.Offer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Offer{}
	for _, o := range f.offers {
		if match(o) {
			out = append(out, o)
		}
	}
	return out
}

func (f fakeOffers) ListByJob(_ context.Context, jobID int64, status models.OfferStatus) ([]models.Offer, error) {
	return f.list(func(o models.Offer) bool { return o.JobID == jobID && (status == "" || o.Status == status) }), nil
}

func (f fakeOffers) ListByStudent(_ context.Context, studentID int64) ([]models.Offer, error) {
	return f.list(func(o models.Offer) bool { return o.StudentID == studentID }), nil
}

// recordingStore is a cache.Store that remembers every evicted key
type recordingStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{data: map[string][]byte{}}
}

func (s *recordingStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (s *recordingStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *recordingStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	s.deleted = append(s.deleted, keys...)
	return nil
}

func (s *recordingStore) evicted(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.deleted {
		if k == key {
			return true
		}
	}
	return false
}

func (s *recordingStore) cached(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// harness wires every service onto one memState
type harness struct {
	state *memState
	store *recordingStore

	jobs    JobService
	links   LinkageService
	rounds  RoundService
	offers  OfferService
	linkDB  fakeLinks
	college int64
}

// Fixture uids
const (
	uidAcme    = "uid-acme"
	uidGlobex  = "uid-globex"
	uidTPO     = "uid-tpo"
	uidFaculty = "uid-faculty"
	uidOtherTP = "uid-other-tpo"
	uidAsha    = "uid-asha"
	uidRavi    = "uid-ravi"
)

func newHarness() *harness {
	state := newMemState()
	state.nextID = 1000

	state.colleges[10] = "North Campus"
	state.colleges[11] = "South Campus"
	state.addCompany(uidAcme, 1, "Acme")
	state.addCompany(uidGlobex, 2, "Globex")
	state.addStaff(uidTPO, 5, 10, models.StaffRoleTPO)
	state.addStaff(uidFaculty, 6, 10, models.StaffRoleFaculty)
	state.addStaff(uidOtherTP, 7, 11, models.StaffRoleAdmin)
	state.addStudent(uidAsha, &models.Student{
		ID: 100, CollegeID: 10, Name: "Asha", Department: "Computer", PassingYear: 2025,
		SemesterGrades: []string{"8.0", "8.5", "9.0"},
	})
	state.addStudent(uidRavi, &models.Student{
		ID: 101, CollegeID: 10, Name: "Ravi", Department: "Computer", PassingYear: 2025,
		DeadBacklogs: 3, SemesterGrades: []string{"6.0"},
	})

	profiles := fakeProfiles{state}
	jobs := fakeJobs{state}
	links := fakeLinks{state}
	rounds := fakeRounds{state}
	enrollments := fakeEnrollments{state}
	offers := fakeOffers{state}

	store := newRecordingStore()
	c := cache.New(store, time.Minute, zerolog.Nop())
	authz := auth.NewAuthorizationService(profiles, jobs)
	log := zerolog.Nop()

	return &harness{
		state:   state,
		store:   store,
		jobs:    NewJobService(jobs, links, profiles, c, authz, log),
		links:   NewLinkageService(links, jobs, c, authz, log),
		rounds:  NewRoundService(jobs, links, rounds, enrollments, c, authz, log),
		offers:  NewOfferService(offers, rounds, enrollments, profiles, c, authz, log),
		linkDB:  links,
		college: 10,
	}
}
