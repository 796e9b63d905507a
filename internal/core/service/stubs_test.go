package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// memDB is an in-memory implementation of every repository port. It mirrors
// the unique constraints the Mongo indexes enforce.
type memDB struct {
	mu       sync.Mutex
	seq      int
	owners   map[string]*domain.Owner
	staff    map[string]*domain.Staff
	roles    map[string]*domain.Role
	stores   map[string]*domain.Store
	products map[string]*domain.Product
	plans    map[string]*domain.Plan
	subs     map[string]*domain.UserSubscription
	usage    map[ports.UsageKey]int64

	// failRoleCreate makes the n-th role insert fail when > 0.
	failRoleCreate int
	roleCreates    int
}

func newMemDB() *memDB {
	return &memDB{
		owners:   make(map[string]*domain.Owner),
		staff:    make(map[string]*domain.Staff),
		roles:    make(map[string]*domain.Role),
		stores:   make(map[string]*domain.Store),
		products: make(map[string]*domain.Product),
		plans:    make(map[string]*domain.Plan),
		subs:     make(map[string]*domain.UserSubscription),
		usage:    make(map[ports.UsageKey]int64),
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s_%d", prefix, db.seq)
}

func cloneOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ---------------------------------------------------------------------------
// Owners
// ---------------------------------------------------------------------------

type memOwners struct{ db *memDB }

func (r memOwners) Create(_ context.Context, o *domain.Owner) (*domain.Owner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.owners {
		if existing.Email == o.Email {
			return nil, domain.ErrOwnerExists
		}
	}
	c := cloneOf(o)
	if c.ID == "" {
		c.ID = r.db.nextID("owner")
	}
	r.db.owners[c.ID] = c
	return cloneOf(c), nil
}

func (r memOwners) FindByID(_ context.Context, id string) (*domain.Owner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.owners[id]
	if !ok {
		return nil, domain.ErrOwnerNotFound
	}
	return cloneOf(o), nil
}

func (r memOwners) FindByEmail(_ context.Context, email string) (*domain.Owner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.owners {
		if o.Email == email {
			return cloneOf(o), nil
		}
	}
	return nil, domain.ErrOwnerNotFound
}

func (r memOwners) FindByVerificationToken(_ context.Context, token string, now time.Time) (*domain.Owner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.owners {
		if o.VerificationToken == token && o.VerificationExpires.After(now) {
			return cloneOf(o), nil
		}
	}
	return nil, domain.ErrOwnerNotFound
}

func (r memOwners) Update(_ context.Context, o *domain.Owner) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.owners[o.ID]; !ok {
		return domain.ErrOwnerNotFound
	}
	r.db.owners[o.ID] = cloneOf(o)
	return nil
}

// ---------------------------------------------------------------------------
// Staff
// ---------------------------------------------------------------------------

type memStaff struct{ db *memDB }

func (r memStaff) Create(_ context.Context, s *domain.Staff) (*domain.Staff, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.staff {
		if existing.Email == s.Email {
			return nil, domain.ErrStaffExists
		}
	}
	c := cloneOf(s)
	if c.ID == "" {
		c.ID = r.db.nextID("staff")
	}
	r.db.staff[c.ID] = c
	return cloneOf(c), nil
}

func (r memStaff) FindByID(_ context.Context, id string) (*domain.Staff, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.staff[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	return cloneOf(s), nil
}

func (r memStaff) FindByEmail(_ context.Context, email string) (*domain.Staff, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.staff {
		if s.Email == email {
			return cloneOf(s), nil
		}
	}
	return nil, domain.ErrStaffNotFound
}

func (r memStaff) ListByStore(_ context.Context, storeID string) ([]*domain.Staff, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Staff
	for _, s := range r.db.staff {
		if s.StoreID == storeID {
			out = append(out, cloneOf(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memStaff) Update(_ context.Context, s *domain.Staff) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.staff[s.ID]; !ok {
		return domain.ErrStaffNotFound
	}
	r.db.staff[s.ID] = cloneOf(s)
	return nil
}

func (r memStaff) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.staff[id]; !ok {
		return domain.ErrStaffNotFound
	}
	delete(r.db.staff, id)
	return nil
}

func (r memStaff) DeleteByStore(_ context.Context, storeID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, s := range r.db.staff {
		if s.StoreID == storeID {
			delete(r.db.staff, id)
			n++
		}
	}
	return n, nil
}

func (r memStaff) CountByRole(_ context.Context, roleID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, s := range r.db.staff {
		if s.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Roles
// ---------------------------------------------------------------------------

type memRoles struct{ db *memDB }

func (r memRoles) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.roleCreates++
	if r.db.failRoleCreate > 0 && r.db.roleCreates == r.db.failRoleCreate {
		return nil, fmt.Errorf("insert role: boom")
	}
	for _, existing := range r.db.roles {
		if existing.StoreID == role.StoreID && existing.Name == role.Name {
			return nil, domain.ErrConflict
		}
	}
	c := cloneOf(role)
	if c.ID == "" {
		c.ID = r.db.nextID("role")
	}
	r.db.roles[c.ID] = c
	return cloneOf(c), nil
}

func (r memRoles) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	role, ok := r.db.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return cloneOf(role), nil
}

func (r memRoles) ListByStore(_ context.Context, storeID string) ([]*domain.Role, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Role
	for _, role := range r.db.roles {
		if role.StoreID == storeID {
			out = append(out, cloneOf(role))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memRoles) Update(_ context.Context, role *domain.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.roles[role.ID]; !ok {
		return domain.ErrRoleNotFound
	}
	r.db.roles[role.ID] = cloneOf(role)
	return nil
}

func (r memRoles) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.db.roles, id)
	return nil
}

func (r memRoles) DeleteByStore(_ context.Context, storeID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, role := range r.db.roles {
		if role.StoreID == storeID {
			delete(r.db.roles, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Stores
// ---------------------------------------------------------------------------

type memStores struct{ db *memDB }

func (r memStores) Create(_ context.Context, s *domain.Store) (*domain.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := cloneOf(s)
	if c.ID == "" {
		c.ID = r.db.nextID("store")
	}
	r.db.stores[c.ID] = c
	return cloneOf(c), nil
}

func (r memStores) FindByID(_ context.Context, id string) (*domain.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.stores[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	return cloneOf(s), nil
}

func (r memStores) ListByOwner(_ context.Context, ownerID string) ([]*domain.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Store
	for _, s := range r.db.stores {
		if s.OwnerID == ownerID {
			out = append(out, cloneOf(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memStores) Update(_ context.Context, s *domain.Store) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.stores[s.ID]; !ok {
		return domain.ErrStoreNotFound
	}
	r.db.stores[s.ID] = cloneOf(s)
	return nil
}

func (r memStores) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.stores[id]; !ok {
		return domain.ErrStoreNotFound
	}
	delete(r.db.stores, id)
	return nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type memProducts struct{ db *memDB }

func (r memProducts) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := cloneOf(p)
	if c.ID == "" {
		c.ID = r.db.nextID("product")
	}
	r.db.products[c.ID] = c
	return cloneOf(c), nil
}

func (r memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneOf(p), nil
}

func (r memProducts) ListByStore(_ context.Context, storeID string) ([]*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.db.products {
		if p.StoreID == storeID {
			out = append(out, cloneOf(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProducts) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.db.products, id)
	return nil
}

func (r memProducts) DeleteByStore(_ context.Context, storeID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, p := range r.db.products {
		if p.StoreID == storeID {
			delete(r.db.products, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Plans and subscriptions
// ---------------------------------------------------------------------------

type memPlans struct{ db *memDB }

func (r memPlans) List(_ context.Context) ([]*domain.Plan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Plan
	for _, p := range r.db.plans {
		out = append(out, cloneOf(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, nil
}

func (r memPlans) FindByID(_ context.Context, id string) (*domain.Plan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return cloneOf(p), nil
}

func (r memPlans) Upsert(_ context.Context, p *domain.Plan) (*domain.Plan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := cloneOf(p)
	c.ID = "plan_" + string(p.Name)
	r.db.plans[c.ID] = c
	return cloneOf(c), nil
}

type memSubs struct{ db *memDB }

func (r memSubs) Create(_ context.Context, s *domain.UserSubscription) (*domain.UserSubscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s.Status == domain.SubscriptionActive {
		for _, existing := range r.db.subs {
			if existing.OwnerID == s.OwnerID && existing.Status == domain.SubscriptionActive {
				return nil, domain.ErrConflict
			}
		}
	}
	c := cloneOf(s)
	c.Plan = nil
	if c.ID == "" {
		c.ID = r.db.nextID("sub")
	}
	r.db.subs[c.ID] = c
	return cloneOf(c), nil
}

func (r memSubs) FindActiveByOwner(_ context.Context, ownerID string) (*domain.UserSubscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.subs {
		if s.OwnerID == ownerID && s.Status == domain.SubscriptionActive {
			return cloneOf(s), nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (r memSubs) CancelActive(_ context.Context, ownerID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, s := range r.db.subs {
		if s.OwnerID == ownerID && s.Status == domain.SubscriptionActive {
			s.Status = domain.SubscriptionCancelled
			s.AutoRenew = false
			n++
		}
	}
	return n, nil
}

func (r memSubs) ExpireEnded(_ context.Context, now time.Time) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var owners []string
	for _, s := range r.db.subs {
		if s.Status == domain.SubscriptionActive && s.EndDate.Before(now) {
			s.Status = domain.SubscriptionExpired
			owners = append(owners, s.OwnerID)
		}
	}
	return owners, nil
}

func (db *memDB) countStatus(ownerID string, status domain.SubscriptionStatus) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, s := range db.subs {
		if s.OwnerID == ownerID && s.Status == status {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Usage counters and resource counts
// ---------------------------------------------------------------------------

type memUsage struct{ db *memDB }

func (r memUsage) Reserve(_ context.Context, key ports.UsageKey, current, quota int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.usage[key]
	if !ok {
		n = current
	}
	if n >= quota {
		r.db.usage[key] = n
		return domain.ErrLimitExceeded
	}
	r.db.usage[key] = n + 1
	return nil
}

func (r memUsage) Release(_ context.Context, key ports.UsageKey) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if n, ok := r.db.usage[key]; ok && n > 0 {
		r.db.usage[key] = n - 1
	}
	return nil
}

func (r memUsage) Reset(_ context.Context, key ports.UsageKey) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.usage, key)
	return nil
}

type memCounter struct{ db *memDB }

func (r memCounter) CountProducts(_ context.Context, storeID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, p := range r.db.products {
		if p.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (r memCounter) CountStaff(_ context.Context, storeID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, s := range r.db.staff {
		if s.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (r memCounter) CountStores(_ context.Context, ownerID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, s := range r.db.stores {
		if s.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Cache, tokens, payments, mail
// ---------------------------------------------------------------------------

type memCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.UserSubscription
	gets        int
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*domain.UserSubscription)}
}

func (c *memCache) Get(_ context.Context, ownerID string) (*domain.UserSubscription, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	sub, ok := c.entries[ownerID]
	return cloneOf(sub), ok, nil
}

func (c *memCache) Set(_ context.Context, ownerID string, sub *domain.UserSubscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ownerID] = cloneOf(sub)
	return nil
}

func (c *memCache) Fill(_ context.Context, ownerID string, sub *domain.UserSubscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[ownerID]; !ok {
		c.entries[ownerID] = cloneOf(sub)
	}
	return nil
}

func (c *memCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ownerID)
	c.invalidated = append(c.invalidated, ownerID)
	return nil
}

// stubTokens encodes the principal id verbatim with a prefix.
type stubTokens struct{}

func (stubTokens) Issue(id string) (string, error) { return "tok:" + id, nil }

func (stubTokens) Parse(token string) (string, error) {
	if len(token) < 5 || token[:4] != "tok:" {
		return "", domain.ErrUnauthenticated
	}
	return token[4:], nil
}

type stubPayments struct {
	mu       sync.Mutex
	err      error
	calls    int
	released []string
}

func (p *stubPayments) Verify(context.Context, string, *domain.Plan, ports.PaymentInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *stubPayments) Release(_ context.Context, _ string, in ports.PaymentInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = append(p.released, in.Reference)
	return nil
}

type sentVerification struct {
	name, email, token string
}

type stubSender struct {
	sent []sentVerification
}

func (s *stubSender) SendVerification(_ context.Context, name, email, token string) error {
	s.sent = append(s.sent, sentVerification{name, email, token})
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	db      *memDB
	cache   *memCache
	limiter *SubscriptionLimiter
	repos   StoreRepos
	subs    *SubscriptionService
	now     time.Time
}

func newFixture() *fixture {
	db := newMemDB()
	cache := newMemCache()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	log := zerolog.Nop()

	repos := StoreRepos{
		Stores:   memStores{db},
		Roles:    memRoles{db},
		Staff:    memStaff{db},
		Products: memProducts{db},
		Usage:    memUsage{db},
		Counter:  memCounter{db},
	}
	limiter := NewSubscriptionLimiter(memSubs{db}, memPlans{db}, cache, log)
	limiter.now = func() time.Time { return now }

	subs := NewSubscriptionService(memPlans{db}, memSubs{db}, repos.Stores, repos.Counter, limiter, &stubPayments{}, cache, log)
	subs.now = func() time.Time { return now }
	if _, err := subs.SeedPlans(context.Background()); err != nil {
		panic(err)
	}

	return &fixture{db: db, cache: cache, limiter: limiter, repos: repos, subs: subs, now: now}
}

func (f *fixture) plan(name domain.PlanName) *domain.Plan {
	p, err := memPlans{f.db}.FindByID(context.Background(), "plan_"+string(name))
	if err != nil {
		panic(err)
	}
	return p
}

// grant puts ownerID on plan without payment.
func (f *fixture) grant(ownerID string, name domain.PlanName) *domain.UserSubscription {
	sub, err := f.subs.Grant(context.Background(), GrantInput{OwnerID: ownerID, Plan: f.plan(name)})
	if err != nil {
		panic(err)
	}
	return sub
}

func (f *fixture) addStore(ownerID, name string) *domain.Store {
	s, _ := memStores{f.db}.Create(context.Background(), &domain.Store{OwnerID: ownerID, Name: name, Settings: domain.DefaultStoreSettings()})
	return s
}

func (f *fixture) addRole(storeID string, perms ...string) *domain.Role {
	ps, err := domain.NormalizePermissions(perms)
	if err != nil {
		panic(err)
	}
	r, _ := memRoles{f.db}.Create(context.Background(), &domain.Role{StoreID: storeID, Name: fmt.Sprintf("role-%d", len(f.db.roles)), Permissions: ps})
	return r
}

func (f *fixture) addStaff(storeID, roleID, email string) *domain.Staff {
	s, _ := memStaff{f.db}.Create(context.Background(), &domain.Staff{
		Name: "Staff", Email: email, StoreID: storeID, RoleID: roleID, Status: domain.StaffActive,
	})
	return s
}
