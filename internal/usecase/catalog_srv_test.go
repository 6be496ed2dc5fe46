package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore backs the catalog repositories. The interface of each repository
// sits one level deeper than the store so the store's methods win.
type memStore[T any] struct {
	items map[uuid.UUID]*T
	id    func(*T) uuid.UUID
}

func newMemStore[T any](id func(*T) uuid.UUID) *memStore[T] {
	return &memStore[T]{items: map[uuid.UUID]*T{}, id: id}
}

func (m *memStore[T]) Create(_ context.Context, v *T) error {
	cp := *v
	m.items[m.id(v)] = &cp
	return nil
}

func (m *memStore[T]) FindByID(_ context.Context, id uuid.UUID) (*T, error) {
	if v, ok := m.items[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore[T]) Update(_ context.Context, v *T) error {
	cp := *v
	m.items[m.id(v)] = &cp
	return nil
}

func (m *memStore[T]) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

type planRepo struct{ repository.PlanRepository }
type offerRepo struct{ repository.OfferRepository }
type contentRepo struct{ repository.ContentRepository }
type galleryRepo struct{ repository.GalleryRepository }

type planStore struct {
	*memStore[entity.Plan]
	planRepo
}

type offerStore struct {
	*memStore[entity.Offer]
	offerRepo
}

type contentStore struct {
	*memStore[entity.SiteContent]
	contentRepo
}

type galleryStore struct {
	*memStore[entity.GalleryImage]
	galleryRepo
}

func adminContext(f *fixture) context.Context {
	return utils.SetUserContext(context.Background(), f.admin.ID, string(entity.RoleAdmin))
}

func TestPlanCRUD_RecordsAudit(t *testing.T) {
	f := newFixture()
	store := &planStore{memStore: newMemStore(func(p *entity.Plan) uuid.UUID { return p.ID })}
	svc := NewPlanService(store, f.auditService(), f.log)
	ctx := adminContext(f)

	created, err := svc.CreatePlan(ctx, &request.PlanRequest{Name: "Quarterly", DurationDays: 90, Price: 2700})
	require.NoError(t, err)

	_, err = svc.UpdatePlan(ctx, created.ID, &request.PlanRequest{Name: "Quarterly", DurationDays: 90, Price: 2500})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, store.items[uuid.MustParse(created.ID)].Price)

	require.NoError(t, svc.DeletePlan(ctx, created.ID))
	assert.Empty(t, store.items)

	_, err = svc.CreatePlan(ctx, &request.PlanRequest{Name: "Broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	assert.Equal(t, []string{"plan.create", "plan.update", "plan.delete"}, f.audit.actions())
	for _, l := range f.audit.logs {
		require.NotNil(t, l.ActorID)
		assert.Equal(t, f.admin.ID, *l.ActorID)
		require.NotNil(t, l.EntityID)
		assert.Equal(t, created.ID, *l.EntityID)
	}
}

func TestOfferCRUD_RecordsAudit(t *testing.T) {
	f := newFixture()
	store := &offerStore{memStore: newMemStore(func(o *entity.Offer) uuid.UUID { return o.ID })}
	svc := NewOfferService(store, f.auditService(), f.log)
	ctx := adminContext(f)

	req := &request.OfferRequest{Title: "Exam season", DiscountPercent: 15, ValidFrom: "2026-11-01", ValidUntil: "2026-11-30"}
	created, err := svc.CreateOffer(ctx, req)
	require.NoError(t, err)

	req.ValidUntil = "2026-10-01"
	_, err = svc.UpdateOffer(ctx, created.ID, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid offer window")

	req.ValidUntil = "2026-12-15"
	_, err = svc.UpdateOffer(ctx, created.ID, req)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOffer(ctx, created.ID))

	err = svc.DeleteOffer(ctx, created.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	assert.Equal(t, []string{"offer.create", "offer.update", "offer.delete"}, f.audit.actions())
}

func TestContentCRUD_RecordsAuditPerKind(t *testing.T) {
	f := newFixture()
	store := &contentStore{memStore: newMemStore(func(c *entity.SiteContent) uuid.UUID { return c.ID })}
	svc := NewContentService(store, f.auditService(), f.log)
	ctx := adminContext(f)

	notice, err := svc.CreateContent(ctx, "notice", &request.ContentRequest{Title: "Closed on Diwali"})
	require.NoError(t, err)
	banner, err := svc.CreateContent(ctx, "banner", &request.ContentRequest{Title: "Silent floor open"})
	require.NoError(t, err)

	_, err = svc.UpdateContent(ctx, "notice", notice.ID, &request.ContentRequest{Title: "Closed on Diwali and the day after"})
	require.NoError(t, err)

	err = svc.DeleteContent(ctx, "banner", notice.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, svc.DeleteContent(ctx, "banner", banner.ID))

	_, err = svc.CreateContent(ctx, "poster", &request.ContentRequest{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid content kind")

	assert.Equal(t, []string{"notice.create", "banner.create", "notice.update", "banner.delete"}, f.audit.actions())
}

func TestGalleryCRUD_RecordsAudit(t *testing.T) {
	f := newFixture()
	store := &galleryStore{memStore: newMemStore(func(g *entity.GalleryImage) uuid.UUID { return g.ID })}
	svc := NewGalleryService(store, f.auditService(), f.log)
	ctx := adminContext(f)

	req := &request.GalleryRequest{Title: "Reading hall", ImageURL: "https://cdn.example.com/hall.jpg", Category: "interior"}
	created, err := svc.CreateImage(ctx, req)
	require.NoError(t, err)

	req.SortOrder = 2
	_, err = svc.UpdateImage(ctx, created.ID, req)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteImage(ctx, created.ID))

	_, err = svc.CreateImage(ctx, &request.GalleryRequest{Title: "No link", ImageURL: "not a url"})
	require.Error(t, err)

	assert.Equal(t, []string{"gallery.create", "gallery.update", "gallery.delete"}, f.audit.actions())
}

type fakeStats struct {
	stats   *repository.DashboardStats
	revenue []repository.DailyRevenue
	err     error

	today time.Time
	from  time.Time
}

func (f *fakeStats) Dashboard(_ context.Context, today time.Time) (*repository.DashboardStats, error) {
	f.today = today
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeStats) RevenueSince(_ context.Context, from time.Time) ([]repository.DailyRevenue, error) {
	f.from = from
	return f.revenue, nil
}

func TestGetDashboard_Aggregates(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -29)

	stats := &fakeStats{
		stats: &repository.DashboardStats{
			TotalMembers:   42,
			TotalSeats:     60,
			OccupiedSeats:  35,
			ActiveBookings: 51,
			PendingRefunds: 2,
			OpenTickets:    3,
			TotalRevenue:   123456.789,
			RevenueToday:   2359.999,
		},
		revenue: []repository.DailyRevenue{
			{Day: from, Amount: 1180, Count: 1},
			{Day: today, Amount: 2359.999, Count: 2},
		},
	}
	svc := NewDashboardService(stats, zap.NewNop()).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 1, 0, 0, 0, ist) }

	resp, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, today, stats.today)
	assert.Equal(t, from, stats.from)

	assert.Equal(t, int64(42), resp.TotalMembers)
	assert.Equal(t, int64(60), resp.TotalSeats)
	assert.Equal(t, int64(35), resp.OccupiedSeats)
	assert.Equal(t, int64(51), resp.ActiveBookings)
	assert.Equal(t, int64(2), resp.PendingRefunds)
	assert.Equal(t, int64(3), resp.OpenTickets)
	assert.Equal(t, 123456.79, resp.TotalRevenue)
	assert.Equal(t, 2360.0, resp.RevenueToday)

	require.Len(t, resp.Revenue, 30)
	assert.Equal(t, "2026-09-19", resp.Revenue[0].Date)
	assert.Equal(t, 1180.0, resp.Revenue[0].Amount)
	assert.Equal(t, "2026-10-18", resp.Revenue[29].Date)
	assert.Equal(t, int64(2), resp.Revenue[29].Payments)
	assert.Equal(t, 0.0, resp.Revenue[15].Amount)
}

func TestGetDashboard_Error(t *testing.T) {
	stats := &fakeStats{err: errors.New("connection refused")}
	svc := NewDashboardService(stats, zap.NewNop())

	_, err := svc.GetDashboard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dashboard")
}
