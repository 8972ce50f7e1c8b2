package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-console/config"
	"storefront-console/internal/domain"
	infracache "storefront-console/internal/infrastructure/cache"
)

type fakeProducts struct {
	mu       sync.Mutex
	created  []*domain.Product
	byID     map[string]*domain.Product
	createFn func(ctx context.Context, p *domain.Product) (*domain.Product, error)
}

func (f *fakeProducts) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	return &domain.ProductPage{}, nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, &domain.APIError{Status: 404, Err: domain.ErrNotFound}
}

func (f *fakeProducts) GetVariants(ctx context.Context, id string) ([]domain.ProductVariant, error) {
	if p, ok := f.byID[id]; ok {
		return p.Variants, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProducts) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *p
	saved.ID = "p-new"
	f.created = append(f.created, &saved)
	return &saved, nil
}

func (f *fakeProducts) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	saved := *p
	return &saved, nil
}

type fakeImages struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeImages) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	return "/uploads/img.webp", nil
}

func (f *fakeImages) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeInvalidator struct{ ids []string }

func (f *fakeInvalidator) InvalidateProduct(id string) { f.ids = append(f.ids, id) }

func testConfig() *config.Config {
	return &config.Config{
		MaxCombinations: 20,
		PlaceholderRows: true,
		SubmitTimeout:   time.Second,
	}
}

func adminCtx() context.Context {
	return domain.ContextWithSession(context.Background(), &domain.Session{UserID: "admin-1", Role: domain.RoleAdmin, Token: "t"})
}

func newDraftUsecase(products *fakeProducts) (*ProductDraftUsecase, *fakeImages, *fakeInvalidator) {
	images := &fakeImages{}
	inv := &fakeInvalidator{}
	uc := NewProductDraftUsecase(infracache.NewMemoryDraftStore(time.Hour), products, images, inv, testConfig())
	return uc, images, inv
}

// fillValid makes a draft that passes submit-time validation.
func fillValid(t *testing.T, uc *ProductDraftUsecase, ctx context.Context, id string) {
	t.Helper()
	_, err := uc.SetFields(ctx, id, map[string]string{
		"name": "Linen Shirt", "brand": "Rokom", "description": "Cool",
		"costPrice": "800", "sellingPrice": "1200", "inventory": "10",
		"available": "10", "weight": "0.3",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.mutate(ctx, id, func(d *domain.ProductDraft) error { return d.AddImage("/uploads/a.webp") }); err != nil {
		t.Fatal(err)
	}
}

func TestSubmitInvalidNeverCallsBackend(t *testing.T) {
	products := &fakeProducts{createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
		t.Fatal("backend must not be called for an invalid draft")
		return nil, nil
	}}
	uc, _, _ := newDraftUsecase(products)
	ctx := adminCtx()

	d, _ := uc.Create(ctx)
	res, err := uc.Submit(ctx, d.ID)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Fields["images"] == "" || ve.Fields["name"] == "" {
		t.Fatalf("missing errors: %v", ve.Fields)
	}
	if res == nil || res.Draft.Submission.State != domain.SubmitIdle || res.Draft.Submission.Outcome != domain.OutcomeInvalid {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSubmitSuccessDeletesDraftAndRedirects(t *testing.T) {
	products := &fakeProducts{}
	uc, _, inv := newDraftUsecase(products)
	ctx := adminCtx()

	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)
	if _, err := uc.AddAttributeValue(ctx, d.ID, "Size", "40"); err != nil {
		t.Fatal(err)
	}

	res, err := uc.Submit(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Redirect != "/admin/products/p-new" || res.Product.ID != "p-new" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(products.created) != 1 || len(products.created[0].Variants) != 1 {
		t.Fatalf("unexpected payload %+v", products.created)
	}
	if _, err := uc.Get(ctx, d.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("draft should be gone, got %v", err)
	}
	if len(inv.ids) != 1 || inv.ids[0] != "p-new" {
		t.Fatalf("cache not invalidated: %v", inv.ids)
	}
}

func TestSubmitFailureKeepsValuesAndShowsBanner(t *testing.T) {
	products := &fakeProducts{createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
		return nil, &domain.APIError{Status: 502, Err: domain.ErrUpstream}
	}}
	uc, _, _ := newDraftUsecase(products)
	ctx := adminCtx()

	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)

	res, err := uc.Submit(ctx, d.ID)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v", err)
	}
	got := res.Draft
	if got.Submission.Banner == "" || got.Submission.Busy() || got.Form.Data.Name != "Linen Shirt" {
		t.Fatalf("failure must keep the form editable with a banner: %+v", got.Submission)
	}
	if _, err := uc.SetFields(ctx, d.ID, map[string]string{"name": "Retry"}); err != nil {
		t.Fatalf("draft should be editable after failure: %v", err)
	}

	d2, _ := uc.DismissBanner(ctx, d.ID)
	if d2.Submission.Banner != "" {
		t.Fatal("banner should be dismissed")
	}
}

func TestSubmitBackendFieldErrorsAreMerged(t *testing.T) {
	products := &fakeProducts{createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
		return nil, &domain.ValidationError{Message: "dup", Fields: domain.FormErrors{"barcode": "already used"}}
	}}
	uc, _, _ := newDraftUsecase(products)
	ctx := adminCtx()
	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)

	res, _ := uc.Submit(ctx, d.ID)
	if res.Draft.Form.Errors["barcode"] != "already used" {
		t.Fatalf("backend field error not shown: %v", res.Draft.Form.Errors)
	}
}

func TestDoubleSubmitAndLockedMutations(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	products := &fakeProducts{createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
		close(entered)
		<-release
		return &domain.Product{ID: "p-slow"}, nil
	}}
	uc, _, _ := newDraftUsecase(products)
	ctx := adminCtx()
	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Submit(ctx, d.ID)
		done <- err
	}()
	<-entered

	if _, err := uc.Submit(ctx, d.ID); !errors.Is(err, domain.ErrSubmitInProgress) {
		t.Fatalf("second submit = %v, want ErrSubmitInProgress", err)
	}
	if _, err := uc.SetFields(ctx, d.ID, map[string]string{"name": "x"}); !errors.Is(err, domain.ErrDraftLocked) {
		t.Fatalf("edit while submitting = %v, want ErrDraftLocked", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
}

func TestDiscardCancelsInflightSubmission(t *testing.T) {
	entered := make(chan struct{})
	products := &fakeProducts{createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	uc, images, _ := newDraftUsecase(products)
	ctx := adminCtx()
	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Submit(ctx, d.ID)
		done <- err
	}()
	<-entered

	if err := uc.Discard(ctx, d.ID); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("submit after discard = %v, want ErrNotFound", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("submission was not cancelled")
	}
	if len(images.deleted) != 0 {
		t.Fatal("images must be kept when a submission was in flight")
	}
}

func TestSubmitTimeout(t *testing.T) {
	products := &fakeProducts{createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	uc, _, _ := newDraftUsecase(products)
	uc.submitTimeout = 20 * time.Millisecond
	ctx := adminCtx()
	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)

	res, err := uc.Submit(ctx, d.ID)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if res.Draft.Submission.Banner == "" || res.Draft.Submission.Busy() {
		t.Fatalf("timeout should surface a banner: %+v", res.Draft.Submission)
	}
}

func TestDraftsAreScopedToOwner(t *testing.T) {
	uc, _, _ := newDraftUsecase(&fakeProducts{})
	d, _ := uc.Create(adminCtx())

	other := domain.ContextWithSession(context.Background(), &domain.Session{UserID: "admin-2", Role: domain.RoleAdmin})
	if _, err := uc.Get(other, d.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("other admin = %v, want ErrNotFound", err)
	}
	if _, err := uc.Create(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous = %v, want ErrUnauthorized", err)
	}
}

func TestEditUnknownProduct(t *testing.T) {
	uc, _, _ := newDraftUsecase(&fakeProducts{byID: map[string]*domain.Product{}})
	if _, err := uc.EditProduct(adminCtx(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBulkPriceFlowThroughUsecase(t *testing.T) {
	uc, _, _ := newDraftUsecase(&fakeProducts{})
	ctx := adminCtx()
	d, _ := uc.Create(ctx)
	for _, kv := range [][2]string{{"Size", "S"}, {"Size", "M"}, {"Size", "L"}, {"Color", "Black"}, {"Color", "White"}} {
		var err error
		if d, err = uc.AddAttributeValue(ctx, d.ID, kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}
	if len(d.Variants) != 6 {
		t.Fatalf("rows = %d, want 6", len(d.Variants))
	}

	a, b := d.Variants[0].ID, d.Variants[3].ID
	_, _ = uc.ChangeSelection(ctx, d.ID, SelectionChange{VariantID: a, Checked: true})
	_, _ = uc.ChangeSelection(ctx, d.ID, SelectionChange{VariantID: b, Checked: true})
	if _, err := uc.OpenBulk(ctx, d.ID, domain.BulkPrice); err != nil {
		t.Fatal(err)
	}
	price := "150000"
	if _, err := uc.UpdateBulk(ctx, d.ID, BulkChange{ApplyAll: &price}); err != nil {
		t.Fatal(err)
	}
	d, err := uc.ConfirmBulk(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range d.Variants {
		want := ""
		if v.ID == a || v.ID == b {
			want = "150000"
		}
		if v.Price != want {
			t.Errorf("%s price = %q, want %q", v.Name, v.Price, want)
		}
	}
	if d.Bulk != nil {
		t.Error("bulk edit should close after confirm")
	}
}

// rendezvousStore holds every armed Get until two callers have arrived or
// a short wait has passed, so unserialised loads would overlap.
type rendezvousStore struct {
	domain.DraftRepository
	mu      sync.Mutex
	armed   bool
	arrived int
	both    chan struct{}
}

func (s *rendezvousStore) arm() {
	s.mu.Lock()
	s.armed = true
	s.both = make(chan struct{})
	s.mu.Unlock()
}

func (s *rendezvousStore) Get(ctx context.Context, id string) (*domain.ProductDraft, error) {
	s.mu.Lock()
	wait := s.armed
	both := s.both
	if wait {
		s.arrived++
		if s.arrived == 2 {
			close(both)
		}
	}
	s.mu.Unlock()
	if wait {
		select {
		case <-both:
		case <-time.After(100 * time.Millisecond):
		}
	}
	return s.DraftRepository.Get(ctx, id)
}

func TestSubmitAcrossInstancesSharingAStore(t *testing.T) {
	store := &rendezvousStore{DraftRepository: infracache.NewMemoryDraftStore(time.Hour)}

	var mu sync.Mutex
	creates := 0
	release := make(chan struct{})
	products := &fakeProducts{createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
		mu.Lock()
		creates++
		mu.Unlock()
		<-release
		return &domain.Product{ID: "p-shared"}, nil
	}}

	first := NewProductDraftUsecase(store, products, &fakeImages{}, &fakeInvalidator{}, testConfig())
	second := NewProductDraftUsecase(store, products, &fakeImages{}, &fakeInvalidator{}, testConfig())
	ctx := adminCtx()
	d, _ := first.Create(ctx)
	fillValid(t, first, ctx, d.ID)
	store.arm()

	errs := make(chan error, 2)
	for _, uc := range []*ProductDraftUsecase{first, second} {
		go func(uc *ProductDraftUsecase) {
			_, err := uc.Submit(ctx, d.ID)
			errs <- err
		}(uc)
	}

	var rejected error
	select {
	case rejected = <-errs:
	case <-time.After(2 * time.Second):
		t.Fatal("neither submission was rejected")
	}
	close(release)
	accepted := <-errs

	if !errors.Is(rejected, domain.ErrSubmitInProgress) {
		t.Fatalf("concurrent submit = %v, want ErrSubmitInProgress", rejected)
	}
	if accepted != nil {
		t.Fatalf("winning submit failed: %v", accepted)
	}
	if creates != 1 {
		t.Fatalf("backend saw %d creates, want 1", creates)
	}
}

func TestDiscardRightAfterSubmitStarts(t *testing.T) {
	uc, images, _ := newDraftUsecase(&fakeProducts{})
	ctx := adminCtx()
	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)

	sub, err := uc.beginSubmit(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.done()

	if err := uc.Discard(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	if sub.ctx.Err() == nil {
		t.Fatal("discard did not cancel the submission")
	}
	if len(images.deleted) != 0 {
		t.Fatalf("images deleted under a running submission: %v", images.deleted)
	}
}

func TestStaleSubmissionIsReleased(t *testing.T) {
	uc, _, _ := newDraftUsecase(&fakeProducts{})
	ctx := adminCtx()
	d, _ := uc.Create(ctx)
	fillValid(t, uc, ctx, d.ID)

	// Left behind by a process that died mid-submit.
	stored, err := uc.drafts.Get(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	_ = stored.Submission.BeginValidation()
	stored.Submission.BeginSubmit(time.Now().Add(-time.Hour))
	if err := uc.drafts.Save(ctx, stored); err != nil {
		t.Fatal(err)
	}

	got, err := uc.SetFields(ctx, d.ID, map[string]string{"name": "Linen Shirt v2"})
	if err != nil {
		t.Fatalf("edit after stale submit = %v, want nil", err)
	}
	if got.Submission.Busy() || got.Submission.Banner == "" {
		t.Fatalf("stale submission not released: %+v", got.Submission)
	}
	if _, err := uc.Submit(ctx, d.ID); err != nil {
		t.Fatalf("resubmit = %v", err)
	}
}
