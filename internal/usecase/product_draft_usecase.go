package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"storefront-console/config"
	"storefront-console/internal/domain"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/storage"
	"storefront-console/pkg/utils"

	"github.com/google/uuid"
)

// ProductCacheInvalidator drops cached copies of a product after it is saved.
type ProductCacheInvalidator interface {
	InvalidateProduct(id string)
}

// ProductDraftUsecase owns the admin product-authoring drafts: attribute
// edits, variant table, bulk edits, images and submission to the backend.
type ProductDraftUsecase struct {
	drafts        domain.DraftRepository
	products      domain.ProductRepository
	images        storage.ImageStore
	invalidator   ProductCacheInvalidator
	opts          domain.DraftOptions
	submitTimeout time.Duration
	now           func() time.Time

	inflightMu sync.Mutex
	inflight   map[string]inflightSubmit
}

type inflightSubmit struct {
	attempt int
	cancel  context.CancelFunc
}

// SubmitResult is returned by Submit. On success Draft is nil and Redirect
// points at the saved product.
type SubmitResult struct {
	Draft    *domain.ProductDraft `json:"draft,omitempty"`
	Product  *domain.Product      `json:"product,omitempty"`
	Redirect string               `json:"redirect,omitempty"`
}

type SelectionChange struct {
	VariantID string `json:"variantId"`
	Checked   bool   `json:"checked"`
	All       *bool  `json:"all"`
}

type BulkChange struct {
	Drafts   map[string]string `json:"drafts"`
	ApplyAll *string           `json:"applyAll"`
}

func NewProductDraftUsecase(drafts domain.DraftRepository, products domain.ProductRepository, images storage.ImageStore, invalidator ProductCacheInvalidator, cfg *config.Config) *ProductDraftUsecase {
	return &ProductDraftUsecase{
		drafts:      drafts,
		products:    products,
		images:      images,
		invalidator: invalidator,
		opts: domain.DraftOptions{
			MaxCombinations: cfg.MaxCombinations,
			Placeholders:    cfg.PlaceholderRows,
		},
		submitTimeout: cfg.SubmitTimeout,
		now:           time.Now,
		inflight:      make(map[string]inflightSubmit),
	}
}

// lock serialises work on one draft through the store, so instances
// sharing a redis store see each other's writes.
func (uc *ProductDraftUsecase) lock(ctx context.Context, id string) (func(), error) {
	unlock, err := uc.drafts.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock draft %s: %w", id, err)
	}
	return unlock, nil
}

func owner(ctx context.Context) (string, error) {
	s := domain.SessionFromContext(ctx)
	if !s.Authenticated() {
		return "", domain.ErrUnauthorized
	}
	return s.UserID, nil
}

// load fetches a draft owned by the caller. Drafts of other users are reported as missing.
func (uc *ProductDraftUsecase) load(ctx context.Context, id string) (*domain.ProductDraft, error) {
	who, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	d, err := uc.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Owner != who {
		return nil, domain.ErrNotFound
	}
	if !uc.isInflight(id) && d.Submission.ExpireStale(uc.now(), uc.submitTimeout) {
		logger.WithContext(ctx).Warn().
			Str("draft_id", id).
			Int("attempt", d.Submission.Attempt).
			Msg("Stale submission released")
	}
	return d, nil
}

func (uc *ProductDraftUsecase) save(ctx context.Context, d *domain.ProductDraft) error {
	d.UpdatedAt = uc.now()
	if err := uc.drafts.Save(ctx, d); err != nil {
		return fmt.Errorf("save draft %s: %w", d.ID, err)
	}
	return nil
}

// mutate applies fn to the stored draft under its lock. Validation
// failures are saved too, since they annotate the draft with errors.
func (uc *ProductDraftUsecase) mutate(ctx context.Context, id string, fn func(d *domain.ProductDraft) error) (*domain.ProductDraft, error) {
	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			if saveErr := uc.save(ctx, d); saveErr != nil {
				return nil, saveErr
			}
			return d, err
		}
		return nil, err
	}
	if err := uc.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (uc *ProductDraftUsecase) Create(ctx context.Context) (*domain.ProductDraft, error) {
	who, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	d := domain.NewProductDraft(uuid.NewString(), who, uc.opts, uc.now())
	if err := uc.save(ctx, d); err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Info().Str("draft_id", d.ID).Msg("Product draft created")
	return d, nil
}

// EditProduct opens a draft seeded from an existing backend product.
func (uc *ProductDraftUsecase) EditProduct(ctx context.Context, productID string) (*domain.ProductDraft, error) {
	who, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}
	d := domain.DraftFromProduct(p, uuid.NewString(), who, uc.opts, uc.now())
	if err := uc.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (uc *ProductDraftUsecase) Get(ctx context.Context, id string) (*domain.ProductDraft, error) {
	return uc.load(ctx, id)
}

// SetFields applies form edits in a stable order.
func (uc *ProductDraftUsecase) SetFields(ctx context.Context, id string, fields map[string]string) (*domain.ProductDraft, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		for _, name := range names {
			if err := d.SetField(name, fields[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (uc *ProductDraftUsecase) AddAttributeValue(ctx context.Context, id, name, value string) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		err := d.AddAttributeValue(name, value)
		if errors.Is(err, domain.ErrTooManyCombinations) {
			logger.WithContext(ctx).Warn().
				Str("draft_id", id).
				Int("max", uc.opts.MaxCombinations).
				Msg("Attribute change rejected: combination limit")
		}
		return err
	})
}

func (uc *ProductDraftUsecase) RemoveAttributeValue(ctx context.Context, id, name, value string) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.RemoveAttributeValue(name, value)
	})
}

func (uc *ProductDraftUsecase) RemoveAttribute(ctx context.Context, id, name string) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.RemoveAttribute(name)
	})
}

func (uc *ProductDraftUsecase) UpdateVariant(ctx context.Context, id, variantID string, patch domain.VariantPatch) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.UpdateVariant(variantID, patch)
	})
}

func (uc *ProductDraftUsecase) ChangeSelection(ctx context.Context, id string, change SelectionChange) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		if change.All != nil {
			return d.SelectAll(*change.All)
		}
		return d.ToggleSelection(change.VariantID, change.Checked)
	})
}

func (uc *ProductDraftUsecase) OpenBulk(ctx context.Context, id string, kind domain.BulkKind) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.OpenBulk(kind)
	})
}

// UpdateBulk edits the open bulk drafts. ApplyAll runs after the per-row values.
func (uc *ProductDraftUsecase) UpdateBulk(ctx context.Context, id string, change BulkChange) (*domain.ProductDraft, error) {
	ids := make([]string, 0, len(change.Drafts))
	for variantID := range change.Drafts {
		ids = append(ids, variantID)
	}
	sort.Strings(ids)

	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		for _, variantID := range ids {
			if err := d.SetBulkDraft(variantID, change.Drafts[variantID]); err != nil {
				return err
			}
		}
		if change.ApplyAll != nil {
			return d.ApplyBulkToAll(*change.ApplyAll)
		}
		return nil
	})
}

func (uc *ProductDraftUsecase) ConfirmBulk(ctx context.Context, id string) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.ConfirmBulk()
	})
}

func (uc *ProductDraftUsecase) CancelBulk(ctx context.Context, id string) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.CancelBulk()
	})
}

func (uc *ProductDraftUsecase) DismissBanner(ctx context.Context, id string) (*domain.ProductDraft, error) {
	return uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		d.Submission.DismissBanner()
		return nil
	})
}

// AddImage processes and stores an upload, then attaches it to the draft.
// The stored object is removed again if the draft rejects it.
func (uc *ProductDraftUsecase) AddImage(ctx context.Context, id string, r io.Reader, filename string) (*domain.ProductDraft, error) {
	d, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Submission.Busy() {
		return nil, domain.ErrDraftLocked
	}

	data, contentType, err := utils.ProcessImage(r, filename)
	if err != nil {
		return nil, domain.NewValidationError("images", "Unsupported or corrupt image")
	}
	url, err := uc.images.Put(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	d, err = uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.AddImage(url)
	})
	if err != nil {
		if delErr := uc.images.Delete(context.WithoutCancel(ctx), url); delErr != nil {
			logger.WithContext(ctx).Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned image")
		}
		return nil, err
	}
	return d, nil
}

// RemoveImage detaches an image. Files uploaded for a new product are deleted
// from storage; images of an existing product stay until the backend drops them.
func (uc *ProductDraftUsecase) RemoveImage(ctx context.Context, id, url string) (*domain.ProductDraft, error) {
	d, err := uc.mutate(ctx, id, func(d *domain.ProductDraft) error {
		return d.RemoveImage(url)
	})
	if err != nil {
		return nil, err
	}
	if d.ProductID == "" {
		if err := uc.images.Delete(ctx, url); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("url", url).Msg("Failed to delete image")
		}
	}
	return d, nil
}

// Discard deletes the draft and cancels its in-flight submission, if any.
func (uc *ProductDraftUsecase) Discard(ctx context.Context, id string) error {
	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	d, err := uc.load(ctx, id)
	if err != nil {
		return err
	}

	submitting := uc.cancelInflight(id) || d.Submission.Busy()
	if err := uc.drafts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}

	if d.ProductID == "" && !submitting {
		for _, url := range d.Images {
			if err := uc.images.Delete(ctx, url); err != nil {
				logger.WithContext(ctx).Warn().Err(err).Str("url", url).Msg("Failed to delete draft image")
			}
		}
	}
	logger.WithContext(ctx).Info().Str("draft_id", id).Bool("cancelled_submit", submitting).Msg("Product draft discarded")
	return nil
}

func (uc *ProductDraftUsecase) cancelInflight(id string) bool {
	uc.inflightMu.Lock()
	defer uc.inflightMu.Unlock()
	f, ok := uc.inflight[id]
	if ok {
		f.cancel()
		delete(uc.inflight, id)
	}
	return ok
}

func (uc *ProductDraftUsecase) isInflight(id string) bool {
	uc.inflightMu.Lock()
	defer uc.inflightMu.Unlock()
	_, ok := uc.inflight[id]
	return ok
}

func (uc *ProductDraftUsecase) trackInflight(id string, attempt int, cancel context.CancelFunc) func() {
	uc.inflightMu.Lock()
	uc.inflight[id] = inflightSubmit{attempt: attempt, cancel: cancel}
	uc.inflightMu.Unlock()

	return func() {
		uc.inflightMu.Lock()
		if f, ok := uc.inflight[id]; ok && f.attempt == attempt {
			delete(uc.inflight, id)
		}
		uc.inflightMu.Unlock()
		cancel()
	}
}

// Submit validates the draft and, when valid, persists it through the
// backend. The backend call is bound to the draft rather than to the HTTP
// request: it runs under SUBMIT_TIMEOUT and is cancelled by Discard.
func (uc *ProductDraftUsecase) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	sub, err := uc.beginSubmit(ctx, id)
	if err != nil {
		if sub != nil && sub.draft != nil {
			return &SubmitResult{Draft: sub.draft}, err
		}
		return nil, err
	}
	subCtx, product, attempt, done := sub.ctx, sub.product, sub.attempt, sub.done

	var saved *domain.Product
	if product.ID != "" {
		saved, err = uc.products.Update(subCtx, product)
	} else {
		saved, err = uc.products.Create(subCtx, product)
	}
	if err == nil && subCtx.Err() != nil {
		err = subCtx.Err()
	}
	done()

	return uc.finishSubmit(ctx, id, attempt, saved, err)
}

// pendingSubmit is a submission that passed validation and is registered
// as in flight. done must be called once the backend call returns.
type pendingSubmit struct {
	draft   *domain.ProductDraft
	product *domain.Product
	attempt int
	ctx     context.Context
	done    func()
}

// beginSubmit validates and marks the draft as submitting. The in-flight
// entry is registered before the draft lock is released so a concurrent
// Discard always finds something to cancel.
func (uc *ProductDraftUsecase) beginSubmit(ctx context.Context, id string) (*pendingSubmit, error) {
	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Submission.BeginValidation(); err != nil {
		return nil, err
	}

	if errs := d.Validate(); len(errs) > 0 {
		d.Submission.MarkInvalid()
		if err := uc.save(ctx, d); err != nil {
			return nil, err
		}
		return &pendingSubmit{draft: d}, &domain.ValidationError{Message: "Please correct the highlighted fields", Fields: errs}
	}

	product, err := d.Product()
	if err != nil {
		d.Submission.MarkInvalid()
		_ = uc.save(ctx, d)
		return &pendingSubmit{draft: d}, domain.NewValidationError("submit", err.Error())
	}

	attempt := d.Submission.BeginSubmit(uc.now())
	subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.submitTimeout)
	done := uc.trackInflight(id, attempt, cancel)
	if err := uc.save(ctx, d); err != nil {
		done()
		return nil, err
	}
	logger.WithContext(ctx).Info().Str("draft_id", id).Int("attempt", attempt).Msg("Submitting product")
	return &pendingSubmit{draft: d, product: product, attempt: attempt, ctx: subCtx, done: done}, nil
}

func (uc *ProductDraftUsecase) finishSubmit(ctx context.Context, id string, attempt int, saved *domain.Product, submitErr error) (*SubmitResult, error) {
	// The request may already be gone; the outcome still has to be recorded.
	ctx = context.WithoutCancel(ctx)
	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	log := logger.WithContext(ctx)

	d, err := uc.drafts.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		// Discarded while the request was in flight.
		if submitErr == nil {
			log.Warn().Str("draft_id", id).Msg("Draft discarded after product was saved")
			return &SubmitResult{Product: saved, Redirect: productPath(saved)}, nil
		}
		log.Info().Err(submitErr).Str("draft_id", id).Msg("Submission ended after draft was discarded")
		return nil, fmt.Errorf("draft %s was discarded: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if d.Submission.Attempt != attempt {
		return &SubmitResult{Draft: d}, domain.ErrConflict
	}

	if submitErr != nil {
		var ve *domain.ValidationError
		if errors.As(submitErr, &ve) {
			if d.Form.Errors == nil {
				d.Form.Errors = domain.FormErrors{}
			}
			for field, msg := range ve.Fields {
				d.Form.Errors[field] = msg
			}
		}
		d.Submission.Fail(submitBanner(submitErr))
		if err := uc.save(ctx, d); err != nil {
			return nil, err
		}
		log.Warn().Err(submitErr).Str("draft_id", id).Int("attempt", attempt).Msg("Product submission failed")
		return &SubmitResult{Draft: d}, submitErr
	}

	d.Submission.Succeed()
	if err := uc.drafts.Delete(ctx, id); err != nil {
		log.Warn().Err(err).Str("draft_id", id).Msg("Failed to delete submitted draft")
	}
	if uc.invalidator != nil && saved != nil {
		uc.invalidator.InvalidateProduct(saved.ID)
	}
	log.Info().Str("draft_id", id).Str("product_id", saved.ID).Msg("Product saved")
	return &SubmitResult{Product: saved, Redirect: productPath(saved)}, nil
}

func productPath(p *domain.Product) string {
	if p == nil || p.ID == "" {
		return "/admin/products"
	}
	return "/admin/products/" + p.ID
}

// submitBanner is the general error shown above the form after a failed save.
func submitBanner(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond. Please try again."
	case errors.Is(err, context.Canceled):
		return "The submission was cancelled."
	case errors.Is(err, domain.ErrValidation):
		return "The server rejected some fields. Please review them and try again."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, domain.ErrForbidden):
		return "You are not allowed to save products."
	case errors.Is(err, domain.ErrConflict):
		return "A product with these details already exists."
	default:
		return "Could not save the product. Please try again."
	}
}
